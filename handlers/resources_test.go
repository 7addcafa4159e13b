package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/strata-api/strata/internal/pipeline"
	"github.com/strata-api/strata/internal/ratelimit"
	"github.com/strata-api/strata/internal/resource"
	"github.com/strata-api/strata/internal/storage"
	"github.com/strata-api/strata/pkg/middleware"
)

func testRegistry() resource.Registry {
	return resource.Registry{
		"contacts": &resource.Definition{
			Schema: map[string]resource.FieldSchema{
				"name":   {Type: resource.TypeString, Required: true, Unique: true},
				"born":   {Type: resource.TypeDatetime},
				"status": {Type: resource.TypeString, Default: "active"},
				"owner":  {Type: resource.TypeString},
			},
			AuthField: "owner",
		},
	}
}

func newTestServer(t *testing.T, opts pipeline.Options, jwtSecret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	p := pipeline.New(storage.NewMemory(), testRegistry(), opts)
	r := gin.New()
	r.Use(middleware.Identity(jwtSecret))
	RegisterResourceRoutes(r, p)
	return r
}

func do(r *gin.Engine, method, path, body, contentType string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestPostThenUniqueConflict(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")

	w := do(r, http.MethodPost, "/contacts", `{"first": {"name": "a"}}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeBody(t, w)["first"].(map[string]any)
	require.Equal(t, "OK", first["status"])
	id := first["id"].(string)
	require.NotEmpty(t, first["etag"])

	// same unique value again: failure item in a 200 body, first document
	// stays persisted
	w = do(r, http.MethodPost, "/contacts", `{"dup": {"name": "a"}}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dup := decodeBody(t, w)["dup"].(map[string]any)
	require.Equal(t, "ERR", dup["status"])
	issues := dup["issues"].([]any)
	require.Contains(t, issues[0], "not unique")

	w = do(r, http.MethodGet, "/contacts/"+id, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("ETag"))
	require.NotEmpty(t, w.Header().Get("Last-Modified"))
}

func TestPostBulkInterleavesOutcomes(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")

	w := do(r, http.MethodPost, "/contacts", `{"ok": {"name": "a"}, "bad": {"nope": 1}, "ok2": {"name": "b"}}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Len(t, body, 3)
	require.Equal(t, "OK", body["ok"].(map[string]any)["status"])
	require.Equal(t, "OK", body["ok2"].(map[string]any)["status"])
	require.Equal(t, "ERR", body["bad"].(map[string]any)["status"])
}

func TestPostSingularMode(t *testing.T) {
	r := newTestServer(t, pipeline.Options{SingularInserts: true}, "")

	w := do(r, http.MethodPost, "/contacts", `{"name": "a"}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "OK", body["status"])
	require.NotEmpty(t, body["id"])
}

func TestPostFormURLEncoded(t *testing.T) {
	r := newTestServer(t, pipeline.Options{SingularInserts: true}, "")

	form := url.Values{"name": {"a"}}
	w := do(r, http.MethodPost, "/contacts", form.Encode(), "application/x-www-form-urlencoded", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", decodeBody(t, w)["status"])

	w = do(r, http.MethodPost, "/contacts", "", "application/x-www-form-urlencoded", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostUnknownContentType(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")
	w := do(r, http.MethodPost, "/contacts", `hello`, "text/plain", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostUnknownResource(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")
	w := do(r, http.MethodPost, "/widgets", `{"a": {"name": "x"}}`, "application/json", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutConditionalFlow(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")

	w := do(r, http.MethodPost, "/contacts", `{"a": {"name": "a"}}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeBody(t, w)["a"].(map[string]any)
	id := created["id"].(string)
	etag := created["etag"].(string)

	// no If-Match: edits are never allowed without a token
	w = do(r, http.MethodPut, "/contacts/"+id, `{"name": "b"}`, "application/json", nil)
	require.Equal(t, http.StatusPreconditionRequired, w.Code)

	// wrong token
	w = do(r, http.MethodPut, "/contacts/"+id, `{"name": "b"}`, "application/json", map[string]string{"If-Match": "bogus"})
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	// matching token
	w = do(r, http.MethodPut, "/contacts/"+id, `{"name": "b"}`, "application/json", map[string]string{"If-Match": etag})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("Last-Modified"))
	replaced := decodeBody(t, w)
	require.Equal(t, "OK", replaced["status"])
	newEtag := replaced["etag"].(string)
	require.NotEqual(t, etag, newEtag)

	// replaying the stale token fails
	w = do(r, http.MethodPut, "/contacts/"+id, `{"name": "c"}`, "application/json", map[string]string{"If-Match": etag})
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	// unknown identity
	w = do(r, http.MethodPut, "/contacts/missing", `{"name": "c"}`, "application/json", map[string]string{"If-Match": etag})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutValidationFailureKeeps200(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")

	w := do(r, http.MethodPost, "/contacts", `{"a": {"name": "a"}}`, "application/json", nil)
	created := decodeBody(t, w)["a"].(map[string]any)

	w = do(r, http.MethodPut, "/contacts/"+created["id"].(string), `{"bogus": 1}`, "application/json",
		map[string]string{"If-Match": created["etag"].(string)})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "ERR", body["status"])
	require.NotEmpty(t, body["issues"])
}

func TestQuotaHeadersAndRejection(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	limiter := ratelimit.New(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	r := newTestServer(t, pipeline.Options{
		Limiter:     limiter,
		InsertLimit: pipeline.MethodLimit{Limit: 1, Period: time.Minute},
	}, "")

	w := do(r, http.MethodPost, "/contacts", `{"a": {"name": "a"}}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

	w = do(r, http.MethodPost, "/contacts", `{"b": {"name": "b"}}`, "application/json", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
	require.Equal(t, "-1", w.Header().Get("X-RateLimit-Remaining"))

	// a new window lets the client back in
	m.FastForward(2 * time.Minute)
	w = do(r, http.MethodPost, "/contacts", `{"c": {"name": "c"}}`, "application/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestIdentityStampsOwnership(t *testing.T) {
	secret := "test-secret"
	r := newTestServer(t, pipeline.Options{}, secret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/contacts", `{"a": {"name": "a"}}`, "application/json",
		map[string]string{"Authorization": "Bearer " + signed})
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["a"].(map[string]any)["id"].(string)

	w = do(r, http.MethodGet, "/contacts/"+id, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", decodeBody(t, w)["owner"])
}

func TestIdentityBasicAuthFallback(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "")

	req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(`{"a": {"name": "a"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("bob", "hunter2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["a"].(map[string]any)["id"].(string)

	w = do(r, http.MethodGet, "/contacts/"+id, "", "", nil)
	require.Equal(t, "bob", decodeBody(t, w)["owner"])
}

func TestIdentityRejectsBadToken(t *testing.T) {
	r := newTestServer(t, pipeline.Options{}, "test-secret")
	w := do(r, http.MethodPost, "/contacts", `{"a": {"name": "a"}}`, "application/json",
		map[string]string{"Authorization": "Bearer not.a.token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
