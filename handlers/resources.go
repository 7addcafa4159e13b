package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/pipeline"
	"github.com/strata-api/strata/internal/ratelimit"
	"github.com/strata-api/strata/pkg/logger"
	"github.com/strata-api/strata/pkg/middleware"
)

// RegisterResourceRoutes mounts the resource endpoints: bulk/single insert,
// conditional replace and the item read clients use to obtain fingerprints.
func RegisterResourceRoutes(r *gin.Engine, p *pipeline.Pipeline) {
	r.POST("/:resource", postResource(p))
	r.PUT("/:resource/:id", putResource(p))
	r.GET("/:resource/:id", getResourceItem(p))
}

func buildRequest(c *gin.Context) *pipeline.Request {
	identity := middleware.IdentityValue(c)
	key := identity
	if key == "" {
		key = c.ClientIP()
	}
	if key == "" {
		key = "unknown"
	}
	return &pipeline.Request{
		Resource:  c.Param("resource"),
		Identity:  identity,
		IfMatch:   c.GetHeader("If-Match"),
		ClientKey: key,
	}
}

func postResource(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := buildRequest(c)
		units, err := decodePayload(c, p.SingularInserts())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := p.Insert(c.Request.Context(), req, units)
		writeResult(c, req, res, err)
	}
}

func putResource(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := buildRequest(c)
		payload, err := decodeItemPayload(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lookup := map[string]any{document.FieldID: c.Param("id")}
		res, err := p.Replace(c.Request.Context(), req, lookup, payload)
		writeResult(c, req, res, err)
	}
}

func getResourceItem(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := buildRequest(c)
		lookup := map[string]any{document.FieldID: c.Param("id")}
		doc, etag, err := p.Fetch(c.Request.Context(), req, lookup)
		if err != nil {
			writeResult(c, req, nil, err)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", document.FormatDate(document.LastUpdated(doc)))
		c.JSON(http.StatusOK, document.Wire(doc))
	}
}

// writeResult maps a pipeline outcome onto the HTTP response, including the
// quota headers computed by the rate-limit gate.
func writeResult(c *gin.Context, req *pipeline.Request, res *pipeline.Result, err error) {
	setQuotaHeaders(c, req.RateLimit)
	if err != nil {
		status, msg := errorStatus(err)
		if status == http.StatusTooManyRequests && req.RateLimit != nil {
			c.Header("Retry-After", fmt.Sprintf("%d", int(req.RateLimit.Period.Seconds())))
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if res.LastModified != nil {
		c.Header("Last-Modified", document.FormatDate(*res.LastModified))
	}
	if res.Etag != "" {
		c.Header("ETag", res.Etag)
	}
	c.JSON(res.Status, res.Body)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrUnknownResource), errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, pipeline.ErrPreconditionRequired):
		return http.StatusPreconditionRequired, err.Error()
	case errors.Is(err, pipeline.ErrPreconditionFailed):
		return http.StatusPreconditionFailed, err.Error()
	case errors.Is(err, pipeline.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded"
	default:
		logger.Errorf("request failed: %v", err)
		return http.StatusInternalServerError, "internal server error"
	}
}

func setQuotaHeaders(c *gin.Context, state *ratelimit.State) {
	if state == nil {
		return
	}
	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", state.Limit))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", state.Remaining()))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", state.Reset.Unix()))
}
