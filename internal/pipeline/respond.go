package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/resource"
)

// Result is what a mutation handler hands back to the transport boundary.
type Result struct {
	Body         any
	LastModified *time.Time
	Etag         string
	Status       int
}

// Per-item status markers.
const (
	StatusOK  = "OK"
	StatusErr = "ERR"
)

// failureItem reports why one document was refused.
func failureItem(issues []string) map[string]any {
	return map[string]any{
		"status": StatusErr,
		"issues": issues,
	}
}

// successItem reports one accepted document. The etag is computed from the
// persisted document re-read from storage, not the in-memory value, so it is
// exactly what a subsequent conditional read will see regardless of any
// storage-side normalization.
func (p *Pipeline) successItem(ctx context.Context, req *Request, def *resource.Definition, id string, doc document.Document) (map[string]any, error) {
	item := map[string]any{
		"status":              StatusOK,
		document.FieldID:      id,
		document.FieldUpdated: document.FormatDate(document.LastUpdated(doc)),
	}

	persisted, err := p.store.FindOne(ctx, req.Resource, map[string]any{document.FieldID: id})
	if err != nil {
		return nil, fmt.Errorf("re-read persisted document %s/%s: %w", req.Resource, id, err)
	}
	document.Normalize(persisted)
	item["etag"] = document.Etag(persisted)

	if def.HateoasEnabled() {
		item["_links"] = map[string]any{
			"self": map[string]any{"href": fmt.Sprintf("/%s/%s", req.Resource, id)},
		}
	}

	// echo configured extra fields when present; absent fields are omitted,
	// never defaulted
	for _, field := range def.ExtraResponseFields {
		if v, ok := doc[field]; ok {
			item[field] = v
		}
	}
	return item, nil
}

func okResult(body any, lastModified *time.Time) *Result {
	// per-document failures ride inside a 200 body; transport status stays OK
	return &Result{Body: body, LastModified: lastModified, Status: http.StatusOK}
}
