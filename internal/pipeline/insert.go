package pipeline

import (
	"context"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/hooks"
	"github.com/strata-api/strata/pkg/metrics"
)

// Insert adds one or more documents to a resource. Each unit is validated
// independently; only units with zero issues reach storage, as one bulk
// insert call. Uniqueness is checked against persisted documents only, so
// two units in the same batch may carry duplicate "unique" values and both
// pass — an accepted bulk-insert corner case. If every unit fails, no hook
// fires and storage is never called.
func (p *Pipeline) Insert(ctx context.Context, req *Request, units []Unit) (*Result, error) {
	def, ok := p.domain.Get(req.Resource)
	if !ok {
		return nil, ErrUnknownResource
	}
	if err := p.gate(ctx, req, opInsert); err != nil {
		return nil, err
	}

	v := p.newValidator(p.store, req.Resource, def)
	unitIssues := make([][]string, len(units))
	var accepted []document.Document
	for i, u := range units {
		doc, issues, err := p.validateDocument(ctx, req, v, def, u.Payload, nil)
		if err != nil {
			return nil, err
		}
		unitIssues[i] = issues
		if len(issues) == 0 {
			accepted = append(accepted, doc)
		}
	}

	var ids []string
	if len(accepted) > 0 {
		// registered hooks may edit the accepted batch before it is stored
		p.hooks.Notify(hooks.EventInsert, req.Resource, accepted)

		var err error
		ids, err = p.store.Insert(ctx, req.Resource, accepted)
		if err != nil {
			return nil, err
		}
		metrics.DocumentsWritten.WithLabelValues(req.Resource, opInsert).Add(float64(len(accepted)))
	}

	// interleave success and failure items in the original key order
	items := make([]map[string]any, len(units))
	next := 0
	for i := range units {
		if len(unitIssues[i]) > 0 {
			metrics.ValidationFailures.WithLabelValues(req.Resource).Inc()
			items[i] = failureItem(unitIssues[i])
			continue
		}
		item, err := p.successItem(ctx, req, def, ids[next], accepted[next])
		if err != nil {
			return nil, err
		}
		items[i] = item
		next++
	}

	if p.singular {
		return okResult(items[0], nil), nil
	}
	body := make(map[string]any, len(units))
	for i, u := range units {
		body[u.Key] = items[i]
	}
	return okResult(body, nil), nil
}
