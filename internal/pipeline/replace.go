package pipeline

import (
	"context"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/hooks"
	"github.com/strata-api/strata/internal/storage"
	"github.com/strata-api/strata/pkg/metrics"
)

// Replace performs a full document replacement. The conditional read must
// succeed first: a missing document, a missing precondition token or a stale
// fingerprint each abort the request before any validation or storage call.
// The creation time survives replacement unchanged.
func (p *Pipeline) Replace(ctx context.Context, req *Request, lookup map[string]any, payload any) (*Result, error) {
	def, ok := p.domain.Get(req.Resource)
	if !ok {
		return nil, ErrUnknownResource
	}
	if err := p.gate(ctx, req, opReplace); err != nil {
		return nil, err
	}

	original, err := p.getDocument(ctx, req, lookup)
	if err != nil {
		return nil, err
	}

	v := p.newValidator(p.store, req.Resource, def)
	doc, issues, err := p.validateDocument(ctx, req, v, def, payload, original)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		metrics.ValidationFailures.WithLabelValues(req.Resource).Inc()
		return okResult(failureItem(issues), nil), nil
	}

	id := documentID(original)
	p.hooks.Notify(hooks.EventInsert, req.Resource, []document.Document{doc})
	if err := p.store.Replace(ctx, req.Resource, id, doc); err != nil {
		return nil, err
	}
	metrics.DocumentsWritten.WithLabelValues(req.Resource, opReplace).Inc()

	item, err := p.successItem(ctx, req, def, id, doc)
	if err != nil {
		return nil, err
	}
	lastModified := document.LastUpdated(doc)
	res := okResult(item, &lastModified)
	if etag, ok := item["etag"].(string); ok {
		res.Etag = etag
	}
	return res, nil
}

// Fetch returns the current representation of one document together with its
// fingerprint, so clients can obtain the token a later replace must present.
func (p *Pipeline) Fetch(ctx context.Context, req *Request, lookup map[string]any) (document.Document, string, error) {
	if _, ok := p.domain.Get(req.Resource); !ok {
		return nil, "", ErrUnknownResource
	}
	doc, err := p.store.FindOne(ctx, req.Resource, lookup)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	document.Normalize(doc)
	return doc, document.Etag(doc), nil
}
