// Package pipeline is the resource mutation core: it validates and
// normalizes payloads, enforces optimistic concurrency and request quotas,
// and assembles per-document responses for single and bulk writes.
package pipeline

import (
	"context"
	"time"

	"github.com/strata-api/strata/internal/hooks"
	"github.com/strata-api/strata/internal/ratelimit"
	"github.com/strata-api/strata/internal/resource"
	"github.com/strata-api/strata/internal/storage"
	"github.com/strata-api/strata/internal/validation"
	"github.com/strata-api/strata/pkg/metrics"
)

// MethodLimit is a per-operation request quota: Limit requests per Period.
// A zero value means unlimited.
type MethodLimit struct {
	Limit  int64
	Period time.Duration
}

// Options tune a Pipeline. Zero values are safe: no hooks, no limiter, bulk
// inserts allowed, schema validation.
type Options struct {
	Hooks           *hooks.Registry
	Limiter         *ratelimit.Limiter
	InsertLimit     MethodLimit
	ReplaceLimit    MethodLimit
	SingularInserts bool

	// NewValidator builds the validator for one request. Defaults to the
	// schema validator; tests substitute their own.
	NewValidator func(store storage.Store, res string, def *resource.Definition) validation.Validator
}

// Pipeline orchestrates document mutations for every resource in the domain.
type Pipeline struct {
	store    storage.Store
	domain   resource.Registry
	hooks    *hooks.Registry
	limiter  *ratelimit.Limiter
	limits   map[string]MethodLimit
	singular bool

	newValidator func(storage.Store, string, *resource.Definition) validation.Validator
}

const (
	opInsert  = "insert"
	opReplace = "replace"
)

func New(store storage.Store, domain resource.Registry, opts Options) *Pipeline {
	nv := opts.NewValidator
	if nv == nil {
		nv = func(s storage.Store, res string, def *resource.Definition) validation.Validator {
			return validation.NewSchema(s, res, def)
		}
	}
	return &Pipeline{
		store:   store,
		domain:  domain,
		hooks:   opts.Hooks,
		limiter: opts.Limiter,
		limits: map[string]MethodLimit{
			opInsert:  opts.InsertLimit,
			opReplace: opts.ReplaceLimit,
		},
		singular:     opts.SingularInserts,
		newValidator: nv,
	}
}

// SingularInserts reports whether the pipeline is configured for
// single-document insert semantics.
func (p *Pipeline) SingularInserts() bool { return p.singular }

// gate runs the rate-limiter for one operation. The computed state is
// attached to the request either way so the boundary can emit quota headers
// even on a 429.
func (p *Pipeline) gate(ctx context.Context, req *Request, op string) error {
	ml := p.limits[op]
	state, err := p.limiter.Hit(ctx, req.ClientKey, ml.Limit, ml.Period)
	if err != nil {
		return err
	}
	if state == nil {
		// no quota configured or no shared store: proceed unconditionally
		return nil
	}
	req.RateLimit = state
	if state.OverLimit() {
		metrics.RateLimitRejected.WithLabelValues(op).Inc()
		return ErrRateLimited
	}
	metrics.RateLimitAllowed.WithLabelValues(op).Inc()
	return nil
}
