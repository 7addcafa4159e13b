package pipeline

import "github.com/strata-api/strata/internal/ratelimit"

// Request is the request-scoped state threaded through the pipeline. The
// boundary layer fills in the identity, precondition token and client key;
// the rate-limit gate attaches its state for quota headers on the way out.
type Request struct {
	// Resource is the name of the addressed resource.
	Resource string

	// Identity is the authenticated identity value, empty when anonymous.
	// Consumed only by auth-field stamping.
	Identity string

	// IfMatch is the caller's precondition token, empty when absent.
	IfMatch string

	// ClientKey identifies the client for rate-limiting purposes
	// (authenticated identity, falling back to client address).
	ClientKey string

	// RateLimit is set by the gate when a quota applies.
	RateLimit *ratelimit.State
}

// Unit is one (key, payload) pair after the singular-vs-bulk payload shape
// has been resolved. Bulk payloads keep their original key order.
type Unit struct {
	Key     string
	Payload any
}
