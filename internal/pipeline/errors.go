package pipeline

import "errors"

// Faults that abort the whole request. Per-document validation issues are
// never errors; they travel inside the response body.
var (
	// ErrUnknownResource means the request addressed a resource that is not
	// in the domain.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrNotFound means the lookup matched no document.
	ErrNotFound = errors.New("document not found")

	// ErrPreconditionRequired means an edit was attempted without a
	// precondition token.
	ErrPreconditionRequired = errors.New("a precondition token must be provided to edit a document")

	// ErrPreconditionFailed means the supplied token does not match the
	// document's current fingerprint: the client's view is stale.
	ErrPreconditionFailed = errors.New("client and server fingerprints don't match")

	// ErrRateLimited means the client exceeded its request quota for the
	// current window.
	ErrRateLimited = errors.New("rate limit exceeded")
)
