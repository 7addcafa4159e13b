// Package hooks is an ordered, synchronous plugin-dispatch registry.
// Handlers run before the storage mutation and may edit the accepted
// documents in place.
package hooks

import (
	"sync"

	"github.com/strata-api/strata/internal/document"
)

// EventInsert fires before documents are inserted or replaced.
const EventInsert = "insert"

// Handler receives the resource name and the accepted batch.
type Handler func(resource string, docs []document.Document)

// Registry holds handlers per event name. Registration order is invocation
// order.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Handler)}
}

// On registers a handler for an event. Use the bare event name for the
// resource-wide hook, or "<event>:<resource>" for a resource-specific one.
func (r *Registry) On(event string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], h)
}

// Notify invokes the resource-wide handlers for the event, then the
// resource-specific ones, in registration order. A nil Registry is silent.
func (r *Registry) Notify(event, resource string, docs []document.Document) {
	if r == nil {
		return
	}
	r.mu.RLock()
	wide := r.handlers[event]
	scoped := r.handlers[event+":"+resource]
	r.mu.RUnlock()
	for _, h := range wide {
		h(resource, docs)
	}
	for _, h := range scoped {
		h(resource, docs)
	}
}
