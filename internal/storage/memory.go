package storage

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strata-api/strata/internal/document"
)

// Memory is an in-process Store used for unit tests and for running without
// a MongoDB deployment. Identities are random UUIDs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]document.Document // resource -> id -> doc
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]document.Document)}
}

func (m *Memory) FindOne(ctx context.Context, resource string, lookup map[string]any) (document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, doc := range m.data[resource] {
		if matches(id, doc, lookup) {
			out := document.Copy(doc)
			out[document.FieldID] = id
			return out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Insert(ctx context.Context, resource string, docs []document.Document) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.data[resource]
	if col == nil {
		col = make(map[string]document.Document)
		m.data[resource] = col
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := uuid.NewString()
		stored := document.Copy(doc)
		delete(stored, document.FieldID)
		col[id] = stored
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) Replace(ctx context.Context, resource string, id string, doc document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.data[resource]
	if _, ok := col[id]; !ok {
		return ErrNotFound
	}
	stored := document.Copy(doc)
	delete(stored, document.FieldID)
	col[id] = stored
	return nil
}

func matches(id string, doc document.Document, lookup map[string]any) bool {
	for field, want := range lookup {
		var got any
		if field == document.FieldID {
			got = id
		} else {
			got = doc[field]
		}
		if !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}
