// Package validation implements schema validation for open documents.
// Issues are collected as human-readable strings and never abort a batch;
// only storage faults propagate as errors.
package validation

import (
	"context"
	"fmt"
	"sort"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/resource"
	"github.com/strata-api/strata/internal/storage"
)

// Validator checks one document against a resource schema. ValidateReplace
// excludes the identity being replaced from uniqueness probes so a document
// never collides with itself.
type Validator interface {
	Validate(ctx context.Context, doc document.Document) ([]string, error)
	ValidateReplace(ctx context.Context, doc document.Document, id string) ([]string, error)
}

// Schema is the Validator used in production: structural checks plus
// uniqueness probes against already-persisted documents. Two documents in
// the same batch carrying duplicate "unique" values both pass, since neither
// is persisted while the other validates; this is a documented trade-off of
// bulk inserts.
type Schema struct {
	store    storage.Store
	resource string
	def      *resource.Definition
}

func NewSchema(store storage.Store, res string, def *resource.Definition) *Schema {
	return &Schema{store: store, resource: res, def: def}
}

func (s *Schema) Validate(ctx context.Context, doc document.Document) ([]string, error) {
	return s.validate(ctx, doc, "")
}

func (s *Schema) ValidateReplace(ctx context.Context, doc document.Document, id string) ([]string, error) {
	return s.validate(ctx, doc, id)
}

func (s *Schema) validate(ctx context.Context, doc document.Document, excludeID string) ([]string, error) {
	var issues []string

	for _, field := range sortedKeys(doc) {
		if _, ok := s.def.Schema[field]; !ok {
			issues = append(issues, fmt.Sprintf("unknown field '%s'", field))
		}
	}

	fields := make([]string, 0, len(s.def.Schema))
	for field := range s.def.Schema {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		fs := s.def.Schema[field]
		value, present := doc[field]
		if !present {
			if fs.Required {
				issues = append(issues, fmt.Sprintf("required field '%s' is missing", field))
			}
			continue
		}
		if issue := typeIssue(field, fs.Type, value); issue != "" {
			issues = append(issues, issue)
			continue
		}
		if err := ozzo.Validate(value, fieldRules(fs)...); err != nil {
			issues = append(issues, fmt.Sprintf("field '%s': %v", field, err))
			continue
		}
		if fs.Unique {
			issue, err := s.uniqueIssue(ctx, field, value, excludeID)
			if err != nil {
				return nil, err
			}
			if issue != "" {
				issues = append(issues, issue)
			}
		}
	}
	return issues, nil
}

func fieldRules(fs resource.FieldSchema) []ozzo.Rule {
	var rules []ozzo.Rule
	if fs.MaxLength > 0 || fs.MinLength > 0 {
		rules = append(rules, ozzo.Length(fs.MinLength, fs.MaxLength))
	}
	if len(fs.Allowed) > 0 {
		allowed := make([]any, len(fs.Allowed))
		for i, a := range fs.Allowed {
			allowed[i] = a
		}
		rules = append(rules, ozzo.In(allowed...))
	}
	return rules
}

// uniqueIssue probes storage for another document holding the same value.
func (s *Schema) uniqueIssue(ctx context.Context, field string, value any, excludeID string) (string, error) {
	existing, err := s.store.FindOne(ctx, s.resource, map[string]any{field: value})
	if err != nil {
		if err == storage.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("uniqueness check for '%s': %w", field, err)
	}
	if excludeID != "" && existing[document.FieldID] == excludeID {
		return "", nil
	}
	return fmt.Sprintf("value '%v' for field '%s' is not unique", value, field), nil
}

func typeIssue(field, typ string, value any) string {
	ok := true
	switch typ {
	case "", resource.TypeString:
		if typ == resource.TypeString {
			_, ok = value.(string)
		}
	case resource.TypeInteger:
		switch n := value.(type) {
		case int, int32, int64:
		case float64:
			ok = n == float64(int64(n))
		default:
			ok = false
		}
	case resource.TypeFloat:
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			ok = false
		}
	case resource.TypeBoolean:
		_, ok = value.(bool)
	case resource.TypeDatetime:
		_, ok = value.(time.Time)
	case resource.TypeList:
		_, ok = value.([]any)
	case resource.TypeDict:
		_, ok = value.(map[string]any)
	}
	if !ok {
		return fmt.Sprintf("field '%s' must be of type '%s'", field, typ)
	}
	return ""
}

func sortedKeys(doc document.Document) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
