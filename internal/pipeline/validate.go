package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/strata-api/strata/internal/document"
	"github.com/strata-api/strata/internal/resource"
	"github.com/strata-api/strata/internal/validation"
	"github.com/strata-api/strata/pkg/logger"
)

// validateDocument turns one raw payload unit into a validated, stamped
// document or an ordered list of issues. Exactly one of the two is returned.
// original is non-nil only for a replace; its identity and creation time are
// carried over unchanged. The returned error is reserved for storage and
// programming faults; payload problems always come back as issues.
func (p *Pipeline) validateDocument(ctx context.Context, req *Request, v validation.Validator, def *resource.Definition, raw any, original document.Document) (document.Document, []string, error) {
	doc, err := decodeUnit(raw)
	if err != nil {
		// most likely a problem with the incoming payload; report it back
		// as if it were a validation issue
		logger.Warnf("malformed payload unit for %s: %v", req.Resource, err)
		return nil, []string{err.Error()}, nil
	}

	// wire dates arrive as RFC1123 strings and compare as timestamps
	var dateIssues []string
	for _, field := range def.DateFields() {
		s, ok := doc[field].(string)
		if !ok {
			continue
		}
		t, perr := document.ParseDate(s)
		if perr != nil {
			dateIssues = append(dateIssues, fmt.Sprintf("malformed date for field '%s'", field))
			continue
		}
		doc[field] = t
	}
	if len(dateIssues) > 0 {
		return nil, dateIssues, nil
	}

	// declared defaults fill gaps on insert only; a replace must be a
	// complete representation
	if original == nil {
		for _, field := range def.DefaultFields() {
			if _, ok := doc[field]; !ok {
				doc[field] = def.Schema[field].Default
			}
		}
	}

	var issues []string
	if original != nil {
		// validate against the existing identity so uniqueness checks
		// exclude the document being replaced
		issues, err = v.ValidateReplace(ctx, doc, documentID(original))
	} else {
		issues, err = v.Validate(ctx, doc)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(issues) > 0 {
		return nil, issues, nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	doc[document.FieldUpdated] = now
	if original != nil {
		doc[document.FieldID] = documentID(original)
		doc[document.FieldCreated] = document.DateCreated(original)
	} else {
		doc[document.FieldCreated] = now
	}

	// ownership tagging: enables user-restricted access on the read side
	if def.AuthField != "" && req.Identity != "" {
		doc[def.AuthField] = req.Identity
	}
	return doc, nil, nil
}

// decodeUnit resolves a raw payload unit into a field mapping.
func decodeUnit(raw any) (document.Document, error) {
	switch t := raw.(type) {
	case document.Document:
		return document.Copy(t), nil
	case map[string]any:
		return document.Copy(document.Document(t)), nil
	case json.RawMessage:
		return unmarshalUnit([]byte(t))
	case []byte:
		return unmarshalUnit(t)
	case string:
		return unmarshalUnit([]byte(t))
	default:
		return nil, fmt.Errorf("payload unit must be a document, got %T", raw)
	}
}

func unmarshalUnit(b []byte) (document.Document, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("payload unit is not a valid document: %v", err)
	}
	return document.Document(m), nil
}

func documentID(doc document.Document) string {
	if s, ok := doc[document.FieldID].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", doc[document.FieldID])
}
