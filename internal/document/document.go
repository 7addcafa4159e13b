package document

import "time"

// Server-owned meta fields. Every document leaving the pipeline carries all
// three; storage assigns the identity.
const (
	FieldID      = "id"
	FieldCreated = "created_at"
	FieldUpdated = "updated_at"
)

// Document is an open field mapping. Timestamps are held as naive-UTC
// time.Time values at second precision so fingerprints and Last-Modified
// comparisons stay consistent no matter where a document came from.
type Document map[string]any

// Epoch is the fallback timestamp for documents created outside the API
// context (a datetime.min alternative that won't overflow formatting).
func Epoch() time.Time {
	return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
}

// LastUpdated returns the document's updated_at, defaulting to the epoch
// when the field is missing. Stored values are re-normalized to UTC seconds
// because some backends return timezone-aware or sub-second timestamps.
func LastUpdated(doc Document) time.Time {
	return metaTime(doc, FieldUpdated)
}

// DateCreated returns the document's created_at, defaulting to the epoch.
func DateCreated(doc Document) time.Time {
	return metaTime(doc, FieldCreated)
}

func metaTime(doc Document, field string) time.Time {
	if v, ok := doc[field]; ok {
		if t, ok := v.(time.Time); ok {
			return t.UTC().Truncate(time.Second)
		}
	}
	return Epoch()
}

// Normalize stamps both timestamp meta fields with their normalized values
// so a fingerprint computed afterwards is storage-independent.
func Normalize(doc Document) {
	doc[FieldUpdated] = LastUpdated(doc)
	doc[FieldCreated] = DateCreated(doc)
}

// Copy returns a shallow copy of the document. Mutation handlers work on
// copies so caller-owned payload maps are never modified in place.
func Copy(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
