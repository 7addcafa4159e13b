package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Etag computes the hex-encoded SHA-256 fingerprint of a document's content.
// The digest is taken over the canonical JSON encoding (object keys sorted,
// timestamps as RFC1123 strings), so two documents with the same field values
// produce the same etag regardless of field insertion order or which store
// they were read from.
func Etag(doc Document) string {
	h := sha256.Sum256(canonical(doc))
	return hex.EncodeToString(h[:])
}

// Wire renders a document for transport: timestamps become wire date
// strings, nested values are passed through.
func Wire(doc Document) map[string]any {
	return wireValue(map[string]any(doc)).(map[string]any)
}

func canonical(doc Document) []byte {
	// encoding/json sorts map keys, which gives us a stable encoding for
	// free. time.Time values are rendered through the wire date format so
	// a document round-tripped through JSON fingerprints identically.
	b, err := json.Marshal(wireValue(map[string]any(doc)))
	if err != nil {
		// Documents are decoded JSON plus time.Time values, both always
		// marshalable; anything else is a programming error.
		panic(err)
	}
	return b
}

func wireValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return FormatDate(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = wireValue(e)
		}
		return out
	case Document:
		return wireValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = wireValue(e)
		}
		return out
	default:
		return v
	}
}
