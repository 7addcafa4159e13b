package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEtagIgnoresFieldOrder(t *testing.T) {
	a := Document{}
	a["name"] = "john"
	a["email"] = "j@example.com"
	a["age"] = float64(30)

	b := Document{}
	b["age"] = float64(30)
	b["email"] = "j@example.com"
	b["name"] = "john"

	require.Equal(t, Etag(a), Etag(b))
}

func TestEtagChangesWithContent(t *testing.T) {
	a := Document{"name": "john"}
	b := Document{"name": "jane"}
	require.NotEqual(t, Etag(a), Etag(b))
}

func TestEtagStableAcrossTimestampRepresentations(t *testing.T) {
	born := time.Date(2020, 5, 1, 12, 30, 0, 0, time.UTC)
	// same instant in another zone must fingerprint identically
	zone := time.FixedZone("X", 3600)
	a := Document{"name": "john", "born": born}
	b := Document{"name": "john", "born": born.In(zone)}
	require.Equal(t, Etag(a), Etag(b))
}

func TestLastUpdatedDefaultsToEpoch(t *testing.T) {
	doc := Document{"name": "legacy"}
	require.Equal(t, Epoch(), LastUpdated(doc))
	require.Equal(t, Epoch(), DateCreated(doc))
}

func TestLastUpdatedNormalizesPrecision(t *testing.T) {
	doc := Document{FieldUpdated: time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.UTC)}
	require.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), LastUpdated(doc))
}

func TestNormalizeMakesFingerprintOriginIndependent(t *testing.T) {
	// a stored doc missing timestamps must fingerprint the same as one
	// carrying explicit epoch values
	bare := Document{"name": "legacy"}
	Normalize(bare)
	explicit := Document{"name": "legacy", FieldCreated: Epoch(), FieldUpdated: Epoch()}
	require.Equal(t, Etag(explicit), Etag(bare))
}

func TestParseFormatDateRoundTrip(t *testing.T) {
	in := time.Date(2023, 7, 14, 9, 0, 1, 0, time.UTC)
	s := FormatDate(in)
	out, err := ParseDate(s)
	require.NoError(t, err)
	require.True(t, in.Equal(out))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("not-a-date")
	require.Error(t, err)
}

func TestWireRendersTimestamps(t *testing.T) {
	doc := Document{"name": "x", FieldUpdated: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	wire := Wire(doc)
	require.Equal(t, "Tue, 02 Jan 2024 03:04:05 GMT", wire[FieldUpdated])
	require.Equal(t, "x", wire["name"])
}
