package document

import (
	"net/http"
	"time"
)

// Dates travel on the wire as RFC1123 strings ("Mon, 02 Jan 2006 15:04:05
// GMT"), the same format the HTTP date headers use.

// ParseDate converts a wire date string into a naive-UTC timestamp.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC1123, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDate renders a timestamp in the wire date format (always GMT).
func FormatDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
