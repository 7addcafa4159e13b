package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/strata-api/strata/internal/pipeline"
)

// The key under which a single-document insert is processed internally.
const singularKey = "item"

var errBadContentType = errors.New("unknown or no Content-Type header supplied")

// decodePayload resolves the request body into ordered (key, unit) pairs.
// Singular mode wraps the whole body as one unit; bulk mode requires a JSON
// object of client key -> document, preserving wire key order.
func decodePayload(c *gin.Context, singular bool) ([]pipeline.Unit, error) {
	switch contentType(c) {
	case "application/json":
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		if singular {
			return []pipeline.Unit{{Key: singularKey, Payload: json.RawMessage(body)}}, nil
		}
		return decodeBulkJSON(body)
	case "application/x-www-form-urlencoded":
		form, err := formDocument(c)
		if err != nil {
			return nil, err
		}
		if singular {
			return []pipeline.Unit{{Key: singularKey, Payload: form}}, nil
		}
		// a form cannot carry nested documents; each value surfaces as a
		// per-unit issue downstream
		units := make([]pipeline.Unit, 0, len(form))
		for key, value := range form {
			units = append(units, pipeline.Unit{Key: key, Payload: value})
		}
		return units, nil
	default:
		return nil, errBadContentType
	}
}

// decodeItemPayload resolves the request body into a single raw unit.
func decodeItemPayload(c *gin.Context) (any, error) {
	switch contentType(c) {
	case "application/json":
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(body), nil
	case "application/x-www-form-urlencoded":
		return formDocument(c)
	default:
		return nil, errBadContentType
	}
}

// decodeBulkJSON walks the top-level object token by token so units keep the
// order the client sent them in.
func decodeBulkJSON(body []byte) ([]pipeline.Unit, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.New("payload must be a JSON object of key/document pairs")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("payload must be a JSON object of key/document pairs")
	}
	var units []pipeline.Unit
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.New("malformed JSON payload")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("malformed JSON payload")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.New("malformed JSON payload")
		}
		units = append(units, pipeline.Unit{Key: key, Payload: raw})
	}
	return units, nil
}

func formDocument(c *gin.Context) (map[string]any, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	if len(c.Request.PostForm) == 0 {
		return nil, errors.New("no form-urlencoded data supplied")
	}
	doc := make(map[string]any, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		doc[key] = values[0]
	}
	return doc, nil
}

func contentType(c *gin.Context) string {
	ct := c.GetHeader("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
