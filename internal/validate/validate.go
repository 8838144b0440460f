// Package validate checks a generated document against the OpenAPI schema.
// It consumes the finished JSON bytes, so the assembly engine never depends
// on it.
package validate

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Error is a structured validation failure with an optional JSON Pointer
// locating the offending part of the document.
type Error struct {
	Message     string
	JSONPointer string // e.g. "#/paths/~1widget/get"
	Cause       error
}

func (e *Error) Error() string {
	if e.JSONPointer != "" {
		return e.Message + " (at " + e.JSONPointer + ")"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Document parses and validates a serialized OpenAPI v3 document.
func Document(ctx context.Context, data []byte) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return &Error{Message: "parse document: " + err.Error(), Cause: err}
	}
	if err := doc.Validate(ctx); err != nil {
		return &Error{Message: err.Error(), JSONPointer: extractJSONPointer(err), Cause: err}
	}
	return nil
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from the error message if a pointer literal appears.
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
