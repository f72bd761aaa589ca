package content

import (
	"errors"
	"fmt"
)

// SchemaValidationError reports a record field that failed shape, type, or
// coercion checks.
type SchemaValidationError struct {
	Collection string
	Key        string
	Source     string
	Field      string
	Reason     string
}

func (e *SchemaValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %q (%s): %s", e.Collection, e.Key, e.Source, e.Reason)
	}
	return fmt.Sprintf("%s %q (%s): field %q: %s", e.Collection, e.Key, e.Source, e.Field, e.Reason)
}

// ReferenceError reports a blog entry tag token with no matching tag entry.
type ReferenceError struct {
	Entry  string
	Source string
	Tag    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("blog %q (%s): tag %q does not exist", e.Entry, e.Source, e.Tag)
}

// DuplicateIDError reports two records sharing an identity that must be unique.
type DuplicateIDError struct {
	Collection string
	Field      string
	Value      string
	First      string
	Second     string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %s %q is used by both %s and %s", e.Collection, e.Field, e.Value, e.First, e.Second)
}

// Unwrap flattens joined errors into their leaves, in order.
func Unwrap(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, Unwrap(e)...)
		}
		return out
	}
	return []error{err}
}

// Kind classifies a load error for reporting and metrics.
func Kind(err error) string {
	var schemaErr *SchemaValidationError
	var refErr *ReferenceError
	var dupErr *DuplicateIDError
	switch {
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &refErr):
		return "reference"
	case errors.As(err, &dupErr):
		return "duplicate"
	default:
		return "other"
	}
}
