// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package streampb

import "fmt"

// SyntaxError is the concrete type of errors reported for malformed JSON
// input: unexpected characters, unbalanced brackets, invalid escapes, and
// the like. It corresponds to the "syntactic" error kind.
type SyntaxError struct {
	Location Location
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at offset %d: %s", s.Location.Offset, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// SemanticError is the concrete type of errors reported once a token has
// been recognized but cannot be bound to the schema or coerced to its
// field's type: unknown members, nesting too deep, type mismatches,
// out-of-range numbers, and malformed base64. It covers the "structural",
// "semantic", "encoding", and "resource" error kinds of the design.
type SemanticError struct {
	Location Location
	Field    string // proto field name, if applicable
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SemanticError) Error() string {
	if s.Field == "" {
		return fmt.Sprintf("at offset %d: %s", s.Location.Offset, s.Message)
	}
	return fmt.Sprintf("at offset %d: field %q: %s", s.Location.Offset, s.Field, s.Message)
}

// Unwrap supports error wrapping.
func (s *SemanticError) Unwrap() error { return s.err }

// handlerError distinguishes an error reported by a Sink callback from an
// error synthesized by the machine itself, so that the top-level Parse
// loop can propagate it verbatim instead of tagging it with a parse
// location that belongs to the machine's own error kinds, not the sink's.
// Errors from the PutString and scalar Put calls made by multipart.Text,
// coerceNumber, coerceBoolKey and decodeBase64 are returned without this
// wrapper.
type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// sinkErr tags an error returned from a Sink method as a handlerError, if
// non-nil.
func sinkErr(err error) error {
	if err == nil {
		return nil
	}
	return handlerError{err}
}
