package jsonfield

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed reports JSON text that could not be parsed.
	ErrMalformed = errors.New("malformed JSON")
	// ErrUnencodable reports a value that has no JSON representation,
	// such as a cyclic object or a channel.
	ErrUnencodable = errors.New("value cannot be encoded as JSON")
	// ErrStoreWrite reports a metadata write that failed and whose
	// read-back did not match the intended value.
	ErrStoreWrite = errors.New("metadata store write failed")
	// ErrInvalidRecordRef reports a record reference that cannot be resolved.
	ErrInvalidRecordRef = errors.New("invalid record reference")
	// ErrInvalidConfig reports a field definition with unsupported settings.
	ErrInvalidConfig = errors.New("invalid field configuration")
)

// FieldError records a failed field operation together with the field
// key and the record it targeted.
type FieldError struct {
	Op     string // "get", "set", "load"
	Field  string
	Record string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("jsonfield: %s %q: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("jsonfield: %s %q on record %s: %v", e.Op, e.Field, e.Record, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
