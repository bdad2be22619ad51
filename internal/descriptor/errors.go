package descriptor

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotStruct is returned when a root type is not a struct.
	ErrNotStruct = errors.New("not a struct type")
	// ErrCapture reports a missing, duplicated or mistyped extras field.
	ErrCapture = errors.New("invalid extras capture field")
	// ErrUnknownField reports a cross-field reference to a field that does not exist.
	ErrUnknownField = errors.New("unknown sibling field")
	// ErrDefault reports a default that cannot be converted to the field type.
	ErrDefault = errors.New("invalid default")
)

// BuildError locates a descriptor build failure.
type BuildError struct {
	Type  reflect.Type
	Field string
	Tag   string
	Err   error
}

func (e *BuildError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("build %v: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("build %v: field %s (tag %q): %v", e.Type, e.Field, e.Tag, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
