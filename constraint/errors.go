package constraint

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownConstraint is returned for a tag token that names neither a
	// built-in constraint, a registered format, nor an alias.
	ErrUnknownConstraint = errors.New("unknown constraint")
	// ErrReservedName is returned when a registration would shadow a built-in name.
	ErrReservedName = errors.New("reserved constraint name")
	// ErrBadParam reports a parameter of the wrong arity or type.
	ErrBadParam = errors.New("bad constraint parameter")
	// ErrBadMarker reports misuse of dive, keys, endkeys or the skip marker.
	ErrBadMarker = errors.New("bad structural marker")
	// ErrShapeMismatch is returned by Bind when a constraint cannot apply to a field type.
	ErrShapeMismatch = errors.New("constraint does not apply to field type")
)

// ParseError locates a tag parsing failure.
type ParseError struct {
	Tag   string
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("tag %q: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("tag %q: token %q: %v", e.Tag, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
