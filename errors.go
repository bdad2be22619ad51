package tagskema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/tagskema/internal/descriptor"
)

// Issue codes that do not come from a constraint kind. Constraint failures use
// the kind name ("range", "length", "format", ...) as their code.
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeDuplicateKey         = "duplicate_key"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeCustom               = "custom"

	CodeRange        = "range"
	CodeLength       = "length"
	CodePattern      = "pattern"
	CodeFormat       = "format"
	CodeEnum         = "enum"
	CodeDivisibility = "divisibility"
	CodePrecision    = "precision"
	CodeSize         = "size"
	CodeUniqueness   = "uniqueness"
	CodeCrossField   = "cross_field"
	CodeConditional  = "conditional"
)

// Issue represents a single validation failure.
type Issue struct {
	Path    string // dotted path, e.g. items[2].price; "" is the value itself.
	Code    string // One of the codes listed above.
	Rule    string // tag token that failed, e.g. "min"; empty for structural codes.
	Message string
	Value   any   // offending value when available.
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"param":"3"}, {"first":0})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		path := it.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, path)
		if it.Rule != "" {
			fmt.Fprintf(b, " (%s)", it.Rule)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// At returns the issues reported for path.
func (iss Issues) At(path string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path == path {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// DecodeError reports input that is not a single well-formed JSON value:
// syntax errors, truncation, trailing data or an exhausted byte budget. It is
// never merged into Issues.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BuildError reports a type whose tags cannot be turned into a descriptor.
type BuildError = descriptor.BuildError

var (
	// ErrNilValue is returned when validating a nil value or nil pointer.
	ErrNilValue = errors.New("tagskema: nil value")
	// ErrNotStruct is returned when the target type is not a struct.
	ErrNotStruct = descriptor.ErrNotStruct
	// ErrBufferLimit is wrapped by DecodeError when a stream exceeds its byte budget.
	ErrBufferLimit = errors.New("tagskema: buffer limit exceeded")
	// ErrDuplicateVariant is returned when two union variants share a discriminator value.
	ErrDuplicateVariant = errors.New("tagskema: duplicate union variant")
	// ErrVariantType is returned when a variant type does not implement the union interface.
	ErrVariantType = errors.New("tagskema: variant does not implement union type")

	errNotObject = errors.New("top-level value is not an object")
)
