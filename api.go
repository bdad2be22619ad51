package tagskema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/tagskema/i18n"
	"github.com/reoring/tagskema/internal/descriptor"
	"github.com/reoring/tagskema/internal/engine"
)

// Validate checks value, a struct or pointer to struct, against its tags. It
// returns nil, Issues with every failure, or an error when the value or its
// type cannot be validated (ErrNilValue, *BuildError).
func (v *Validator) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return ErrNilValue
	}
	s, err := v.descriptor(rv.Type())
	if err != nil {
		return err
	}
	rv = indirect(rv)
	if !rv.IsValid() {
		return ErrNilValue
	}
	e := v.newEvaluator(modeValue)
	e.evalStruct(s, rv, nil, Root(), true)
	e.runHook(s, rv, Root())
	return e.result()
}

// Unmarshal decodes data into dst, a non-nil pointer to a struct, applying
// defaults and presence rules, then validates the result. Malformed input is
// a *DecodeError; everything else that is wrong with the input is Issues.
func (v *Validator) Unmarshal(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal needs a non-nil pointer, got %T", ErrNilValue, dst)
	}
	s, err := v.descriptor(rv.Type())
	if err != nil {
		return err
	}
	raw, pre, err := v.decodeRaw(data)
	if err != nil {
		return err
	}
	return v.apply(s, alloc(rv.Elem()), raw, "", pre)
}

// UnmarshalAndValidate decodes data into a new T. On Issues the partially
// bound value is returned alongside the error.
func UnmarshalAndValidate[T any](v *Validator, data []byte) (T, error) {
	var out T
	err := v.Unmarshal(data, &out)
	return out, err
}

// Validate checks value with the default Validator.
func Validate(value any) error { return Default().Validate(value) }

// Unmarshal decodes and validates with the default Validator.
func Unmarshal(data []byte, dst any) error { return Default().Unmarshal(data, dst) }

// decodeRaw parses data into a generic tree. Duplicate keys are reported as
// issues under DuplicateReject.
func (v *Validator) decodeRaw(data []byte) (any, Issues, error) {
	var dups Issues
	opt := engine.EnforceOptions{MaxDepth: v.opts.maxDepth}
	if v.opts.duplicates == DuplicateReject {
		opt.OnDuplicate = engine.DupReport
		opt.IssueSink = func(si engine.SimpleIssue) {
			dups = append(dups, Issue{
				Path:    si.Path,
				Code:    CodeDuplicateKey,
				Message: i18n.T(CodeDuplicateKey, map[string]string{"key": si.Key}),
				Params:  map[string]any{"key": si.Key},
			})
		}
	}
	raw, err := engine.Decode(data, opt)
	if err != nil {
		return nil, nil, toDecodeError(err)
	}
	return raw, dups, nil
}

func toDecodeError(err error) *DecodeError {
	var se *engine.SyntaxError
	if errors.As(err, &se) {
		return &DecodeError{Offset: se.Offset, Err: se.Err}
	}
	return &DecodeError{Offset: -1, Err: err}
}

// apply binds raw into target and validates it. skipKey is exempt from the
// extra-field policy at the root; pre are issues found while decoding.
func (v *Validator) apply(s *descriptor.Struct, target reflect.Value, raw any, skipKey string, pre Issues) error {
	e := v.newEvaluator(modeUnmarshal)
	e.skipKey = skipKey
	e.issues = pre
	obj, ok := raw.(map[string]any)
	if !ok {
		e.add(Root().Issue(CodeInvalidType, i18n.T(CodeInvalidType, map[string]string{"expected": "object"}),
			"expected", "object", "got", jsonKind(raw)))
		return e.result()
	}
	e.bindStruct(s, target, obj, Root(), true)
	e.evalStruct(s, target, obj, Root(), true)
	e.runHook(s, target, Root())
	return e.result()
}
