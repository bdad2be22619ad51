package tagskema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/i18n"
	"github.com/reoring/tagskema/internal/descriptor"
)

type evalMode int

const (
	// modeValue checks an existing Go value. Every field counts as present,
	// so required and required_* are not evaluated.
	modeValue evalMode = iota
	// modeUnmarshal checks a freshly bound value. Presence is key existence
	// in the raw object.
	modeUnmarshal
)

// evaluator walks one value against its descriptor and collects every issue.
type evaluator struct {
	v    *Validator
	mode evalMode
	// skipKey is a root-level key exempt from the extra-field policy.
	skipKey string
	issues  Issues
	// failed holds paths whose binding failed; their constraints are not run.
	failed map[string]struct{}
}

func (v *Validator) newEvaluator(mode evalMode) *evaluator {
	return &evaluator{v: v, mode: mode, failed: make(map[string]struct{})}
}

func (e *evaluator) add(it Issue) { e.issues = append(e.issues, it) }

func (e *evaluator) bindFailed(p PathRef) bool {
	_, ok := e.failed[p.String()]
	return ok
}

func (e *evaluator) result() error {
	e.v.recordIssues(len(e.issues))
	if len(e.issues) == 0 {
		return nil
	}
	return e.issues
}

// ruleIssue builds the issue for a failed constraint. kv are extra Params.
func (e *evaluator) ruleIssue(p PathRef, c constraint.Constraint, value any, kv ...any) Issue {
	params := make(map[string]any, 2+len(kv)/2)
	data := make(map[string]string, 2+len(kv)/2)
	if c.NumParams() > 0 {
		params["param"] = strings.Join(c.Params(), "|")
		data["param"] = strings.Join(c.Params(), ", ")
	}
	if c.Kind() == constraint.KindFormat {
		params["format"] = c.Name()
		data["format"] = c.Name()
	}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		params[k] = kv[i+1]
		data[k] = fmt.Sprint(kv[i+1])
	}
	code := c.Kind().String()
	return Issue{
		Path:    p.String(),
		Code:    code,
		Rule:    c.Name(),
		Message: i18n.T(code+"."+c.Name(), data),
		Value:   value,
		Params:  params,
	}
}

func (e *evaluator) requiredIssue(p PathRef, rule string) Issue {
	it := p.Issue(CodeRequired, i18n.T(CodeRequired+"."+rule, nil))
	it.Rule = rule
	return it
}

// evalStruct checks the fields of rv. raw is the decoded object in unmarshal
// mode and nil otherwise.
func (e *evaluator) evalStruct(s *descriptor.Struct, rv reflect.Value, raw map[string]any, path PathRef, root bool) {
	for _, f := range s.Fields {
		fpath := path.Field(f.Name)
		if e.bindFailed(fpath) {
			continue
		}
		fv := fieldRead(rv, f.Index)

		var (
			rawVal    any
			present   = true
			null      bool
			defaulted bool
		)
		if e.mode == modeUnmarshal {
			rawVal, present = raw[f.Name]
			null = present && rawVal == nil
			if !present && f.HasDefaultValue() {
				// the bound default stands in for the missing key
				present, defaulted = true, true
			}
		} else {
			null = isNil(fv)
		}
		if !present && f.Required && e.v.opts.strictMissing {
			// one issue per missing required field
			e.add(e.requiredIssue(fpath, "required"))
			continue
		}
		set := present && !null && !isZero(fv)
		e.evalConditionals(s, f, rv, present, set, fpath)

		if null {
			if f.NotNull {
				e.add(e.requiredIssue(fpath, "notnull"))
			}
			continue
		}
		if !present {
			continue
		}
		if defaulted || (f.OmitEmpty && isZero(fv)) {
			continue
		}
		e.evalCrossFields(s, f, rv, fv, fpath)
		e.evalValue(&f.Element, fv, rawVal, fpath)
	}

	if e.mode == modeUnmarshal && e.v.opts.extra == ExtraReject {
		var unknown []string
		for k := range raw {
			if s.Known(k) || (root && k == e.skipKey) {
				continue
			}
			unknown = append(unknown, k)
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			e.add(path.Field(k).Issue(CodeUnknownKey, i18n.T(CodeUnknownKey, map[string]string{"key": k}), "key", k))
		}
	}
}

// evalValue runs the value constraints of el and recurses into nested
// structs, elements and keys.
func (e *evaluator) evalValue(el *descriptor.Element, v reflect.Value, raw any, path PathRef) {
	v = indirect(v)
	if !v.IsValid() {
		return
	}
	for _, c := range el.Rules {
		switch c.Kind() {
		case constraint.KindRequired, constraint.KindCrossField, constraint.KindConditional,
			constraint.KindDefault, constraint.KindMetadata:
		case constraint.KindUniqueness:
			e.checkUnique(el, c, v, path)
		default:
			if it, bad := e.checkRule(c, v, path); bad {
				e.add(it)
			}
		}
	}

	if el.Nested != nil && v.Kind() == reflect.Struct {
		rm, _ := raw.(map[string]any)
		e.evalStruct(el.Nested, v, rm, path, false)
	}
	if el.Elem == nil && el.Key == nil {
		return
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if el.Elem == nil {
			return
		}
		ra, _ := raw.([]any)
		for i := 0; i < v.Len(); i++ {
			var ri any
			if i < len(ra) {
				ri = ra[i]
			}
			e.evalItem(el.Elem, v.Index(i), ri, path.Index(i))
		}
	case reflect.Map:
		rm, _ := raw.(map[string]any)
		for _, k := range sortedKeys(v) {
			ks := keyString(k)
			kpath := path.Key(ks)
			if el.Key != nil {
				e.evalKey(el.Key, k, kpath)
			}
			if el.Elem != nil {
				e.evalItem(el.Elem, v.MapIndex(k), rm[ks], kpath)
			}
		}
	}
}

// evalItem checks one collection element or map value.
func (e *evaluator) evalItem(el *descriptor.Element, v reflect.Value, raw any, path PathRef) {
	if e.bindFailed(path) {
		return
	}
	if isNil(v) || (e.mode == modeUnmarshal && raw == nil) {
		switch {
		case el.NotNull:
			e.add(e.requiredIssue(path, "notnull"))
		case el.Required:
			e.add(e.requiredIssue(path, "required"))
		}
		return
	}
	if el.Required && isZero(v) {
		e.add(e.requiredIssue(path, "required"))
		return
	}
	e.evalValue(el, v, raw, path)
}

// evalKey checks a map key against its keys...endkeys rules.
func (e *evaluator) evalKey(el *descriptor.Element, k reflect.Value, path PathRef) {
	k = indirect(k)
	if !k.IsValid() {
		return
	}
	if el.Required && isZero(k) {
		it := e.requiredIssue(path, "required")
		it.Params = map[string]any{"target": "key"}
		e.add(it)
		return
	}
	for _, c := range el.Rules {
		if c.Kind() == constraint.KindRequired || c.Kind() == constraint.KindMetadata {
			continue
		}
		if it, bad := e.checkRule(c, k, path); bad {
			it.Params["target"] = "key"
			e.add(it)
		}
	}
}

// runHook invokes the type-level check of s on rv. An Issues error is merged;
// any other error becomes a custom issue at path.
func (e *evaluator) runHook(s *descriptor.Struct, rv reflect.Value, path PathRef) {
	if s.Hook == nil || !rv.IsValid() {
		return
	}
	var ptr reflect.Value
	if rv.CanAddr() {
		ptr = rv.Addr()
	} else {
		ptr = reflect.New(rv.Type())
		ptr.Elem().Set(rv)
	}
	err := s.Hook(ptr.Interface())
	if err == nil {
		return
	}
	if iss, ok := AsIssues(err); ok {
		e.issues = append(e.issues, iss...)
		return
	}
	it := path.Issue(CodeCustom, i18n.T(CodeCustom, map[string]string{"message": err.Error()}))
	it.Cause = err
	e.add(it)
}
