package tagskema

import (
	"reflect"
	"strings"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/internal/descriptor"
)

// evalCrossFields compares f with the siblings its cross-field rules name.
func (e *evaluator) evalCrossFields(s *descriptor.Struct, f *descriptor.Field, parent, fv reflect.Value, path PathRef) {
	for _, c := range f.Rules {
		if c.Kind() != constraint.KindCrossField {
			continue
		}
		sib, ok := s.Sibling(c.Param())
		if !ok {
			continue
		}
		a := indirect(fv)
		b := indirect(fieldRead(parent, sib.Index))
		if !a.IsValid() || !b.IsValid() {
			continue
		}
		if !crossHolds(c.Name(), a, b) {
			e.add(e.ruleIssue(path, c, iface(a), "field", sib.Name))
		}
	}
}

func crossHolds(name string, a, b reflect.Value) bool {
	switch name {
	case "eqfield":
		return valuesEqual(a, b)
	case "nefield":
		return !valuesEqual(a, b)
	}
	c, ok := compareValues(a, b)
	if !ok {
		return true
	}
	switch name {
	case "gtfield":
		return c > 0
	case "gtefield":
		return c >= 0
	case "ltfield":
		return c < 0
	case "ltefield":
		return c <= 0
	}
	return true
}

// evalConditionals applies required_* and excluded_* rules of f. present
// satisfies a requirement; set (present, non-null, non-zero) violates an
// exclusion.
func (e *evaluator) evalConditionals(s *descriptor.Struct, f *descriptor.Field, parent reflect.Value, present, set bool, path PathRef) {
	for _, c := range f.Rules {
		if c.Kind() != constraint.KindConditional {
			continue
		}
		requirement := strings.HasPrefix(c.Name(), "required_")
		if requirement && e.mode == modeValue {
			continue
		}
		params := c.Params()
		sib, ok := s.Sibling(params[0])
		if !ok {
			continue
		}
		sv := fieldRead(parent, sib.Index)
		var trigger bool
		_, cond, _ := strings.Cut(c.Name(), "_")
		switch cond {
		case "if":
			trigger = literalMatches(sv, params[1])
		case "unless":
			trigger = !literalMatches(sv, params[1])
		case "with":
			trigger = !isZero(indirect(sv))
		case "without":
			trigger = isZero(indirect(sv))
		}
		if !trigger {
			continue
		}
		if (requirement && present) || (!requirement && !set) {
			continue
		}
		kv := []any{"field", sib.Name}
		if len(params) > 1 {
			kv = append(kv, "value", params[1])
		}
		e.add(e.ruleIssue(path, c, nil, kv...))
	}
}
