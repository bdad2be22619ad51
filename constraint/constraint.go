package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Constraint is a single parsed tag rule. Values are immutable once built;
// Bind returns a refined copy.
type Constraint struct {
	name   string
	kind   Kind
	params []string
	nums   []float64
	re     *regexp.Regexp
	shape  Shape
}

// Name is the tag token name, e.g. "min" or "email".
func (c Constraint) Name() string { return c.name }

// Kind is the constraint category. For bound tokens (min, max, ...) it is
// refined to length, range or size by Bind.
func (c Constraint) Kind() Kind { return c.kind }

// Shape is the field shape the constraint was bound to (ShapeAny before Bind).
func (c Constraint) Shape() Shape { return c.shape }

// Params returns a copy of the ordered string parameters.
func (c Constraint) Params() []string {
	if len(c.params) == 0 {
		return nil
	}
	out := make([]string, len(c.params))
	copy(out, c.params)
	return out
}

// Param returns the first parameter or "".
func (c Constraint) Param() string {
	if len(c.params) == 0 {
		return ""
	}
	return c.params[0]
}

// NumParams reports the number of parameters.
func (c Constraint) NumParams() int { return len(c.params) }

// Num returns the i-th parameter in numeric form when it parsed as a number.
func (c Constraint) Num(i int) (float64, bool) {
	if i < 0 || i >= len(c.nums) {
		return 0, false
	}
	return c.nums[i], true
}

// Regexp returns the compiled expression of a pattern constraint.
func (c Constraint) Regexp() *regexp.Regexp { return c.re }

// Tag renders the constraint back to tag syntax.
func (c Constraint) Tag() string {
	if len(c.params) == 0 {
		return c.name
	}
	esc := make([]string, len(c.params))
	for i, p := range c.params {
		esc[i] = escapeParam(p)
	}
	return c.name + "=" + strings.Join(esc, "|")
}

func (c Constraint) String() string { return c.Tag() }

// IsBound reports whether this is one of the comparison tokens whose kind depends on shape.
func (c Constraint) IsBound() bool {
	switch c.name {
	case "min", "max", "len", "gt", "gte", "lt", "lte", "eq", "ne":
		return true
	}
	return false
}

// Bind resolves the constraint against the shape of the field it decorates.
func (c Constraint) Bind(s Shape) (Constraint, error) {
	out := c
	out.shape = s
	mismatch := func() (Constraint, error) {
		return Constraint{}, fmt.Errorf("%w: %s on %s", ErrShapeMismatch, c.name, s)
	}
	switch c.kind {
	case KindRequired, KindConditional, KindDefault, KindMetadata:
		return out, nil
	case KindPattern, KindFormat:
		if s != ShapeString && s != ShapeAny {
			return mismatch()
		}
	case KindEnum:
		switch s {
		case ShapeString, ShapeAny:
		case ShapeNumber:
			if len(c.nums) != len(c.params) {
				return Constraint{}, fmt.Errorf("%w: %s on number needs numeric values", ErrBadParam, c.name)
			}
		default:
			return mismatch()
		}
	case KindDivisibility, KindPrecision:
		if s != ShapeNumber {
			return mismatch()
		}
	case KindUniqueness:
		if s != ShapeCollection && s != ShapeMap {
			return mismatch()
		}
	case KindCrossField:
		switch c.name {
		case "eqfield", "nefield":
		default:
			if s != ShapeNumber && s != ShapeString && s != ShapeScalar {
				return mismatch()
			}
		}
	case KindRange, KindLength, KindSize:
		return c.bindBound(s)
	}
	return out, nil
}

func (c Constraint) bindBound(s Shape) (Constraint, error) {
	out := c
	out.shape = s
	if c.name == "eq" || c.name == "ne" {
		switch s {
		case ShapeNumber:
			if len(c.nums) != 1 {
				return Constraint{}, fmt.Errorf("%w: %s on number needs a numeric value", ErrBadParam, c.name)
			}
			out.kind = KindRange
		case ShapeString:
			out.kind = KindEnum
		case ShapeBool:
			if _, err := strconv.ParseBool(c.Param()); err != nil {
				return Constraint{}, fmt.Errorf("%w: %s on bool needs true or false", ErrBadParam, c.name)
			}
			out.kind = KindEnum
		default:
			return Constraint{}, fmt.Errorf("%w: %s on %s", ErrShapeMismatch, c.name, s)
		}
		return out, nil
	}
	switch s {
	case ShapeString:
		out.kind = KindLength
	case ShapeNumber:
		out.kind = KindRange
	case ShapeCollection, ShapeMap:
		out.kind = KindSize
	default:
		return Constraint{}, fmt.Errorf("%w: %s on %s", ErrShapeMismatch, c.name, s)
	}
	if out.kind != KindRange && c.nums[0] < 0 {
		return Constraint{}, fmt.Errorf("%w: %s must not be negative", ErrBadParam, c.name)
	}
	return out, nil
}

func escapeParam(p string) string {
	p = strings.ReplaceAll(p, ",", "0x2C")
	return strings.ReplaceAll(p, "|", "0x7C")
}

func unescapeParam(p string) string {
	p = strings.ReplaceAll(p, "0x2C", ",")
	return strings.ReplaceAll(p, "0x7C", "|")
}
