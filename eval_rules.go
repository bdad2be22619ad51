package tagskema

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reoring/tagskema/constraint"
)

// checkRule evaluates a single value constraint. It reports the issue and
// true when the constraint fails.
func (e *evaluator) checkRule(c constraint.Constraint, v reflect.Value, path PathRef) (Issue, bool) {
	ok := true
	switch c.Kind() {
	case constraint.KindLength:
		if v.Kind() == reflect.String {
			ok = boundHolds(c.Name(), cmpParam(float64(utf8.RuneCountInString(v.String())), c))
		}
	case constraint.KindSize:
		switch v.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			ok = boundHolds(c.Name(), cmpParam(float64(v.Len()), c))
		}
	case constraint.KindRange:
		if n, isNum := numberOf(v); isNum {
			p, _ := c.Num(0)
			ok = boundHolds(c.Name(), n.cmp(p))
		}
	case constraint.KindEnum:
		ok = enumHolds(c, v)
	case constraint.KindPattern:
		if v.Kind() == reflect.String {
			ok = c.Regexp().MatchString(v.String())
		}
	case constraint.KindFormat:
		if v.Kind() == reflect.String {
			matched, known := e.v.formats.Match(c.Name(), v.String())
			ok = !known || matched
		}
	case constraint.KindDivisibility:
		if n, isNum := numberOf(v); isNum {
			m, _ := c.Num(0)
			ok = n.multipleOf(m)
		}
	case constraint.KindPrecision:
		if n, isNum := numberOf(v); isNum {
			limit, _ := c.Num(0)
			if c.Name() == "max_digits" {
				ok = n.digits() <= int(limit)
			} else {
				ok = n.decimals() <= int(limit)
			}
		}
	}
	if ok {
		return Issue{}, false
	}
	return e.ruleIssue(path, c, iface(v)), true
}

func cmpParam(got float64, c constraint.Constraint) int {
	p, _ := c.Num(0)
	return cmp.Compare(got, p)
}

// boundHolds interprets a comparison result against a bound token.
func boundHolds(name string, c int) bool {
	switch name {
	case "min", "gte":
		return c >= 0
	case "max", "lte":
		return c <= 0
	case "len", "eq":
		return c == 0
	case "ne":
		return c != 0
	case "gt":
		return c > 0
	case "lt":
		return c < 0
	}
	return true
}

func enumHolds(c constraint.Constraint, v reflect.Value) bool {
	var match func(p string, i int) bool
	switch v.Kind() {
	case reflect.String:
		s := v.String()
		match = func(p string, _ int) bool { return s == p }
	case reflect.Bool:
		b := v.Bool()
		match = func(p string, _ int) bool {
			pb, err := strconv.ParseBool(p)
			return err == nil && pb == b
		}
	default:
		if n, ok := numberOf(v); ok {
			match = func(_ string, i int) bool {
				p, ok := c.Num(i)
				return ok && n.cmp(p) == 0
			}
		} else {
			s := fmt.Sprint(iface(v))
			match = func(p string, _ int) bool { return s == p }
		}
	}
	params := c.Params()
	switch c.Name() {
	case "eq":
		return match(params[0], 0)
	case "ne":
		return !match(params[0], 0)
	}
	for i, p := range params {
		if match(p, i) {
			return true
		}
	}
	return false
}

type numKind int

const (
	numInt numKind = iota
	numUint
	numFloat
)

// number is a numeric field value kept in its native representation so that
// large integers compare exactly.
type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
	bits int
}

func numberOf(v reflect.Value) (number, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: numInt, i: v.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: numUint, u: v.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: numFloat, f: v.Float(), bits: v.Type().Bits()}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	}
	return n.f
}

func integral(p float64) bool { return p == math.Trunc(p) && !math.IsInf(p, 0) }

// cmp compares n with a tag parameter.
func (n number) cmp(p float64) int {
	switch n.kind {
	case numInt:
		if integral(p) && p >= math.MinInt64 && p < math.MaxInt64 {
			return cmp.Compare(n.i, int64(p))
		}
	case numUint:
		if p < 0 {
			return 1
		}
		if integral(p) && p < math.MaxUint64 {
			return cmp.Compare(n.u, uint64(p))
		}
	}
	return cmp.Compare(n.float(), p)
}

// compare orders two field values.
func (n number) compare(o number) int {
	switch {
	case n.kind == numInt && o.kind == numInt:
		return cmp.Compare(n.i, o.i)
	case n.kind == numUint && o.kind == numUint:
		return cmp.Compare(n.u, o.u)
	case n.kind == numInt && o.kind == numUint:
		if n.i < 0 {
			return -1
		}
		return cmp.Compare(uint64(n.i), o.u)
	case n.kind == numUint && o.kind == numInt:
		return -o.compare(n)
	}
	return cmp.Compare(n.float(), o.float())
}

func (n number) multipleOf(m float64) bool {
	if m == 0 {
		return false
	}
	if integral(m) && n.kind != numFloat {
		if n.kind == numInt {
			return n.i%int64(m) == 0
		}
		return m > 0 && n.u%uint64(m) == 0
	}
	q := n.float() / m
	return math.Abs(q-math.Round(q)) < 1e-9
}

func (n number) text() string {
	switch n.kind {
	case numInt:
		return strconv.FormatInt(n.i, 10)
	case numUint:
		return strconv.FormatUint(n.u, 10)
	}
	return strconv.FormatFloat(n.f, 'f', -1, n.bits)
}

// decimals counts fractional digits in the shortest representation.
func (n number) decimals() int {
	s := n.text()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// digits counts significant digits, integer and fractional parts together.
func (n number) digits() int {
	s := strings.TrimPrefix(n.text(), "-")
	s = strings.Replace(s, ".", "", 1)
	s = strings.TrimLeft(s, "0")
	return max(len(s), 1)
}

// compareValues orders two field values of the same shape.
func compareValues(a, b reflect.Value) (int, bool) {
	if na, ok := numberOf(a); ok {
		if nb, ok := numberOf(b); ok {
			return na.compare(nb), true
		}
		return 0, false
	}
	if a.Kind() == reflect.String && b.Kind() == reflect.String {
		return strings.Compare(a.String(), b.String()), true
	}
	if ta, ok := iface(a).(time.Time); ok {
		if tb, ok := iface(b).(time.Time); ok {
			return ta.Compare(tb), true
		}
	}
	return 0, false
}

func valuesEqual(a, b reflect.Value) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	if a.Kind() == reflect.Bool && b.Kind() == reflect.Bool {
		return a.Bool() == b.Bool()
	}
	return reflect.DeepEqual(iface(a), iface(b))
}

// literalMatches compares a field value with a tag literal.
func literalMatches(v reflect.Value, lit string) bool {
	v = indirect(v)
	if !v.IsValid() {
		return false
	}
	if n, ok := numberOf(v); ok {
		p, err := strconv.ParseFloat(lit, 64)
		return err == nil && n.cmp(p) == 0
	}
	switch v.Kind() {
	case reflect.String:
		return v.String() == lit
	case reflect.Bool:
		b, err := strconv.ParseBool(lit)
		return err == nil && v.Bool() == b
	}
	return fmt.Sprint(iface(v)) == lit
}
