package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/reoring/tagskema/constraint"
)

// ErrFieldOnly reports a constraint that needs sibling fields used on a
// collection element or map key.
var ErrFieldOnly = errors.New("constraint only valid on struct fields")

// DefaultTagKey is the struct tag read when Options.TagKey is empty.
const DefaultTagKey = "validate"

// Factory resolves a default_factory name to a constructor and its result type.
type Factory func(name string) (fn func() any, typ reflect.Type, ok bool)

// Options configures Build.
type Options struct {
	TagKey  string
	Formats constraint.Resolver
	// Hook returns the cross-field hook registered for a struct type, if any.
	Hook    func(t reflect.Type) func(ptr any) error
	Factory Factory
	// RequireCapture fails the build unless the root type declares an extras field.
	RequireCapture bool
}

var mapStringAnyType = reflect.TypeFor[map[string]any]()

// ShapeOf classifies a Go type.
func ShapeOf(t reflect.Type) constraint.Shape {
	t = Indirect(t)
	if t == byteSliceType {
		return constraint.ShapeScalar
	}
	switch t.Kind() {
	case reflect.String:
		return constraint.ShapeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return constraint.ShapeNumber
	case reflect.Bool:
		return constraint.ShapeBool
	case reflect.Slice, reflect.Array:
		return constraint.ShapeCollection
	case reflect.Map:
		return constraint.ShapeMap
	case reflect.Struct:
		if opaque(t) {
			return constraint.ShapeScalar
		}
		return constraint.ShapeStruct
	case reflect.Interface:
		return constraint.ShapeAny
	}
	return constraint.ShapeScalar
}

// Build walks t and returns its descriptor. Nested struct types are built in
// the same pass; recursive types share one *Struct.
func Build(t reflect.Type, opts Options) (*Struct, error) {
	t = Indirect(t)
	if t.Kind() != reflect.Struct || opaque(t) {
		return nil, &BuildError{Type: t, Err: ErrNotStruct}
	}
	if opts.TagKey == "" {
		opts.TagKey = DefaultTagKey
	}
	b := &builder{opts: opts, seen: make(map[reflect.Type]*Struct)}
	s, err := b.structOf(t)
	if err != nil {
		return nil, err
	}
	for _, check := range b.pending {
		if err := check(); err != nil {
			return nil, err
		}
	}
	if opts.RequireCapture && s.Capture == nil {
		return nil, &BuildError{Type: t, Err: fmt.Errorf("%w: extras capture needs a map[string]any field tagged %q", ErrCapture, "extras")}
	}
	return s, nil
}

type builder struct {
	opts    Options
	seen    map[reflect.Type]*Struct
	pending []func() error
}

func (b *builder) structOf(t reflect.Type) (*Struct, error) {
	if s, ok := b.seen[t]; ok {
		return s, nil
	}
	s := &Struct{Type: t, byName: make(map[string]*Field), byGo: make(map[string]*Field)}
	b.seen[t] = s
	if err := b.fields(s, t, nil); err != nil {
		return nil, err
	}
	if err := b.checkRefs(s); err != nil {
		return nil, err
	}
	if b.opts.Hook != nil {
		s.Hook = b.opts.Hook(t)
	}
	s.Fingerprint = Fingerprint(t, b.opts.TagKey)
	return s, nil
}

func (b *builder) fields(s *Struct, t reflect.Type, index []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		idx := append(append([]int(nil), index...), i)
		tag := sf.Tag.Get(b.opts.TagKey)
		fail := func(err error) error {
			var be *BuildError
			if errors.As(err, &be) {
				return err
			}
			return &BuildError{Type: s.Type, Field: sf.Name, Tag: tag, Err: err}
		}

		if sf.Anonymous {
			ft := Indirect(sf.Type)
			jt, hasJSON := sf.Tag.Lookup("json")
			if ft.Kind() == reflect.Struct && !opaque(ft) && tag == "" && (!hasJSON || jt == "" || jt[0] == ',') {
				if err := b.fields(s, ft, idx); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		name := WireName(sf)
		rules, err := constraint.Parse(tag, b.opts.Formats)
		if err != nil {
			return fail(err)
		}
		if rules.Skip {
			continue
		}
		if rules.Extras {
			if s.Capture != nil {
				return fail(fmt.Errorf("%w: more than one extras field", ErrCapture))
			}
			if sf.Type != mapStringAnyType {
				return fail(fmt.Errorf("%w: extras field must be map[string]any, got %v", ErrCapture, sf.Type))
			}
			s.Capture = &Field{
				Element: Element{Type: sf.Type, Shape: constraint.ShapeMap},
				Name:    name, GoName: sf.Name, Index: idx, Tag: tag,
			}
			continue
		}
		if name == "-" {
			continue
		}

		el, err := b.element(sf.Type, rules, true)
		if err != nil {
			return fail(err)
		}
		f := &Field{Element: *el, Name: name, GoName: sf.Name, Index: idx, Tag: tag, OmitEmpty: rules.OmitEmpty}
		if err := b.fieldExtras(f, rules); err != nil {
			return fail(err)
		}

		if prev, dup := s.byName[name]; dup {
			// The shallower field wins, as in encoding/json.
			switch {
			case len(prev.Index) < len(idx):
				continue
			case len(prev.Index) == len(idx):
				return fail(fmt.Errorf("duplicate wire key %q", name))
			}
			for j, g := range s.Fields {
				if g == prev {
					s.Fields = append(s.Fields[:j], s.Fields[j+1:]...)
					break
				}
			}
			delete(s.byGo, prev.GoName)
		}
		s.Fields = append(s.Fields, f)
		s.byName[name] = f
		s.byGo[sf.Name] = f
	}
	return nil
}

func (b *builder) element(t reflect.Type, rules *constraint.Rules, isField bool) (*Element, error) {
	shape := ShapeOf(t)
	el := &Element{Type: t, Shape: shape}
	for _, c := range rules.Constraints {
		bc, err := c.Bind(shape)
		if err != nil {
			return nil, err
		}
		switch bc.Kind() {
		case constraint.KindCrossField, constraint.KindConditional, constraint.KindDefault:
			if !isField {
				return nil, fmt.Errorf("%w: %s", ErrFieldOnly, bc.Name())
			}
		}
		switch bc.Name() {
		case "required":
			el.Required = true
		case "notnull":
			el.NotNull = true
		}
		el.Rules = append(el.Rules, bc)
	}

	base := Indirect(t)
	var err error
	if shape == constraint.ShapeStruct {
		if el.Nested, err = b.structOf(base); err != nil {
			return nil, err
		}
	}
	if rules.Keys != nil {
		if shape != constraint.ShapeMap {
			return nil, fmt.Errorf("%w: keys requires a map, got %v", constraint.ErrBadMarker, t)
		}
		if el.Key, err = b.element(base.Key(), rules.Keys, false); err != nil {
			return nil, err
		}
	}
	switch {
	case rules.Elem != nil:
		if shape != constraint.ShapeCollection && shape != constraint.ShapeMap {
			return nil, fmt.Errorf("%w: dive requires a slice, array or map, got %v", constraint.ErrBadMarker, t)
		}
		if el.Elem, err = b.element(base.Elem(), rules.Elem, false); err != nil {
			return nil, err
		}
	case shape == constraint.ShapeCollection || shape == constraint.ShapeMap:
		if ShapeOf(base.Elem()) == constraint.ShapeStruct {
			if el.Elem, err = b.element(base.Elem(), &constraint.Rules{}, false); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range el.Rules {
		if c.Kind() != constraint.KindUniqueness || c.Param() == "" {
			continue
		}
		if el.Elem == nil || el.Elem.Nested == nil {
			return nil, fmt.Errorf("%w: unique=%s needs struct elements", constraint.ErrShapeMismatch, c.Param())
		}
		nested, ref := el.Elem.Nested, c.Param()
		b.pending = append(b.pending, func() error {
			if _, ok := nested.Sibling(ref); !ok {
				return &BuildError{Type: nested.Type, Field: ref, Err: fmt.Errorf("%w: unique=%s", ErrUnknownField, ref)}
			}
			return nil
		})
	}
	return el, nil
}

func (b *builder) fieldExtras(f *Field, rules *constraint.Rules) error {
	for _, c := range f.Rules {
		switch c.Name() {
		case "title":
			f.Meta.Title = c.Param()
		case "description":
			f.Meta.Description = c.Param()
		case "examples":
			f.Meta.Examples = c.Params()
		case "deprecated":
			f.Meta.Deprecated = true
		case "default":
			v, err := parseDefault(f.Type, c.Param())
			if err != nil {
				return fmt.Errorf("%w: %q for %v: %v", ErrDefault, c.Param(), f.Type, err)
			}
			f.Default, f.HasDefault = v, true
		case "default_factory":
			if b.opts.Factory == nil {
				return fmt.Errorf("%w: default_factory=%s is not registered", ErrDefault, c.Param())
			}
			fn, typ, ok := b.opts.Factory(c.Param())
			if !ok {
				return fmt.Errorf("%w: default_factory=%s is not registered", ErrDefault, c.Param())
			}
			if !typ.AssignableTo(f.Type) && !(f.Type.Kind() == reflect.Pointer && typ.AssignableTo(f.Type.Elem())) {
				return fmt.Errorf("%w: default_factory=%s returns %v, field is %v", ErrDefault, c.Param(), typ, f.Type)
			}
			f.FactoryName, f.Factory = c.Param(), fn
		}
	}
	if f.HasDefault && f.Factory != nil {
		return fmt.Errorf("%w: default and default_factory are exclusive", ErrDefault)
	}
	return nil
}

// checkRefs validates sibling references once all fields of s are known.
func (b *builder) checkRefs(s *Struct) error {
	for _, f := range s.Fields {
		for _, c := range f.Rules {
			if c.Kind() != constraint.KindCrossField && c.Kind() != constraint.KindConditional {
				continue
			}
			fail := func(err error) error {
				return &BuildError{Type: s.Type, Field: f.GoName, Tag: f.Tag, Err: err}
			}
			sib, ok := s.Sibling(c.Param())
			if !ok {
				return fail(fmt.Errorf("%w: %s", ErrUnknownField, c.Tag()))
			}
			if c.Kind() == constraint.KindCrossField && sib.Shape != f.Shape {
				return fail(fmt.Errorf("%w: %s compares %s with %s", constraint.ErrShapeMismatch, c.Tag(), f.Shape, sib.Shape))
			}
			if c.NumParams() == 2 {
				lit := c.Params()[1]
				var err error
				switch sib.Shape {
				case constraint.ShapeNumber:
					_, err = strconv.ParseFloat(lit, 64)
				case constraint.ShapeBool:
					_, err = strconv.ParseBool(lit)
				}
				if err != nil {
					return fail(fmt.Errorf("%w: %s: %q does not fit %s", constraint.ErrBadParam, c.Tag(), lit, sib.Shape))
				}
			}
		}
	}
	return nil
}

func parseDefault(t reflect.Type, s string) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	target := v
	if t.Kind() == reflect.Pointer {
		p := reflect.New(t.Elem())
		v.Set(p)
		target = p.Elem()
	}
	switch target.Kind() {
	case reflect.String:
		target.SetString(s)
	case reflect.Bool:
		x, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		target.SetBool(x)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x, err := strconv.ParseInt(s, 10, target.Type().Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		target.SetInt(x)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		x, err := strconv.ParseUint(s, 10, target.Type().Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		target.SetUint(x)
	case reflect.Float32, reflect.Float64:
		x, err := strconv.ParseFloat(s, target.Type().Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		target.SetFloat(x)
	default:
		if err := json.Unmarshal([]byte(s), target.Addr().Interface()); err != nil {
			return reflect.Value{}, err
		}
	}
	return v, nil
}
