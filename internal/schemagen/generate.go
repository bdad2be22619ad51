// Package schemagen renders struct descriptors as JSON Schema documents.
package schemagen

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/internal/descriptor"
	js "github.com/reoring/tagskema/jsonschema"
)

// Mode selects how nested struct types are emitted.
type Mode int

const (
	// Inline embeds nested structs; recursive types go to $defs.
	Inline Mode = iota
	// Refs puts every nested struct type in $defs and references it.
	Refs
)

// Options configures a Generator.
type Options struct {
	Mode Mode
	// RejectExtra emits additionalProperties: false on objects.
	RejectExtra bool
}

// Generator renders descriptors. Definitions accumulate across Object calls
// so that several roots can share one $defs block.
type Generator struct {
	opts   Options
	defs   map[string]*js.Schema
	names  map[reflect.Type]string
	taken  map[string]bool
	cyclic map[*descriptor.Struct]bool
	err    error
}

// New returns an empty Generator.
func New(opts Options) *Generator {
	return &Generator{
		opts:   opts,
		defs:   make(map[string]*js.Schema),
		names:  make(map[reflect.Type]string),
		taken:  make(map[string]bool),
		cyclic: make(map[*descriptor.Struct]bool),
	}
}

// Generate renders s as a root document carrying $schema.
func Generate(s *descriptor.Struct, opts Options) (*js.Schema, error) {
	g := New(opts)
	root, err := g.Object(s)
	if err != nil {
		return nil, err
	}
	root.Schema = js.Draft
	root.Defs = g.Defs()
	return root, nil
}

// Object renders s as an inline object schema.
func (g *Generator) Object(s *descriptor.Struct) (*js.Schema, error) {
	markCycles(s, g.cyclic)
	out := g.object(s)
	if g.err != nil {
		return nil, g.err
	}
	return out, nil
}

// Defs returns the definitions collected so far, or nil.
func (g *Generator) Defs() map[string]*js.Schema {
	if len(g.defs) == 0 {
		return nil
	}
	return g.defs
}

func (g *Generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *Generator) object(s *descriptor.Struct) *js.Schema {
	sc := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(s.Fields))}
	for _, f := range s.Fields {
		sc.Properties[f.Name] = g.field(f)
		if f.Required && !f.HasDefaultValue() {
			sc.Required = append(sc.Required, f.Name)
		}
	}
	for _, f := range s.Fields {
		for _, c := range f.Rules {
			if c.Kind() == constraint.KindConditional {
				g.conditional(sc, s, f, c)
			}
		}
	}
	if g.opts.RejectExtra && s.Capture == nil {
		sc.AdditionalProperties = false
	}
	return sc
}

func (g *Generator) structRef(s *descriptor.Struct) *js.Schema {
	if g.opts.Mode != Refs && !g.cyclic[s] {
		return g.object(s)
	}
	name := g.defName(s)
	if _, ok := g.defs[name]; !ok {
		g.defs[name] = nil
		g.defs[name] = g.object(s)
	}
	return &js.Schema{Ref: "#/$defs/" + name}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func (g *Generator) defName(s *descriptor.Struct) string {
	if n, ok := g.names[s.Type]; ok {
		return n
	}
	base := unsafeName.ReplaceAllString(s.Type.Name(), "_")
	if base == "" {
		base = "Anonymous"
	}
	name := base
	for i := 2; g.taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	g.taken[name] = true
	g.names[s.Type] = name
	return name
}

func (g *Generator) field(f *descriptor.Field) *js.Schema {
	sc := g.element(&f.Element)
	sc.Title = f.Meta.Title
	sc.Description = f.Meta.Description
	sc.Deprecated = f.Meta.Deprecated
	for _, ex := range f.Meta.Examples {
		sc.Examples = append(sc.Examples, literal(&f.Element, ex))
	}
	if f.HasDefault {
		v, err := jsonValue(f.Default.Interface())
		if err != nil {
			g.fail(fmt.Errorf("schemagen: default of %s: %w", f.GoName, err))
		}
		sc.Default = v
	}
	return sc
}

func (g *Generator) element(el *descriptor.Element) *js.Schema {
	sc := g.typeSchema(el)
	for _, c := range el.Rules {
		g.apply(sc, el, c)
	}
	return sc
}

var (
	timeType  = reflect.TypeFor[time.Time]()
	bytesType = reflect.TypeFor[[]byte]()
)

func (g *Generator) typeSchema(el *descriptor.Element) *js.Schema {
	if el.Nested != nil {
		return g.structRef(el.Nested)
	}
	t := descriptor.Indirect(el.Type)
	switch el.Shape {
	case constraint.ShapeString:
		return &js.Schema{Type: "string"}
	case constraint.ShapeNumber:
		switch t.Kind() {
		case reflect.Float32, reflect.Float64:
			return &js.Schema{Type: "number"}
		}
		return &js.Schema{Type: "integer"}
	case constraint.ShapeBool:
		return &js.Schema{Type: "boolean"}
	case constraint.ShapeCollection:
		sc := &js.Schema{Type: "array"}
		if el.Elem != nil {
			sc.Items = g.element(el.Elem)
		} else {
			sc.Items = g.typeSchema(bare(t.Elem()))
		}
		return sc
	case constraint.ShapeMap:
		sc := &js.Schema{Type: "object"}
		if el.Elem != nil {
			sc.AdditionalProperties = g.element(el.Elem)
		} else {
			sc.AdditionalProperties = g.typeSchema(bare(t.Elem()))
		}
		if el.Key != nil {
			ks := &js.Schema{}
			if el.Key.Shape == constraint.ShapeString {
				ks.Type = "string"
			}
			for _, c := range el.Key.Rules {
				g.apply(ks, el.Key, c)
			}
			sc.PropertyNames = ks
		}
		return sc
	case constraint.ShapeStruct:
		return &js.Schema{Type: "object"}
	case constraint.ShapeScalar:
		switch t {
		case timeType:
			return &js.Schema{Type: "string", Format: "date-time"}
		case bytesType:
			return &js.Schema{Type: "string"}
		}
	}
	return &js.Schema{}
}

// bare describes a type that carries no rules.
func bare(t reflect.Type) *descriptor.Element {
	return &descriptor.Element{Type: t, Shape: descriptor.ShapeOf(t)}
}

// apply maps one constraint onto sc.
func (g *Generator) apply(sc *js.Schema, el *descriptor.Element, c constraint.Constraint) {
	p, _ := c.Num(0)
	n := int(p)
	switch c.Kind() {
	case constraint.KindRange:
		switch c.Name() {
		case "min", "gte":
			sc.Minimum = js.Float(p)
		case "max", "lte":
			sc.Maximum = js.Float(p)
		case "gt":
			sc.ExclusiveMinimum = js.Float(p)
		case "lt":
			sc.ExclusiveMaximum = js.Float(p)
		case "len", "eq":
			sc.Const = literal(el, c.Param())
		case "ne":
			sc.Not = &js.Schema{Const: literal(el, c.Param())}
		}
	case constraint.KindLength:
		if empty(c.Name(), n) {
			sc.Not = &js.Schema{}
			break
		}
		lo, hi := bounds(c.Name(), n)
		if lo != nil {
			sc.MinLength = lo
		}
		if hi != nil {
			sc.MaxLength = hi
		}
	case constraint.KindSize:
		if empty(c.Name(), n) {
			sc.Not = &js.Schema{}
			break
		}
		lo, hi := bounds(c.Name(), n)
		if el.Shape == constraint.ShapeMap {
			if lo != nil {
				sc.MinProperties = lo
			}
			if hi != nil {
				sc.MaxProperties = hi
			}
			break
		}
		if lo != nil {
			sc.MinItems = lo
		}
		if hi != nil {
			sc.MaxItems = hi
		}
	case constraint.KindPattern:
		sc.Pattern = c.Param()
	case constraint.KindFormat:
		sc.Format = FormatKeyword(c.Name())
	case constraint.KindEnum:
		switch c.Name() {
		case "eq":
			sc.Const = literal(el, c.Param())
		case "ne":
			sc.Not = &js.Schema{Const: literal(el, c.Param())}
		default:
			for _, v := range c.Params() {
				sc.Enum = append(sc.Enum, literal(el, v))
			}
		}
	case constraint.KindDivisibility:
		sc.MultipleOf = js.Float(p)
	case constraint.KindPrecision:
		if c.Name() == "precision" && sc.MultipleOf == nil {
			sc.MultipleOf = js.Float(math.Pow10(-n))
			break
		}
		sc.XConstraints = append(sc.XConstraints, c.Tag())
	case constraint.KindUniqueness:
		if el.Shape == constraint.ShapeCollection && c.Param() == "" {
			sc.UniqueItems = true
			break
		}
		sc.XConstraints = append(sc.XConstraints, c.Tag())
	case constraint.KindRequired:
		if c.Name() == "notnull" {
			sc.XConstraints = append(sc.XConstraints, c.Tag())
		}
	case constraint.KindCrossField:
		sc.XConstraints = append(sc.XConstraints, c.Tag())
	case constraint.KindDefault:
		if c.Name() == "default_factory" {
			sc.XConstraints = append(sc.XConstraints, c.Tag())
		}
	}
}

// bounds converts a length or size token into inclusive limits.
func bounds(name string, n int) (lo, hi *int) {
	switch name {
	case "min", "gte":
		return js.Int(n), nil
	case "max", "lte":
		return nil, js.Int(n)
	case "len", "eq":
		return js.Int(n), js.Int(n)
	case "gt":
		return js.Int(n + 1), nil
	case "lt":
		return nil, js.Int(n - 1)
	}
	return nil, nil
}

// empty reports whether a length or size token admits no value at all.
func empty(name string, n int) bool {
	return name == "lt" && n <= 0
}

var formatKeywords = map[string]string{
	"url":      "uri",
	"datetime": "date-time",
}

// FormatKeyword returns the JSON Schema format name for a registry format.
func FormatKeyword(name string) string {
	if k, ok := formatKeywords[name]; ok {
		return k
	}
	return name
}

// conditional renders a required_* or excluded_* rule of f on the object sc.
func (g *Generator) conditional(sc *js.Schema, s *descriptor.Struct, f *descriptor.Field, c constraint.Constraint) {
	params := c.Params()
	sib, ok := s.Sibling(params[0])
	if !ok {
		return
	}
	if c.Name() == "required_with" {
		if sc.DependentRequired == nil {
			sc.DependentRequired = make(map[string][]string)
		}
		sc.DependentRequired[sib.Name] = append(sc.DependentRequired[sib.Name], f.Name)
		return
	}

	cond := &js.Schema{Required: []string{sib.Name}}
	if len(params) > 1 {
		cond.Properties = map[string]*js.Schema{sib.Name: {Const: literal(&sib.Element, params[1])}}
	}
	effect := &js.Schema{Required: []string{f.Name}}
	if strings.HasPrefix(c.Name(), "excluded_") {
		effect = &js.Schema{Not: effect}
	}
	rule := &js.Schema{If: cond}
	switch c.Name() {
	case "required_if", "excluded_if", "excluded_with":
		rule.Then = effect
	default:
		rule.Else = effect
	}
	sc.AllOf = append(sc.AllOf, rule)
}

// literal types a tag value by the shape of the element it constrains.
func literal(el *descriptor.Element, s string) any {
	switch el.Shape {
	case constraint.ShapeNumber:
		switch descriptor.Indirect(el.Type).Kind() {
		case reflect.Float32, reflect.Float64:
		default:
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case constraint.ShapeBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}

// jsonValue converts a Go value to its JSON-shaped equivalent. Integral
// numbers become int64 so that YAML output keeps them unquoted.
func jsonValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return normalize(out), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
	}
	return v
}

// markCycles records every struct that can reach itself.
func markCycles(root *descriptor.Struct, out map[*descriptor.Struct]bool) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*descriptor.Struct]int)
	var visitStruct func(s *descriptor.Struct)
	var visitElem func(el *descriptor.Element)
	visitElem = func(el *descriptor.Element) {
		if el == nil {
			return
		}
		if el.Nested != nil {
			visitStruct(el.Nested)
		}
		visitElem(el.Elem)
		visitElem(el.Key)
	}
	visitStruct = func(s *descriptor.Struct) {
		switch color[s] {
		case gray:
			out[s] = true
			return
		case black:
			return
		}
		color[s] = gray
		for _, f := range s.Fields {
			visitElem(&f.Element)
		}
		color[s] = black
	}
	visitStruct(root)
}
