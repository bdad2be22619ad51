// Package descriptor turns tagged struct types into immutable field
// descriptors shared by validation and schema generation.
package descriptor

import (
	"reflect"

	"github.com/reoring/tagskema/constraint"
)

// Element describes a value position: a struct field, a collection element
// reached through dive, or a map key.
type Element struct {
	Type  reflect.Type
	Shape constraint.Shape
	// Rules are bound to Shape, in declaration order.
	Rules    []constraint.Constraint
	Required bool
	NotNull  bool
	// Nested is set for struct-shaped values.
	Nested *Struct
	// Elem is set for collections and maps with a dive, or with struct elements.
	Elem *Element
	// Key is set for maps with a keys...endkeys block.
	Key *Element
}

// Meta holds the documentation constraints of a field.
type Meta struct {
	Title       string
	Description string
	Examples    []string
	Deprecated  bool
}

// Field is one struct field.
type Field struct {
	Element
	// Name is the wire key.
	Name   string
	GoName string
	Index  []int
	Tag    string

	OmitEmpty bool
	Meta      Meta

	// Default holds the parsed default= value.
	Default    reflect.Value
	HasDefault bool
	// FactoryName and Factory describe default_factory=.
	FactoryName string
	Factory     func() any
}

// HasDefaultValue reports whether an absent field is filled in.
func (f *Field) HasDefaultValue() bool { return f.HasDefault || f.Factory != nil }

// Struct describes a struct type.
type Struct struct {
	Type   reflect.Type
	Fields []*Field
	// Capture is the extras sink, if the type declares one.
	Capture *Field
	// Hook is the type-level cross-field check. It receives a pointer to the value.
	Hook        func(ptr any) error
	Fingerprint uint64

	byName map[string]*Field
	byGo   map[string]*Field
}

// Lookup finds a field by wire key.
func (s *Struct) Lookup(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Sibling resolves a cross-field reference: the Go field name first, then the
// wire key.
func (s *Struct) Sibling(ref string) (*Field, bool) {
	if f, ok := s.byGo[ref]; ok {
		return f, true
	}
	return s.Lookup(ref)
}

// Known reports whether key is the wire name of a field. The extras field
// has no wire name and is never known.
func (s *Struct) Known(key string) bool {
	_, ok := s.byName[key]
	return ok
}
