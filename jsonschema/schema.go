// Package jsonschema is the JSON Schema (2020-12) document model produced by
// the schema generator.
package jsonschema

// Draft is the $schema URI stamped on generated root documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a JSON Schema document. Only the keywords the generator emits are
// modeled.
type Schema struct {
	// Core
	Schema string             `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Ref    string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Defs   map[string]*Schema `json:"$defs,omitempty" yaml:"$defs,omitempty"`
	Type   string             `json:"type,omitempty" yaml:"type,omitempty"`
	Format string             `json:"format,omitempty" yaml:"format,omitempty"`

	// Annotations
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Examples    []any  `json:"examples,omitempty" yaml:"examples,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`

	// Values
	Enum  []any   `json:"enum,omitempty" yaml:"enum,omitempty"`
	Const any     `json:"const,omitempty" yaml:"const,omitempty"`
	Not   *Schema `json:"not,omitempty" yaml:"not,omitempty"`

	// String
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`

	// Object
	Properties           map[string]*Schema  `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required             []string            `json:"required,omitempty" yaml:"required,omitempty"`
	AdditionalProperties any                 `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	PropertyNames        *Schema             `json:"propertyNames,omitempty" yaml:"propertyNames,omitempty"`
	MinProperties        *int                `json:"minProperties,omitempty" yaml:"minProperties,omitempty"`
	MaxProperties        *int                `json:"maxProperties,omitempty" yaml:"maxProperties,omitempty"`
	DependentRequired    map[string][]string `json:"dependentRequired,omitempty" yaml:"dependentRequired,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`

	// Composition
	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	If    *Schema   `json:"if,omitempty" yaml:"if,omitempty"`
	Then  *Schema   `json:"then,omitempty" yaml:"then,omitempty"`
	Else  *Schema   `json:"else,omitempty" yaml:"else,omitempty"`

	// Discriminator is the OpenAPI discriminator object, set on unions.
	Discriminator *Discriminator `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`

	// XConstraints lists rules with no JSON Schema keyword, in tag syntax.
	XConstraints []string `json:"x-constraints,omitempty" yaml:"x-constraints,omitempty"`
}

// Discriminator names the property that selects a oneOf branch.
type Discriminator struct {
	PropertyName string            `json:"propertyName" yaml:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
