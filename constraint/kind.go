package constraint

// Kind classifies a constraint by the check it performs.
type Kind int

const (
	KindRequired Kind = iota + 1
	KindRange
	KindLength
	KindPattern
	KindFormat
	KindEnum
	KindDivisibility
	KindPrecision
	KindSize
	KindUniqueness
	KindCrossField
	KindConditional
	KindDefault
	KindMetadata
)

var kindNames = map[Kind]string{
	KindRequired:     "required",
	KindRange:        "range",
	KindLength:       "length",
	KindPattern:      "pattern",
	KindFormat:       "format",
	KindEnum:         "enum",
	KindDivisibility: "divisibility",
	KindPrecision:    "precision",
	KindSize:         "size",
	KindUniqueness:   "uniqueness",
	KindCrossField:   "cross_field",
	KindConditional:  "conditional",
	KindDefault:      "default",
	KindMetadata:     "metadata",
}

// String returns the issue code used for failures of this kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Shape is the coarse category of Go type a constraint is applied to.
type Shape int

const (
	ShapeAny Shape = iota
	ShapeString
	ShapeNumber
	ShapeBool
	ShapeCollection
	ShapeMap
	ShapeStruct
	// ShapeScalar covers opaque values with their own JSON form, e.g. time.Time.
	ShapeScalar
)

func (s Shape) String() string {
	switch s {
	case ShapeString:
		return "string"
	case ShapeNumber:
		return "number"
	case ShapeBool:
		return "bool"
	case ShapeCollection:
		return "collection"
	case ShapeMap:
		return "map"
	case ShapeStruct:
		return "struct"
	case ShapeScalar:
		return "scalar"
	default:
		return "any"
	}
}
