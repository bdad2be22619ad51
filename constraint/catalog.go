package constraint

// entry describes a built-in constraint token.
type entry struct {
	kind    Kind
	minArgs int
	maxArgs int // -1: unbounded
	numeric bool
	integer bool
	// whole keeps the parameter verbatim instead of splitting on '|'.
	whole bool
}

var catalog = map[string]entry{
	"required": {kind: KindRequired},
	"notnull":  {kind: KindRequired},

	"min": {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"max": {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"len": {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"gt":  {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"gte": {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"lt":  {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"lte": {kind: KindRange, minArgs: 1, maxArgs: 1, numeric: true},
	"eq":  {kind: KindRange, minArgs: 1, maxArgs: 1, whole: true},
	"ne":  {kind: KindRange, minArgs: 1, maxArgs: 1, whole: true},

	"pattern": {kind: KindPattern, minArgs: 1, maxArgs: 1, whole: true},
	"oneof":   {kind: KindEnum, minArgs: 1, maxArgs: -1},
	"enum":    {kind: KindEnum, minArgs: 1, maxArgs: -1},

	"multipleOf":  {kind: KindDivisibility, minArgs: 1, maxArgs: 1, numeric: true},
	"multiple_of": {kind: KindDivisibility, minArgs: 1, maxArgs: 1, numeric: true},
	"precision":   {kind: KindPrecision, minArgs: 1, maxArgs: 1, numeric: true, integer: true},
	"max_digits":  {kind: KindPrecision, minArgs: 1, maxArgs: 1, numeric: true, integer: true},

	"unique": {kind: KindUniqueness, maxArgs: 1},

	"eqfield":  {kind: KindCrossField, minArgs: 1, maxArgs: 1},
	"nefield":  {kind: KindCrossField, minArgs: 1, maxArgs: 1},
	"gtfield":  {kind: KindCrossField, minArgs: 1, maxArgs: 1},
	"gtefield": {kind: KindCrossField, minArgs: 1, maxArgs: 1},
	"ltfield":  {kind: KindCrossField, minArgs: 1, maxArgs: 1},
	"ltefield": {kind: KindCrossField, minArgs: 1, maxArgs: 1},

	"required_if":      {kind: KindConditional, minArgs: 2, maxArgs: 2},
	"required_unless":  {kind: KindConditional, minArgs: 2, maxArgs: 2},
	"required_with":    {kind: KindConditional, minArgs: 1, maxArgs: 1},
	"required_without": {kind: KindConditional, minArgs: 1, maxArgs: 1},
	"excluded_if":      {kind: KindConditional, minArgs: 2, maxArgs: 2},
	"excluded_unless":  {kind: KindConditional, minArgs: 2, maxArgs: 2},
	"excluded_with":    {kind: KindConditional, minArgs: 1, maxArgs: 1},
	"excluded_without": {kind: KindConditional, minArgs: 1, maxArgs: 1},

	"default":         {kind: KindDefault, minArgs: 1, maxArgs: 1, whole: true},
	"default_factory": {kind: KindDefault, minArgs: 1, maxArgs: 1},

	"title":       {kind: KindMetadata, minArgs: 1, maxArgs: 1, whole: true},
	"description": {kind: KindMetadata, minArgs: 1, maxArgs: 1, whole: true},
	"examples":    {kind: KindMetadata, minArgs: 1, maxArgs: -1},
	"deprecated":  {kind: KindMetadata},
}

// Structural markers recognized by Parse. They never become constraints.
const (
	markerDive      = "dive"
	markerKeys      = "keys"
	markerEndKeys   = "endkeys"
	markerOmitEmpty = "omitempty"
	markerExtras    = "extras"
	markerSkip      = "-"
)

var markers = map[string]bool{
	markerDive:      true,
	markerKeys:      true,
	markerEndKeys:   true,
	markerOmitEmpty: true,
	markerExtras:    true,
	markerSkip:      true,
}

// IsReserved reports whether name is a built-in constraint or a structural marker.
func IsReserved(name string) bool {
	if _, ok := catalog[name]; ok {
		return true
	}
	return markers[name]
}

// BuiltinNames lists the built-in constraint names.
func BuiltinNames() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	return out
}
