package descriptor

import (
	"encoding"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

// WireName resolves the external key of a struct field: the json tag name,
// else the Go field name. "-" disables the field.
func WireName(sf reflect.StructField) string {
	if jt, ok := sf.Tag.Lookup("json"); ok {
		if jt == "-" {
			return "-"
		}
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return sf.Name
}

var (
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	byteSliceType       = reflect.TypeFor[[]byte]()
)

// Indirect strips pointer layers.
func Indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func opaque(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return t.Implements(jsonUnmarshalerType) || pt.Implements(jsonUnmarshalerType) ||
		t.Implements(textUnmarshalerType) || pt.Implements(textUnmarshalerType)
}
