package descriptor

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the shape of t together with every struct tag reachable
// from it. Two types with the same fingerprint yield the same descriptor.
func Fingerprint(t reflect.Type, tagKey string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(tagKey)
	writeType(d, t, make(map[reflect.Type]bool))
	return d.Sum64()
}

func writeType(d *xxhash.Digest, t reflect.Type, seen map[reflect.Type]bool) {
	_, _ = d.WriteString(t.PkgPath())
	_, _ = d.WriteString(t.String())
	_, _ = d.Write([]byte{byte(t.Kind())})
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		writeType(d, t.Elem(), seen)
	case reflect.Map:
		writeType(d, t.Key(), seen)
		writeType(d, t.Elem(), seen)
	case reflect.Struct:
		if seen[t] {
			_, _ = d.WriteString("^")
			return
		}
		seen[t] = true
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			_, _ = d.WriteString(sf.Name)
			_, _ = d.WriteString(string(sf.Tag))
			writeType(d, sf.Type, seen)
		}
	}
}
