package tagskema

import (
	"reflect"
	"sort"

	"github.com/goccy/go-json"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/i18n"
	"github.com/reoring/tagskema/internal/descriptor"
)

// bindStruct copies raw into rv field by field. Absent fields receive their
// default; type mismatches become invalid_type issues and mark the path as
// failed so that no constraint runs on it.
func (e *evaluator) bindStruct(s *descriptor.Struct, rv reflect.Value, raw map[string]any, path PathRef, root bool) {
	for _, f := range s.Fields {
		fv := fieldWrite(rv, f.Index)
		if !fv.IsValid() {
			continue
		}
		val, ok := raw[f.Name]
		if !ok {
			applyDefault(f, fv)
			continue
		}
		e.bindElement(&f.Element, fv, val, path.Field(f.Name))
	}

	if s.Capture == nil || e.v.opts.extra != ExtraCapture {
		return
	}
	extras := make(map[string]any)
	for k, val := range raw {
		if s.Known(k) || (root && k == e.skipKey) {
			continue
		}
		extras[k] = val
	}
	if len(extras) > 0 {
		if cv := fieldWrite(rv, s.Capture.Index); cv.IsValid() {
			cv.Set(reflect.ValueOf(extras))
		}
	}
}

func (e *evaluator) bindElement(el *descriptor.Element, fv reflect.Value, val any, path PathRef) {
	if val == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return
	}
	switch {
	case el.Nested != nil:
		obj, ok := val.(map[string]any)
		if !ok {
			e.mismatch(el, val, path, nil)
			return
		}
		e.bindStruct(el.Nested, alloc(fv), obj, path, false)

	case el.Elem != nil && el.Shape == constraint.ShapeCollection:
		arr, ok := val.([]any)
		if !ok {
			e.mismatch(el, val, path, nil)
			return
		}
		target := alloc(fv)
		if target.Kind() == reflect.Slice {
			target.Set(reflect.MakeSlice(target.Type(), len(arr), len(arr)))
		}
		for i := 0; i < len(arr) && i < target.Len(); i++ {
			e.bindElement(el.Elem, target.Index(i), arr[i], path.Index(i))
		}

	case el.Elem != nil && el.Shape == constraint.ShapeMap:
		obj, ok := val.(map[string]any)
		if !ok {
			e.mismatch(el, val, path, nil)
			return
		}
		target := alloc(fv)
		mt := target.Type()
		m := reflect.MakeMapWithSize(mt, len(obj))
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kpath := path.Key(k)
			kv := reflect.New(mt.Key()).Elem()
			if err := setMapKey(kv, k); err != nil {
				e.mismatch(el, k, kpath, err)
				continue
			}
			ev := reflect.New(mt.Elem()).Elem()
			e.bindElement(el.Elem, ev, obj[k], kpath)
			m.SetMapIndex(kv, ev)
		}
		target.Set(m)

	default:
		e.bindLeaf(el, fv, val, path)
	}
}

// bindLeaf decodes a scalar or opaque value through its JSON form.
func (e *evaluator) bindLeaf(el *descriptor.Element, fv reflect.Value, val any, path PathRef) {
	b, err := json.Marshal(val)
	if err != nil {
		e.mismatch(el, val, path, err)
		return
	}
	p := reflect.New(fv.Type())
	if err := json.Unmarshal(b, p.Interface()); err != nil {
		e.mismatch(el, val, path, err)
		return
	}
	fv.Set(p.Elem())
}

func (e *evaluator) mismatch(el *descriptor.Element, val any, path PathRef, cause error) {
	want := expectedName(el)
	it := path.Issue(CodeInvalidType, i18n.T(CodeInvalidType, map[string]string{"expected": want}),
		"expected", want, "got", jsonKind(val))
	it.Value = val
	it.Cause = cause
	e.add(it)
	e.failed[path.String()] = struct{}{}
}

func applyDefault(f *descriptor.Field, fv reflect.Value) {
	switch {
	case f.HasDefault:
		fv.Set(copyDefault(f.Default))
	case f.Factory != nil:
		out := reflect.ValueOf(f.Factory())
		if !out.IsValid() {
			return
		}
		if out.Type().AssignableTo(fv.Type()) {
			fv.Set(out)
			return
		}
		if fv.Kind() == reflect.Pointer && out.Type().AssignableTo(fv.Type().Elem()) {
			p := reflect.New(fv.Type().Elem())
			p.Elem().Set(out)
			fv.Set(p)
		}
	}
}

// copyDefault returns a value that shares no memory with the descriptor.
func copyDefault(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Struct, reflect.Array:
	default:
		return v
	}
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return v
	}
	p := reflect.New(v.Type())
	if err := json.Unmarshal(b, p.Interface()); err != nil {
		return v
	}
	return p.Elem()
}

func expectedName(el *descriptor.Element) string {
	switch el.Shape {
	case constraint.ShapeString:
		return "string"
	case constraint.ShapeNumber:
		switch descriptor.Indirect(el.Type).Kind() {
		case reflect.Float32, reflect.Float64:
			return "number"
		}
		return "integer"
	case constraint.ShapeBool:
		return "boolean"
	case constraint.ShapeCollection:
		return "array"
	case constraint.ShapeMap, constraint.ShapeStruct:
		return "object"
	}
	return el.Type.String()
}

func jsonKind(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case json.Number:
		return "number"
	}
	return "unknown"
}
