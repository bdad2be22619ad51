package tagskema

import (
	"fmt"
	"reflect"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/internal/descriptor"
)

type uniqueItem struct {
	v    reflect.Value
	path PathRef
}

// checkUnique reports every element that repeats an earlier one. With a
// parameter the comparison uses that field of struct elements.
func (e *evaluator) checkUnique(el *descriptor.Element, c constraint.Constraint, v reflect.Value, path PathRef) {
	var sub *descriptor.Field
	if ref := c.Param(); ref != "" && el.Elem != nil && el.Elem.Nested != nil {
		sub, _ = el.Elem.Nested.Sibling(ref)
	}

	var items []uniqueItem
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		items = make([]uniqueItem, v.Len())
		for i := range items {
			items[i] = uniqueItem{v: v.Index(i), path: path.Index(i)}
		}
	case reflect.Map:
		for _, k := range sortedKeys(v) {
			items = append(items, uniqueItem{v: v.MapIndex(k), path: path.Key(keyString(k))})
		}
	default:
		return
	}

	seen := make(map[any]int, len(items))
	for i, it := range items {
		x := indirect(it.v)
		p := it.path
		if sub != nil {
			if !x.IsValid() {
				continue
			}
			x = indirect(fieldRead(x, sub.Index))
			p = p.Field(sub.Name)
		}
		key := uniqueKey(x)
		if first, dup := seen[key]; dup {
			e.add(e.ruleIssue(p, c, iface(x), "first", first, "index", i))
			continue
		}
		seen[key] = i
	}
}

// uniqueKey maps a value to a comparable map key.
func uniqueKey(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.CanInterface() && v.Comparable() {
		return v.Interface()
	}
	return fmt.Sprintf("%T:%#v", iface(v), iface(v))
}
