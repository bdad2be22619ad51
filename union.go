package tagskema

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/reoring/tagskema/i18n"
	"github.com/reoring/tagskema/internal/schemagen"
	js "github.com/reoring/tagskema/jsonschema"
)

// Variant binds a discriminator value to a concrete type of the union T.
type Variant[T any] struct {
	tag string
	typ reflect.Type
}

// NewVariant registers V under tag. V or *V must implement T.
func NewVariant[T, V any](tag string) Variant[T] {
	return Variant[T]{tag: tag, typ: reflect.TypeFor[V]()}
}

// Resolved is a decoded union value with the discriminator that selected it.
type Resolved[T any] struct {
	Tag   string
	Value T
}

type unionVariant struct {
	tag string
	typ reflect.Type
	ptr bool // *typ implements the union, typ does not
}

// UnionResolver decodes JSON objects into one of several types chosen by the
// exact string value of a discriminator key.
type UnionResolver[T any] struct {
	v        *Validator
	disc     string
	variants []*unionVariant
	byTag    map[string]*unionVariant

	mu        sync.Mutex
	schema    *js.Schema
	schemaVer uint64
}

// NewUnionResolver builds a resolver for T keyed by the wire name
// discriminator. Variant descriptors are built here, so tag errors and
// duplicate discriminator values fail construction.
func NewUnionResolver[T any](v *Validator, discriminator string, variants ...Variant[T]) (*UnionResolver[T], error) {
	if discriminator == "" {
		return nil, errors.New("tagskema: union needs a discriminator key")
	}
	if len(variants) == 0 {
		return nil, errors.New("tagskema: union needs at least one variant")
	}
	union := reflect.TypeFor[T]()
	r := &UnionResolver[T]{v: v, disc: discriminator, byTag: make(map[string]*unionVariant, len(variants))}
	for _, vr := range variants {
		if _, dup := r.byTag[vr.tag]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariant, vr.tag)
		}
		uv := &unionVariant{tag: vr.tag, typ: vr.typ}
		switch {
		case vr.typ.AssignableTo(union):
		case reflect.PointerTo(vr.typ).AssignableTo(union):
			uv.ptr = true
		default:
			return nil, fmt.Errorf("%w: %v is not a %v", ErrVariantType, vr.typ, union)
		}
		if _, err := v.descriptor(vr.typ); err != nil {
			return nil, err
		}
		r.variants = append(r.variants, uv)
		r.byTag[vr.tag] = uv
	}
	v.log.Debug("union resolver built", slog.String("union", union.String()),
		slog.String("discriminator", discriminator), slog.Int("variants", len(r.variants)))
	return r, nil
}

// Discriminator returns the wire key that selects the variant.
func (r *UnionResolver[T]) Discriminator() string { return r.disc }

// Tags lists the discriminator values in registration order.
func (r *UnionResolver[T]) Tags() []string {
	out := make([]string, len(r.variants))
	for i, uv := range r.variants {
		out[i] = uv.tag
	}
	return out
}

// Resolve decodes data, selects the variant by discriminator and validates
// it. A missing or unknown discriminator is reported as Issues; no other
// variant is tried.
func (r *UnionResolver[T]) Resolve(data []byte) (Resolved[T], error) {
	raw, pre, err := r.v.decodeRaw(data)
	if err != nil {
		return Resolved[T]{}, err
	}
	return r.resolve(raw, pre)
}

// ResolveMap is Resolve for an already decoded object.
func (r *UnionResolver[T]) ResolveMap(m map[string]any) (Resolved[T], error) {
	return r.resolve(m, nil)
}

func (r *UnionResolver[T]) resolve(raw any, pre Issues) (Resolved[T], error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		iss := append(pre, Root().Issue(CodeInvalidType, i18n.T(CodeInvalidType, map[string]string{"expected": "object"}),
			"expected", "object", "got", jsonKind(raw)))
		r.v.recordIssues(len(iss))
		return Resolved[T]{}, iss
	}
	at := Root().Field(r.disc)
	d, present := obj[r.disc]
	if !present || d == nil {
		iss := append(pre, at.Issue(CodeDiscriminatorMissing,
			i18n.T(CodeDiscriminatorMissing, map[string]string{"field": r.disc}), "field", r.disc))
		r.v.recordIssues(len(iss))
		return Resolved[T]{}, iss
	}
	tag, isString := d.(string)
	uv := r.byTag[tag]
	if !isString || uv == nil {
		allowed := r.Tags()
		sort.Strings(allowed)
		it := at.Issue(CodeDiscriminatorUnknown,
			i18n.T(CodeDiscriminatorUnknown, map[string]string{"value": fmt.Sprint(d)}), "value", d, "allowed", allowed)
		it.Value = d
		iss := append(pre, it)
		r.v.recordIssues(len(iss))
		return Resolved[T]{}, iss
	}

	desc, err := r.v.descriptor(uv.typ)
	if err != nil {
		return Resolved[T]{}, err
	}
	ptr := reflect.New(uv.typ)
	err = r.v.apply(desc, alloc(ptr.Elem()), obj, r.disc, pre)
	out := Resolved[T]{Tag: tag}
	if uv.ptr {
		out.Value = ptr.Interface().(T)
	} else {
		out.Value = ptr.Elem().Interface().(T)
	}
	return out, err
}

// Schema renders the union as a oneOf of its variants with an OpenAPI
// discriminator. Each branch pins the discriminator with const. The document
// is cached until a registration on the validator changes it; callers get
// their own copy.
func (r *UnionResolver[T]) Schema() (*js.Schema, error) {
	ver := r.v.version()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schema == nil || r.schemaVer != ver {
		doc, err := r.render()
		if err != nil {
			return nil, err
		}
		r.schema, r.schemaVer = doc, ver
	}
	return r.schema.Clone(), nil
}

func (r *UnionResolver[T]) render() (*js.Schema, error) {
	g := schemagen.New(schemagen.Options{RejectExtra: r.v.opts.extra == ExtraReject})
	root := &js.Schema{
		Schema:        js.Draft,
		Discriminator: &js.Discriminator{PropertyName: r.disc},
	}
	for _, uv := range r.variants {
		desc, err := r.v.descriptor(uv.typ)
		if err != nil {
			return nil, err
		}
		sc, err := g.Object(desc)
		if err != nil {
			return nil, err
		}
		sc.Title = uv.typ.Name()
		sc.Properties[r.disc] = &js.Schema{Type: "string", Const: uv.tag}
		if !slices.Contains(sc.Required, r.disc) {
			sc.Required = append([]string{r.disc}, sc.Required...)
		}
		root.OneOf = append(root.OneOf, sc)
	}
	root.Defs = g.Defs()
	return root, nil
}
