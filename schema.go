package tagskema

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/tagskema/internal/schemagen"
	js "github.com/reoring/tagskema/jsonschema"
)

// SchemaMode selects how nested struct types appear in generated schemas.
type SchemaMode int

const (
	// SchemaInline embeds nested structs. Recursive types fall back to $defs.
	SchemaInline SchemaMode = iota
	// SchemaRefs emits every nested struct type once under $defs.
	SchemaRefs
)

func (m SchemaMode) String() string {
	if m == SchemaRefs {
		return "refs"
	}
	return "inline"
}

// SchemaOption configures schema generation.
type SchemaOption func(*schemaOptions)

type schemaOptions struct{ mode SchemaMode }

// WithSchemaMode selects inline or $ref output. Defaults to SchemaInline.
func WithSchemaMode(m SchemaMode) SchemaOption {
	return func(o *schemaOptions) { o.mode = m }
}

type schemaKey struct {
	t    reflect.Type
	mode SchemaMode
}

type schemaEntry struct {
	once        sync.Once
	fingerprint uint64
	version     uint64
	doc         *js.Schema
	raw         []byte
	generatedAt time.Time
	err         error
}

// schemaCache holds generated documents per (type, mode). An entry is reused
// while the descriptor fingerprint and registry version it was built from
// still match.
type schemaCache struct {
	entries sync.Map // schemaKey -> *schemaEntry
}

func (c *schemaCache) get(k schemaKey, fp, version uint64, gen func() (*js.Schema, []byte, error)) (*schemaEntry, bool) {
	for {
		v, _ := c.entries.LoadOrStore(k, &schemaEntry{fingerprint: fp, version: version})
		e := v.(*schemaEntry)
		if e.fingerprint != fp || e.version < version {
			c.entries.CompareAndSwap(k, e, &schemaEntry{fingerprint: fp, version: version})
			continue
		}
		hit := true
		e.once.Do(func() {
			hit = false
			e.doc, e.raw, e.err = gen()
			e.generatedAt = time.Now()
		})
		return e, hit
	}
}

// SchemaOf returns the JSON Schema of t. The document is a private copy.
func (v *Validator) SchemaOf(t reflect.Type, mode SchemaMode) (*js.Schema, error) {
	e, err := v.schemaEntry(t, mode)
	if err != nil {
		return nil, err
	}
	return e.doc.Clone(), nil
}

func (v *Validator) schemaEntry(t reflect.Type, mode SchemaMode) (*schemaEntry, error) {
	s, err := v.descriptor(t)
	if err != nil {
		return nil, err
	}
	e, hit := v.schemas.get(schemaKey{t: s.Type, mode: mode}, s.Fingerprint, v.version(), func() (*js.Schema, []byte, error) {
		doc, err := schemagen.Generate(s, schemagen.Options{
			Mode:        schemagen.Mode(mode),
			RejectExtra: v.opts.extra == ExtraReject,
		})
		if err != nil {
			return nil, nil, err
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("tagskema: marshal schema of %v: %w", s.Type, err)
		}
		return doc, raw, nil
	})
	v.recordSchema(hit, mode)
	if !hit {
		v.log.Debug("schema generated", slog.String("type", s.Type.String()),
			slog.String("mode", mode.String()), slog.Int("bytes", len(e.raw)))
	}
	if e.err != nil {
		return nil, e.err
	}
	return e, nil
}

func schemaMode(opts []SchemaOption) SchemaMode {
	var o schemaOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.mode
}

// Schema returns the JSON Schema document of T. Repeated calls are served from
// the cache; each caller receives its own copy.
func Schema[T any](v *Validator, opts ...SchemaOption) (*js.Schema, error) {
	return v.SchemaOf(reflect.TypeFor[T](), schemaMode(opts))
}

// SchemaJSON returns the serialized schema of T. Identical for every call
// while T and the registries are unchanged.
func SchemaJSON[T any](v *Validator, opts ...SchemaOption) ([]byte, error) {
	e, err := v.schemaEntry(reflect.TypeFor[T](), schemaMode(opts))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(e.raw))
	copy(out, e.raw)
	return out, nil
}

// SchemaYAML renders the schema of T as YAML.
func SchemaYAML[T any](v *Validator, opts ...SchemaOption) ([]byte, error) {
	e, err := v.schemaEntry(reflect.TypeFor[T](), schemaMode(opts))
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(e.doc)
	if err != nil {
		return nil, fmt.Errorf("tagskema: yaml schema: %w", err)
	}
	return out, nil
}
