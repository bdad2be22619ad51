package tagskema

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/reoring/tagskema/format"
	"github.com/reoring/tagskema/internal/descriptor"
)

// CrossValidator is implemented by types that check relations between their
// own fields. It runs once on the top-level value after field validation.
// Implementations must not call back into the Validator for the same value.
type CrossValidator interface {
	CrossValidate() error
}

var crossValidatorType = reflect.TypeFor[CrossValidator]()

type factory struct {
	fn  func() any
	typ reflect.Type
}

// Validator validates tagged structs, generates their JSON Schema and drives
// stream accumulators and union resolvers. It is safe for concurrent use.
type Validator struct {
	opts    options
	formats *format.Registry
	log     *slog.Logger
	metrics *metrics
	stats   counters

	descs   descriptor.Cache
	schemas schemaCache

	mu        sync.RWMutex
	hooks     map[reflect.Type]func(any) error
	factories map[string]factory
	gen       atomic.Uint64
}

// New returns a Validator with its own descriptor and schema caches.
func New(opts ...Option) *Validator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	v := &Validator{
		opts:      o,
		formats:   o.formats,
		log:       o.logger,
		hooks:     make(map[reflect.Type]func(any) error),
		factories: make(map[string]factory),
	}
	if v.formats == nil {
		v.formats = format.Default()
	}
	if v.log == nil {
		v.log = slog.New(slog.DiscardHandler)
	}
	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m, err := newMetrics(mp)
	if err != nil {
		v.log.Warn("metrics disabled", slog.Any("error", err))
		m, _ = newMetrics(noop.NewMeterProvider())
	}
	v.metrics = m
	return v
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns a shared Validator with default options.
func Default() *Validator {
	defaultOnce.Do(func() { defaultV = New() })
	return defaultV
}

// Formats returns the format registry in use.
func (v *Validator) Formats() *format.Registry { return v.formats }

// RegisterFormat adds a named string predicate usable as a tag token.
func (v *Validator) RegisterFormat(name string, p format.Predicate) error {
	return v.formats.Register(name, p)
}

// RegisterAlias makes name expand to tag in validation tags.
func (v *Validator) RegisterAlias(name, tag string) error {
	return v.formats.RegisterAlias(name, tag)
}

// Stats returns cache counters.
func (v *Validator) Stats() Stats {
	return Stats{
		DescriptorBuilds: v.stats.builds.Load(),
		SchemaHits:       v.stats.schemaHits.Load(),
		SchemaMisses:     v.stats.schemaMisses.Load(),
	}
}

// RegisterHook installs fn as the cross-field check for T, replacing a
// CrossValidator implementation if T has one.
func RegisterHook[T any](v *Validator, fn func(*T) error) {
	t := reflect.TypeFor[T]()
	v.mu.Lock()
	v.hooks[t] = func(p any) error { return fn(p.(*T)) }
	v.mu.Unlock()
	v.bump("hook", t.String())
}

// RegisterDefaultFactory makes name available to `default_factory=name` on
// fields assignable from T.
func RegisterDefaultFactory[T any](v *Validator, name string, fn func() T) error {
	if name == "" || fn == nil {
		return fmt.Errorf("tagskema: empty factory name or nil factory")
	}
	v.mu.Lock()
	if _, dup := v.factories[name]; dup {
		v.mu.Unlock()
		return fmt.Errorf("tagskema: default factory %q already registered", name)
	}
	v.factories[name] = factory{fn: func() any { return fn() }, typ: reflect.TypeFor[T]()}
	v.mu.Unlock()
	v.bump("default_factory", name)
	return nil
}

func (v *Validator) bump(kind, name string) {
	v.gen.Add(1)
	v.log.Debug("descriptor cache invalidated", slog.String("registration", kind), slog.String("name", name))
}

// Register builds and caches the descriptor of T so that tag errors surface
// at startup.
func Register[T any](v *Validator) error {
	_, err := v.descriptor(reflect.TypeFor[T]())
	return err
}

// MustRegister is Register that panics on error.
func MustRegister[T any](v *Validator) {
	if err := Register[T](v); err != nil {
		panic(err)
	}
}

func (v *Validator) version() uint64 { return v.formats.Version() + v.gen.Load() }

func (v *Validator) descriptor(t reflect.Type) (*descriptor.Struct, error) {
	t = descriptor.Indirect(t)
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}
	s, built, err := v.descs.Get(t, v.version(), func() (*descriptor.Struct, error) {
		return descriptor.Build(t, descriptor.Options{
			TagKey:         v.opts.tagKey,
			Formats:        v.formats,
			Hook:           v.hookFor,
			Factory:        v.factoryFor,
			RequireCapture: v.opts.extra == ExtraCapture,
		})
	})
	if built {
		v.recordBuild(t.String())
		if err != nil {
			v.log.Debug("descriptor build failed", slog.String("type", t.String()), slog.Any("error", err))
		} else {
			v.log.Debug("descriptor built", slog.String("type", t.String()),
				slog.Int("fields", len(s.Fields)), slog.Uint64("fingerprint", s.Fingerprint))
		}
	}
	return s, err
}

func (v *Validator) hookFor(t reflect.Type) func(any) error {
	v.mu.RLock()
	h, ok := v.hooks[t]
	v.mu.RUnlock()
	if ok {
		return h
	}
	if reflect.PointerTo(t).Implements(crossValidatorType) {
		return func(p any) error { return p.(CrossValidator).CrossValidate() }
	}
	return nil
}

func (v *Validator) factoryFor(name string) (func() any, reflect.Type, bool) {
	v.mu.RLock()
	f, ok := v.factories[name]
	v.mu.RUnlock()
	return f.fn, f.typ, ok
}
