package tagskema

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/reoring/tagskema"

// metrics holds the instruments. They are created once per Validator.
type metrics struct {
	builds       metric.Int64Counter
	schemaHits   metric.Int64Counter
	schemaMisses metric.Int64Counter
	issues       metric.Int64Counter
	feeds        metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(meterName)
	m := &metrics{}
	var err error
	if m.builds, err = meter.Int64Counter("tagskema.descriptor.builds",
		metric.WithDescription("Descriptor builds, including failed ones"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create builds counter: %w", err)
	}
	if m.schemaHits, err = meter.Int64Counter("tagskema.schema.cache_hits",
		metric.WithDescription("Schema requests served from cache"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create schema hits counter: %w", err)
	}
	if m.schemaMisses, err = meter.Int64Counter("tagskema.schema.cache_misses",
		metric.WithDescription("Schema generations"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create schema misses counter: %w", err)
	}
	if m.issues, err = meter.Int64Counter("tagskema.validation.issues",
		metric.WithDescription("Validation issues reported"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create issues counter: %w", err)
	}
	if m.feeds, err = meter.Int64Counter("tagskema.stream.feeds",
		metric.WithDescription("Chunks fed to stream accumulators"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create feeds counter: %w", err)
	}
	return m, nil
}

// Stats is a snapshot of a Validator's cache activity.
type Stats struct {
	DescriptorBuilds uint64
	SchemaHits       uint64
	SchemaMisses     uint64
}

type counters struct {
	builds       atomic.Uint64
	schemaHits   atomic.Uint64
	schemaMisses atomic.Uint64
}

func (v *Validator) recordBuild(typ string) {
	v.stats.builds.Add(1)
	v.metrics.builds.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", typ)))
}

func (v *Validator) recordSchema(hit bool, mode SchemaMode) {
	attrs := metric.WithAttributes(attribute.String("mode", mode.String()))
	if hit {
		v.stats.schemaHits.Add(1)
		v.metrics.schemaHits.Add(context.Background(), 1, attrs)
		return
	}
	v.stats.schemaMisses.Add(1)
	v.metrics.schemaMisses.Add(context.Background(), 1, attrs)
}

func (v *Validator) recordIssues(n int) {
	if n > 0 {
		v.metrics.issues.Add(context.Background(), int64(n))
	}
}

func (v *Validator) recordFeed() {
	v.metrics.feeds.Add(context.Background(), 1)
}
