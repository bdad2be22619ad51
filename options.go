package tagskema

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/reoring/tagskema/format"
	"github.com/reoring/tagskema/internal/descriptor"
)

// ExtraFields is the policy for input keys that map to no field.
type ExtraFields int

const (
	// ExtraIgnore drops unknown keys.
	ExtraIgnore ExtraFields = iota
	// ExtraReject reports one unknown_key issue per unknown key.
	ExtraReject
	// ExtraCapture stores unknown keys in the map[string]any field tagged
	// `extras`. Root types must declare one.
	ExtraCapture
)

func (e ExtraFields) String() string {
	switch e {
	case ExtraReject:
		return "reject"
	case ExtraCapture:
		return "capture"
	default:
		return "ignore"
	}
}

// DuplicateKeys is the policy for repeated object keys in JSON input.
type DuplicateKeys int

const (
	// DuplicateAllow keeps the last occurrence silently.
	DuplicateAllow DuplicateKeys = iota
	// DuplicateReject keeps the last occurrence and reports a duplicate_key issue.
	DuplicateReject
)

type options struct {
	strictMissing bool
	extra         ExtraFields
	tagKey        string
	duplicates    DuplicateKeys
	maxDepth      int
	formats       *format.Registry
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

func defaultOptions() options {
	return options{
		strictMissing: true,
		tagKey:        descriptor.DefaultTagKey,
	}
}

// Option configures a Validator.
type Option func(*options)

// WithStrictMissingFields controls whether an absent `required` field is an
// issue when unmarshaling. Defaults to true.
func WithStrictMissingFields(strict bool) Option {
	return func(o *options) { o.strictMissing = strict }
}

// WithExtraFields sets the unknown-key policy. Defaults to ExtraIgnore.
func WithExtraFields(p ExtraFields) Option {
	return func(o *options) { o.extra = p }
}

// WithTagKey sets the struct tag holding constraints. Defaults to "validate".
func WithTagKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.tagKey = key
		}
	}
}

// WithDuplicateKeys sets the duplicate JSON key policy.
func WithDuplicateKeys(p DuplicateKeys) Option {
	return func(o *options) { o.duplicates = p }
}

// WithMaxDepth bounds JSON nesting depth. Zero means unlimited.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithFormats uses r instead of the process-wide format registry.
func WithFormats(r *format.Registry) Option {
	return func(o *options) { o.formats = r }
}

// WithLogger sets the logger for debug records. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeterProvider sets the OpenTelemetry meter provider. Defaults to the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}
