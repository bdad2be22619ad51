package tagskema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
)

// Config is the environment-facing form of the validator options.
type Config struct {
	StrictMissingFields bool   `env:"TAGSKEMA_STRICT_MISSING_FIELDS,default=true"`
	ExtraFields         string `env:"TAGSKEMA_EXTRA_FIELDS,default=ignore"`
	TagKey              string `env:"TAGSKEMA_TAG_KEY,default=validate"`
	DuplicateKeys       string `env:"TAGSKEMA_DUPLICATE_KEYS,default=allow"`
	MaxDepth            int    `env:"TAGSKEMA_MAX_DEPTH,default=0"`
}

// DefaultConfig mirrors the defaults of New.
func DefaultConfig() Config {
	return Config{StrictMissingFields: true, ExtraFields: "ignore", TagKey: "validate", DuplicateKeys: "allow"}
}

// ConfigFromEnv reads TAGSKEMA_* variables. Unset variables take their
// defaults; a value that does not parse is an error.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("tagskema: decode env: %w", err)
	}
	return cfg, nil
}

// Options converts the config into validator options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithStrictMissingFields(c.StrictMissingFields),
		WithTagKey(c.TagKey),
		WithMaxDepth(c.MaxDepth),
	}
	switch strings.ToLower(c.ExtraFields) {
	case "", "ignore":
		opts = append(opts, WithExtraFields(ExtraIgnore))
	case "reject":
		opts = append(opts, WithExtraFields(ExtraReject))
	case "capture":
		opts = append(opts, WithExtraFields(ExtraCapture))
	default:
		return nil, fmt.Errorf("tagskema: unknown extra fields policy %q", c.ExtraFields)
	}
	switch strings.ToLower(c.DuplicateKeys) {
	case "", "allow":
		opts = append(opts, WithDuplicateKeys(DuplicateAllow))
	case "reject":
		opts = append(opts, WithDuplicateKeys(DuplicateReject))
	default:
		return nil, fmt.Errorf("tagskema: unknown duplicate keys policy %q", c.DuplicateKeys)
	}
	if c.MaxDepth < 0 {
		return nil, fmt.Errorf("tagskema: max depth must not be negative")
	}
	return opts, nil
}
