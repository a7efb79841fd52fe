package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. The push manager, the
// tracker pipeline and the storage providers pull from these nested structs.
type Config struct {
	Tracking TrackingConfig `mapstructure:"tracking" json:"tracking"`
	Async    AsyncConfig    `mapstructure:"async" json:"async"`
	Storage  StorageConfig  `mapstructure:"storage" json:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging" json:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" json:"metrics"`
}

// TrackingConfig holds the system-level feature toggles. Nil means enabled.
type TrackingConfig struct {
	AutomaticTracking *bool `mapstructure:"automatic_tracking" json:"automatic_tracking,omitempty"`
	OpenURLs          *bool `mapstructure:"open_urls" json:"open_urls,omitempty"`
	TrackTokens       *bool `mapstructure:"track_tokens" json:"track_tokens,omitempty"`
}

// AsyncConfig sizes the background tracking queue.
type AsyncConfig struct {
	Enabled     *bool         `mapstructure:"enabled" json:"enabled,omitempty"`
	QueueSize   int           `mapstructure:"queue_size" json:"queue_size"`
	Workers     int           `mapstructure:"workers" json:"workers"`
	MaxRetries  int           `mapstructure:"max_retries" json:"max_retries"`
	BackoffBase time.Duration `mapstructure:"backoff_base" json:"backoff_base"`
}

// StorageConfig selects where tracked events are persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// LoggingConfig controls the zap logger built by the container.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// MetricsConfig enables the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Tracking: TrackingConfig{
			AutomaticTracking: Bool(true),
			OpenURLs:          Bool(true),
			TrackTokens:       Bool(true),
		},
		Async: AsyncConfig{
			Enabled:     Bool(true),
			QueueSize:   64,
			Workers:     2,
			MaxRetries:  1,
			BackoffBase: 200 * time.Millisecond,
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Enabled reports a toggle, treating nil as enabled.
func Enabled(v *bool) bool { return v == nil || *v }

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.Async.QueueSize < 0 {
		return fmt.Errorf("async.queue_size must be >= 0")
	}
	if c.Async.Workers < 0 {
		return fmt.Errorf("async.workers must be >= 0")
	}
	if c.Async.MaxRetries < 0 {
		return fmt.Errorf("async.max_retries must be >= 0")
	}
	if c.Async.BackoffBase < 0 {
		return fmt.Errorf("async.backoff_base must be >= 0")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// When cfgx.Build yields a zero value we fall back to a JSON round trip so
// maps and structs still load.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	return finalize(cfg)
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func finalize(cfg Config) (Config, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Tracking.AutomaticTracking == nil {
		c.Tracking.AutomaticTracking = defaults.Tracking.AutomaticTracking
	}
	if c.Tracking.OpenURLs == nil {
		c.Tracking.OpenURLs = defaults.Tracking.OpenURLs
	}
	if c.Tracking.TrackTokens == nil {
		c.Tracking.TrackTokens = defaults.Tracking.TrackTokens
	}
	if c.Async.Enabled == nil {
		c.Async.Enabled = defaults.Async.Enabled
	}
	if c.Async.QueueSize == 0 {
		c.Async.QueueSize = defaults.Async.QueueSize
	}
	if c.Async.Workers == 0 {
		c.Async.Workers = defaults.Async.Workers
	}
	if c.Async.BackoffBase == 0 {
		c.Async.BackoffBase = defaults.Async.BackoffBase
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
