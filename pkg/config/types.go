package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the mechforge configuration file.
type Config struct {
	// Catalog locates the reference data document.
	Catalog CatalogConfig `yaml:"catalog"`

	// Database configures the SQLite store holding the catalog mirror and
	// the command journal.
	Database DatabaseConfig `yaml:"database"`

	// Engine tunes the loadout engine.
	Engine EngineConfig `yaml:"engine"`

	// Policy selects the loadout checks run after edits.
	Policy PolicyConfig `yaml:"policy"`

	// Telemetry selects logging, tracing and metrics output.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CatalogConfig locates the reference catalog.
type CatalogConfig struct {
	// Path is the YAML catalog file.
	Path string `yaml:"path" validate:"required"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path is the database file. Empty disables persistence.
	Path string `yaml:"path"`

	// MaxOpenConns bounds the connection pool. Zero uses the store default.
	MaxOpenConns int `yaml:"max_open_conns" validate:"min=0"`

	// Journal records every applied command when a database is configured.
	Journal bool `yaml:"journal"`
}

// EngineConfig tunes the undo stack, armor distribution and auto placement.
type EngineConfig struct {
	// UndoDepth is the number of undo steps kept per loadout.
	UndoDepth int `yaml:"undo_depth" validate:"min=1,max=100000"`

	// ArmorRatio is the front to back armor ratio of torso components.
	ArmorRatio float64 `yaml:"armor_ratio" validate:"gt=0"`

	// AutoAddOrder is the location preference of auto placement. Empty
	// means the engine default.
	AutoAddOrder []string `yaml:"auto_add_order" validate:"omitempty,unique,dive,location"`

	// ArmorPriority replaces the default armor distribution tiers with a
	// fixed order, one location per tier. Empty keeps the default policy.
	ArmorPriority []string `yaml:"armor_priority" validate:"omitempty,unique,dive,location"`

	// MaxAttempts bounds the auto placement search. Zero means the engine
	// default.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0"`

	// ScriptTimeout bounds a single script run.
	ScriptTimeout time.Duration `yaml:"script_timeout" validate:"min=0"`
}

// PolicyConfig selects custom Rego policies.
type PolicyConfig struct {
	// Paths lists .rego and .json files or directories of them. Relative
	// paths resolve against the config file.
	Paths []string `yaml:"paths" validate:"dive,required"`

	// Disabled names policies, builtin or custom, that are not evaluated.
	Disabled []string `yaml:"disabled" validate:"unique,dive,required"`
}

// TelemetryConfig is the user facing subset of the telemetry settings.
type TelemetryConfig struct {
	// LogLevel sets the minimum log level.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal"`

	// LogFormat is console or json.
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=console json"`

	// TraceExporter selects the span exporter.
	TraceExporter string `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`

	// TraceEndpoint is the OTLP collector address.
	TraceEndpoint string `yaml:"trace_endpoint" validate:"required_if=TraceExporter otlp"`

	// MetricsAddress serves /metrics on this address when set.
	MetricsAddress string `yaml:"metrics_address"`
}

// ValidationError is a single configuration problem.
type ValidationError struct {
	// Path is the dotted yaml path of the offending field.
	Path string `json:"path,omitempty"`

	// Message is the error message.
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}
