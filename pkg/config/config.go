package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mechforge/mechforge/pkg/engine"
	"github.com/mechforge/mechforge/pkg/model"
	"github.com/mechforge/mechforge/pkg/telemetry"
)

// DefaultScriptTimeout bounds script runs when no timeout is configured.
const DefaultScriptTimeout = 30 * time.Second

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{Path: "catalog.yaml"},
		Engine: EngineConfig{
			UndoDepth:     engine.DefaultDepth,
			ArmorRatio:    3,
			MaxAttempts:   engine.DefaultMaxAttempts,
			ScriptTimeout: DefaultScriptTimeout,
		},
		Telemetry: TelemetryConfig{
			LogLevel:      "info",
			LogFormat:     "console",
			TraceExporter: "none",
		},
	}
}

// Load reads and validates a YAML configuration file. Fields missing from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML configuration. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("location", func(fl validator.FieldLevel) bool {
		_, err := model.ParseLocation(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the struct constraints of the configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, ValidationError{Path: path, Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "location":
		return fmt.Sprintf("unknown location %q", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "unique":
		return "must not repeat"
	case "min", "gt":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Locations parses a list of location names.
func Locations(names []string) ([]model.Location, error) {
	out := make([]model.Location, 0, len(names))
	for _, n := range names {
		loc, err := model.ParseLocation(n)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

// Resolver builds the auto placement resolver.
func (e EngineConfig) Resolver() (*engine.Resolver, error) {
	order, err := Locations(e.AutoAddOrder)
	if err != nil {
		return nil, fmt.Errorf("auto_add_order: %w", err)
	}
	return &engine.Resolver{Order: order, MaxAttempts: e.MaxAttempts}, nil
}

// ArmorPolicy returns the configured armor distribution policy.
func (e EngineConfig) ArmorPolicy() (engine.ArmorPolicy, error) {
	if len(e.ArmorPriority) == 0 {
		return engine.DefaultArmorPolicy{}, nil
	}
	order, err := Locations(e.ArmorPriority)
	if err != nil {
		return nil, fmt.Errorf("armor_priority: %w", err)
	}
	return engine.StaticArmorPolicy(order), nil
}

// Apply copies the settings onto a telemetry configuration.
func (t TelemetryConfig) Apply(cfg *telemetry.Config) *telemetry.Config {
	if t.LogLevel != "" {
		cfg.Logging.Level = t.LogLevel
	}
	if t.LogFormat != "" {
		cfg.Logging.Format = t.LogFormat
	}
	if t.TraceExporter != "" {
		cfg.Tracing.Exporter = t.TraceExporter
	}
	if t.TraceEndpoint != "" {
		cfg.Tracing.Endpoint = t.TraceEndpoint
	}
	if t.MetricsAddress != "" {
		cfg.Metrics.ListenAddress = t.MetricsAddress
	}
	return cfg
}

// TelemetryConfig returns the full telemetry configuration.
func (c *Config) TelemetryConfig() *telemetry.Config {
	return c.Telemetry.Apply(telemetry.DefaultConfig())
}
