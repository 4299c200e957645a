// Package config loads the mechforge configuration file.
//
// The file is YAML and every section is optional; missing fields keep the
// values returned by Default. Struct constraints are checked with
// go-playground/validator and reported as ValidationErrors keyed by the
// dotted yaml path of the offending field.
//
//	catalog:
//	  path: catalog.yaml
//	database:
//	  path: forge.db
//	  journal: true
//	engine:
//	  undo_depth: 128
//	  armor_ratio: 3
//	  auto_add_order: [RA, RT, RL, HD, CT, LT, LL, LA]
//	  armor_priority: []
//	  max_attempts: 20000
//	  script_timeout: 30s
//	policy:
//	  paths: [policies]
//	  disabled: [rear-armor]
//	telemetry:
//	  log_level: info
//	  log_format: console
//	  trace_exporter: none
//	  metrics_address: ":9090"
//
// Relative catalog and policy paths are resolved against the config file by
// the CLI.
//
// EngineConfig converts into the engine's Resolver and ArmorPolicy, and
// TelemetryConfig is applied on top of telemetry.DefaultConfig.
package config
