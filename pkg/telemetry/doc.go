// Package telemetry provides observability instrumentation for the loadout
// engine.
//
// The telemetry package integrates structured logging (zerolog), distributed
// tracing (OpenTelemetry), metrics (Prometheus), and event publishing into a
// unified system.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("workbench")
//	logger = logger.WithLoadout(l.ID.String(), l.Name).WithItem("medium_laser")
//	logger.Info("item added")
//
// Levels are parsed by zerolog: trace, debug, info, warn, error. Without a
// logger in the context, FromContext discards.
//
// # Distributed Tracing
//
// Workbench operations run inside spans started with StartOperation:
//
//	op := telemetry.StartOperation(ctx, "add",
//	    telemetry.AttrLoadoutID.String(id),
//	    telemetry.AttrItemID.String(item),
//	)
//	defer op.End(err)
//
// An auto placement adds a resolver.search child span carrying
// resolver.attempts and resolver.steps. Supported exporters: otlp (gRPC),
// stdout, none.
//
// # Metrics
//
// All recording methods are safe on a nil *Metrics, so components can hold
// an optional collector without guarding each call. StartMetricsServer binds
// synchronously and logs serve failures through the metrics component
// logger.
//
//  - mechforge_commands_applied_total{kind,coalesced}
//  - mechforge_commands_undone_total{kind}
//  - mechforge_commands_redone_total{kind}
//  - mechforge_equip_failures_total{reason}
//  - mechforge_undo_depth
//  - mechforge_resolver_duration_seconds{outcome}
//  - mechforge_resolver_attempts
//  - mechforge_operation_duration_seconds{operation,status}
//  - mechforge_errors_by_class_total{class}
//
// # Events
//
// EventPublisher fans events out to subscribers. Delivery to subscribers is
// sequential and preserves publish order in both sync and async mode.
//
//	tel.Events.Subscribe(func(e telemetry.Event) {
//	    fmt.Println(e.Type, e.Message)
//	}, telemetry.FilterByLevel(telemetry.EventLevelWarning))
package telemetry
