package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mechforge/mechforge/pkg/catalog"
	"github.com/mechforge/mechforge/pkg/config"
	"github.com/mechforge/mechforge/pkg/policy"
	"github.com/mechforge/mechforge/pkg/stores"
	"github.com/mechforge/mechforge/pkg/telemetry"
	"github.com/mechforge/mechforge/pkg/workbench"
)

// session bundles what a command needs to edit loadouts.
type session struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	tel      *telemetry.Telemetry
	store    *stores.SQLiteStore
	journal  bool
	policies *policy.Engine
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Catalog.Path = relativeToConfig(cfg.Catalog.Path)
	for i, p := range cfg.Policy.Paths {
		cfg.Policy.Paths[i] = relativeToConfig(p)
	}
	return cfg, nil
}

func relativeToConfig(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}

// loadCatalog prefers --catalog, then the config file, then the builtin
// catalog.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	switch {
	case catalogPath != "":
		return catalog.Load(catalogPath)
	case configPath != "":
		return catalog.Load(cfg.Catalog.Path)
	default:
		return catalog.Builtin(), nil
	}
}

// openSession loads the configuration, the catalog and telemetry. dbPath
// overrides the configured database and turns the journal on.
func openSession(ctx context.Context, dbPath string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, journal: cfg.Database.Journal}

	// stdout carries command output
	tcfg := cfg.TelemetryConfig()
	tcfg.Logging.Output = "stderr"
	s.tel, err = telemetry.NewTelemetry(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if cfg.Telemetry.MetricsAddress != "" {
		if err := s.tel.StartMetricsServer(); err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
		log.Info().Str("address", cfg.Telemetry.MetricsAddress).Msg("Serving metrics")
	}

	s.catalog, err = loadCatalog(cfg)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	if s.policies, err = newPolicyEngine(ctx, cfg, s.tel.Logger.NewComponentLogger("policy").Zerolog()); err != nil {
		s.Close(ctx)
		return nil, err
	}

	items, chassis, upgrades := s.catalog.Counts()
	_ = s.tel.Events.PublishCatalogLoaded(s.catalog.Source(), items, chassis, upgrades)

	path := cfg.Database.Path
	if dbPath != "" {
		path = dbPath
		s.journal = true
	}
	if path != "" {
		if s.store, err = openStore(ctx, path, cfg.Database.MaxOpenConns); err != nil {
			s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

func openStore(ctx context.Context, path string, maxOpen int) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: path, MaxOpenConns: maxOpen})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// newWorkbench creates a workbench for chassisID wired to the session
// telemetry and, when enabled, the journal.
func (s *session) newWorkbench(chassisID string) (*workbench.Workbench, error) {
	opts := []workbench.Option{
		workbench.WithEngineConfig(s.cfg.Engine),
		workbench.WithTelemetry(s.tel),
	}
	if s.store != nil && s.journal {
		opts = append(opts, workbench.WithJournal(s.store))
	}
	return workbench.New(s.catalog, chassisID, opts...)
}

func (s *session) Close(ctx context.Context) {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
	if s.tel != nil {
		if err := s.tel.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down telemetry")
		}
	}
}
