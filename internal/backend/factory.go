// Package backend builds the storage collaborator selected by configuration.
package backend

import (
	"context"
	"fmt"

	"spendlog/internal/config"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
	"spendlog/internal/storage/file"
	"spendlog/internal/storage/memory"
	"spendlog/internal/storage/postgres"
	"spendlog/internal/storage/sqlite"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result contains the storage instance and an optional cleanup function.
type Result struct {
	Type    string
	Storage storage.KeyValue
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Config holds what the factory needs to open a backend.
type Config struct {
	Type         string
	DataDir      string
	SQLiteDBPath string
	PostgresURL  string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	return Config{
		Type:         cfg.StorageBackend,
		DataDir:      cfg.DataDir,
		SQLiteDBPath: cfg.SQLiteDBPath,
		PostgresURL:  cfg.PostgresURL,
	}, nil
}

// Factory opens storage backends.
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Create opens the backend named by cfg.Type.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch cfg.Type {
	case config.BackendMemory:
		res = &Result{Storage: memory.New()}
	case config.BackendFile:
		res, err = f.createFile(cfg)
	case config.BackendSQLite:
		res, err = f.createSQLite(cfg)
	case config.BackendPostgres:
		res, err = f.createPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	res.Type = cfg.Type
	f.logger.InfoContext(ctx, "Initialized storage backend", applog.FieldBackend, cfg.Type)
	return res, nil
}

func (f *Factory) createFile(cfg Config) (*Result, error) {
	store, err := file.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}
	f.logger.Debug("File store ready", "data_dir", cfg.DataDir)
	return &Result{Storage: store}, nil
}

func (f *Factory) createSQLite(cfg Config) (*Result, error) {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Debug("SQLite repository ready", "db_path", cfg.SQLiteDBPath)
	return &Result{Storage: repo, Cleanup: repo.Close}, nil
}

func (f *Factory) createPostgres(ctx context.Context, cfg Config) (*Result, error) {
	repo, err := postgres.NewRepository(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}
	return &Result{Storage: repo, Cleanup: repo.Close}, nil
}
