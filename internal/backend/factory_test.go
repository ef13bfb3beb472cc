package backend

import (
	"context"
	"path/filepath"
	"testing"

	"spendlog/internal/config"
	"spendlog/internal/storage"
)

func TestFactory_Create(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: config.BackendMemory}},
		{"file", Config{Type: config.BackendFile, DataDir: filepath.Join(dir, "files")}},
		{"sqlite", Config{Type: config.BackendSQLite, SQLiteDBPath: filepath.Join(dir, "db", "test.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).Create(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			defer res.Close()

			if res.Type != tt.cfg.Type {
				t.Fatalf("Type = %q, want %q", res.Type, tt.cfg.Type)
			}
			if err := res.Storage.Set(ctx, storage.DefaultKey, "[]"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := res.Storage.Get(ctx, storage.DefaultKey)
			if err != nil || !ok || v != "[]" {
				t.Fatalf("Get = %q, %v, %v", v, ok, err)
			}
		})
	}
}

func TestFactory_CreateUnknown(t *testing.T) {
	if _, err := NewFactory(nil).Create(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{StorageBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "d"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != "sqlite" || cfg.SQLiteDBPath != "x.db" || cfg.DataDir != "d" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestResult_CloseNil(t *testing.T) {
	var r *Result
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}
