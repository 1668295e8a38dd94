package config

import (
	"os"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_BACKEND", "DATA_FILE", "GOOGLE_CLOUD_PROJECT", "FIRESTORE_COLLECTION",
		"DATABASE_URI", "LINE_CHANNEL_TOKEN", "LINE_CHANNEL_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != BackendFile || cfg.DataFile != "todos.json" {
		t.Errorf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.FirestoreCollection != "todos" {
		t.Errorf("FirestoreCollection = %q", cfg.FirestoreCollection)
	}
	if cfg.LineEnabled() {
		t.Error("LINE should be disabled without credentials")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "5000")
	t.Setenv("DATA_FILE", "/var/lib/todo/todos.json")
	t.Setenv("LINE_CHANNEL_TOKEN", "token")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "5000" || cfg.DataFile != "/var/lib/todo/todos.json" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if !cfg.LineEnabled() {
		t.Error("LINE should be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"file ok", Config{StorageBackend: BackendFile, DataFile: "todos.json"}, ""},
		{"file missing path", Config{StorageBackend: BackendFile}, "DATA_FILE"},
		{"firestore missing project", Config{StorageBackend: BackendFirestore}, "GOOGLE_CLOUD_PROJECT"},
		{"firestore ok", Config{StorageBackend: BackendFirestore, GoogleCloudProject: "p"}, ""},
		{"postgres missing uri", Config{StorageBackend: BackendPostgres}, "DATABASE_URI"},
		{"unknown backend", Config{StorageBackend: "redis"}, "unknown STORAGE_BACKEND"},
		{"half line config", Config{StorageBackend: BackendFile, DataFile: "x", LineChannelToken: "t"}, "LINE_CHANNEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
