package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseURL: "https://edulite.example.org/api",
		BaseDir: "/home/user/.local/share/edulite",
		LogDir:  "/home/user/.local/share/edulite/log",
		Tokens: TokensConfig{
			Type: "file",
			Path: "/home/user/.local/share/edulite/tokens.json",
		},
		LocalStore: LocalStoreConfig{Type: "sqlite", DataDir: "/home/user/.local/share/edulite/data"},
		Exports: []ExportTargetConfig{
			{Type: "filesystem", Name: "local", FSRoot: "/home/user/decks"},
			{Type: "s3", Name: "cloud", Encrypt: true, S3Bucket: "decks", S3Prefix: "exports/", S3Region: "eu-west-1"},
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/edulite/keys/edulite.pub",
			PrivateKeyPath: "/home/user/.local/share/edulite/keys/edulite.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseURL != original.BaseURL {
		t.Errorf("BaseURL = %q, want %q", got.BaseURL, original.BaseURL)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Tokens.Path != original.Tokens.Path {
		t.Errorf("Tokens.Path = %q, want %q", got.Tokens.Path, original.Tokens.Path)
	}
	if got.LocalStore.Type != "sqlite" {
		t.Errorf("LocalStore.Type = %q, want %q", got.LocalStore.Type, "sqlite")
	}
	if len(got.Exports) != 2 {
		t.Fatalf("len(Exports) = %d, want 2", len(got.Exports))
	}
	if got.Exports[0].FSRoot != "/home/user/decks" {
		t.Errorf("Exports[0].FSRoot = %q, want %q", got.Exports[0].FSRoot, "/home/user/decks")
	}
	if got.Exports[1].S3Bucket != "decks" || !got.Exports[1].Encrypt {
		t.Errorf("Exports[1] = %+v", got.Exports[1])
	}
	if got.Encryption.PublicKeyPath != original.Encryption.PublicKeyPath {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", got.Encryption.PublicKeyPath, original.Encryption.PublicKeyPath)
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("https://edulite.example.org/api", "/data/edulite")

	if cfg.BaseURL != "https://edulite.example.org/api" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.BaseDir != "/data/edulite" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/edulite")
	}
	if cfg.LogDir != "/data/edulite/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/edulite/log")
	}
	if cfg.Tokens.Type != "file" || cfg.Tokens.Path != "/data/edulite/tokens.json" {
		t.Errorf("Tokens = %+v", cfg.Tokens)
	}
	if cfg.LocalStore.Type != "sqlite" || cfg.LocalStore.DataDir != "/data/edulite/data" {
		t.Errorf("LocalStore = %+v", cfg.LocalStore)
	}
	if cfg.Encryption.PublicKeyPath != "/data/edulite/keys/edulite.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
	if cfg.Encryption.PrivateKeyPath != "/data/edulite/keys/edulite.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q", cfg.Encryption.PrivateKeyPath)
	}
}

func TestExportTarget(t *testing.T) {
	cfg := &Config{
		Exports: []ExportTargetConfig{
			{Type: "filesystem", Name: "local", FSRoot: "/decks"},
			{Type: "s3", Name: "cloud", S3Bucket: "decks"},
		},
	}

	t.Run("finds target by name", func(t *testing.T) {
		target, err := cfg.ExportTarget("cloud")
		if err != nil {
			t.Fatalf("ExportTarget() error = %v", err)
		}
		if target.S3Bucket != "decks" {
			t.Errorf("target = %+v", target)
		}
	})

	t.Run("unknown name lists configured targets", func(t *testing.T) {
		_, err := cfg.ExportTarget("missing")
		if err == nil {
			t.Fatal("ExportTarget() expected error for unknown name")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "edulite.toml")
		cfg := NewConfig("https://edulite.example.org/api", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "edulite.toml")
		cfg := NewConfig("https://edulite.example.org/api", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "edulite.toml")
		cfg := NewConfig("https://edulite.example.org/api", dir)
		cfg.LocalStore = LocalStoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BaseURL != "https://edulite.example.org/api" {
			t.Errorf("BaseURL = %q", got.BaseURL)
		}
		if got.LocalStore.Type != "memory" {
			t.Errorf("LocalStore.Type = %q, want %q", got.LocalStore.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/edulite.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
