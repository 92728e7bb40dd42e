package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for edulite.
type Config struct {
	BaseURL    string               `toml:"base_url"`
	BaseDir    string               `toml:"base_dir"`
	LogDir     string               `toml:"log_dir"`
	Tokens     TokensConfig         `toml:"tokens"`
	LocalStore LocalStoreConfig     `toml:"local_store"`
	Exports    []ExportTargetConfig `toml:"exports"`
	Encryption EncryptionConfig     `toml:"encryption"`
}

// TokensConfig decides where the JWT pair is kept.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type TokensConfig struct {
	Type string `toml:"type"`           // "file" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=file
}

// LocalStoreConfig represents configuration for the drafts and preferences store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type LocalStoreConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ExportTargetConfig represents configuration for a deck export target.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ExportTargetConfig struct {
	Type    string `toml:"type"` // "memory", "s3", or "filesystem"
	Name    string `toml:"name"`
	Encrypt bool   `toml:"encrypt,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for encrypted exports.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(baseURL, baseDir string) *Config {
	return &Config{
		BaseURL: baseURL,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Tokens: TokensConfig{
			Type: "file",
			Path: filepath.Join(baseDir, "tokens.json"),
		},
		LocalStore: LocalStoreConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "edulite.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "edulite.key"),
		},
	}
}

// ExportTarget returns the export target with the given name, or an error
// listing the configured names when it is absent.
func (c *Config) ExportTarget(name string) (ExportTargetConfig, error) {
	var names []string
	for _, target := range c.Exports {
		if target.Name == name {
			return target, nil
		}
		names = append(names, target.Name)
	}
	return ExportTargetConfig{}, fmt.Errorf("no export target named %q (configured: %v)", name, names)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
