package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "kestrel"
	// ConfigFileYAML is checked before ConfigFileJSON
	ConfigFileYAML = "config.yaml"
	ConfigFileJSON = "config.json"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads ~/.config/kestrel/config.yaml, falling back to config.json,
// and merges it over the defaults. Returns the defaults if neither file exists.
// Returns an error only for parse errors, permission issues, or validation failures.
//
// NOTE: The file is decoded directly over the default configuration, so keys
// present in the file (even with zero values) replace defaults and absent
// keys leave them untouched.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults if can't get home dir
	}
	dir := filepath.Join(homeDir, ".config", ConfigDir)

	for _, name := range []string{ConfigFileYAML, ConfigFileJSON} {
		path := filepath.Join(dir, name)
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &ReadError{Path: path, Cause: err}
		}

		if err := decode(name, data, cfg); err != nil {
			return nil, &ParseError{Path: path, Cause: err}
		}
		break
	}

	cfg.Log.File = expandHome(cfg.Log.File, homeDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}

func decode(name string, data []byte, cfg *Config) error {
	if strings.HasSuffix(name, ".yaml") {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ReadError is returned when a config file exists but cannot be read.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read config %s: %v", e.Path, e.Cause)
}
func (e *ReadError) Unwrap() error { return e.Cause }

// ParseError is returned for malformed config files.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Cause)
}
func (e *ParseError) Unwrap() error { return e.Cause }
