package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains connection settings for the remote content API.
type API struct {
	URL      string `toml:"url"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	// TimeoutSeconds bounds each request. Zero keeps the HTTP client default (no timeout).
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	UserAgent         string  `toml:"user_agent"`
}

// Paths contains filesystem locations used by the pipelines.
type Paths struct {
	AudioDir string `toml:"audio_dir"`
	StateDir string `toml:"state_dir"`
}

// Merge configures the CSV normalizer.
type Merge struct {
	// Inputs holds name|path|chapter descriptors, one per source.
	Inputs         []string `toml:"inputs"`
	Output         string   `toml:"output"`
	PassthroughAll bool     `toml:"passthrough_all"`
}

// Project names one Upanishad to ensure on the remote side.
type Project struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Publish configures the publish run.
type Publish struct {
	CSVPath          string    `toml:"csv_path"`
	DefaultUpanishad string    `toml:"default_upanishad"`
	DefaultChapter   int       `toml:"default_chapter"`
	Projects         []Project `toml:"projects"`
}

// Ledger configures the local record of publish runs.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for sutrasync.
//
// Configuration sections by subsystem:
//   - API: content API endpoint, admin credentials, request pacing
//   - Paths: audio tree and local state directory
//   - Merge: normalizer inputs and output
//   - Publish: normalized CSV to publish and the projects to ensure
//   - Ledger: SQLite run history
//   - Logging: log format, level, and optional file
type Config struct {
	API     API     `toml:"api"`
	Paths   Paths   `toml:"paths"`
	Merge   Merge   `toml:"merge"`
	Publish Publish `toml:"publish"`
	Ledger  Ledger  `toml:"ledger"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// variables are applied after the file so they take precedence over it.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadDotEnv reads KEY=value pairs from the .env file in dir into the process
// environment. Variables that are already set are left untouched and a missing
// file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat dotenv: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and the ledger's parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if c.Ledger.Enabled && c.Ledger.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Ledger.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the lock file guarding a named pipeline in the state directory.
func (c *Config) LockPath(name string) string {
	return filepath.Join(c.Paths.StateDir, name+".lock")
}

// Redacted returns a copy of the configuration safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.API.Password != "" {
		out.API.Password = "********"
	}
	out.Merge.Inputs = append([]string(nil), c.Merge.Inputs...)
	out.Publish.Projects = append([]Project(nil), c.Publish.Projects...)
	return out
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
