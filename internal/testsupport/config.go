package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"sutrasync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.API.URL = "http://127.0.0.1:0"
	cfgVal.API.Email = "admin@example.com"
	cfgVal.API.Password = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	cfgVal.Publish.CSVPath = filepath.Join(base, "upanishads.csv")
	cfgVal.Merge.Output = cfgVal.Publish.CSVPath

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIURL points the test config at a fake content API.
func WithAPIURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.URL = url
	}
}

// WithProjects sets the projects the publish run ensures.
func WithProjects(projects ...config.Project) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.Projects = projects
	}
}

// WithLedgerDisabled turns off run recording.
func WithLedgerDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithCSV writes records to the configured publish CSV path.
func WithCSV(records [][]string) ConfigOption {
	return func(b *configBuilder) {
		WriteCSV(b.t, b.cfg.Publish.CSVPath, records)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WriteCSV writes records to path, creating parent directories.
func WriteCSV(t testing.TB, path string, records [][]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
