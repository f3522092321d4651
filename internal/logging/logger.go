package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"sutrasync/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths lists "stdout", "stderr" or file paths. Empty means stdout.
	OutputPaths []string
	// Color forces ANSI level colours on console output. When nil, colours
	// are used only when the sole output is a terminal.
	Color *bool
}

// New constructs a logger. Debug level adds the caller to every record.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	out, terminal, err := openOutputs(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	caller := level <= slog.LevelDebug

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		colour := terminal
		if opts.Color != nil {
			colour = *opts.Color
		}
		return slog.New(newConsoleHandler(out, level, caller, colour)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       level,
			AddSource:   caller,
			ReplaceAttr: jsonAttr,
		})), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig logs to stdout, plus logging.file when set.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.Logging.File},
	})
}

// parseLevel accepts slog level names case-insensitively; anything else is info.
func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openOutputs resolves output paths to one writer. terminal reports whether
// the only destination is a stdout attached to a terminal.
func openOutputs(paths []string) (out io.Writer, terminal bool, err error) {
	var writers []io.Writer
	opened := map[string]bool{}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || opened[path] {
			continue
		}
		opened[path] = true
		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openLogFile(path)
			if err != nil {
				return nil, false, err
			}
			writers = append(writers, file)
		}
	}
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	if len(writers) == 1 {
		terminal = writers[0] == io.Writer(os.Stdout) && isTerminal(os.Stdout)
		return writers[0], terminal, nil
	}
	return io.MultiWriter(writers...), false, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// jsonAttr renames time to "ts" (RFC 3339, UTC), lowercases the level and
// shortens the source to file:line.
func jsonAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		return slog.String(slog.LevelKey, strings.ToLower(a.Value.String()))
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return a
}
