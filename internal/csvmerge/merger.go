package csvmerge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sutrasync/internal/logging"
)

// SourceResult reports what happened to one input.
type SourceResult struct {
	Spec SourceSpec
	Rows int
	// WidthMismatches counts rows whose output width differs from the header.
	WidthMismatches int
	// Err is set when the source was skipped or stopped early.
	Err error
}

// Result summarizes a merge run.
type Result struct {
	Output           string
	Header           []string
	Rows             int
	Sources          []SourceResult
	DescriptorErrors []error
}

// Skipped returns the sources that failed before or while being read.
func (r Result) Skipped() []SourceResult {
	var out []SourceResult
	for _, src := range r.Sources {
		if src.Err != nil {
			out = append(out, src)
		}
	}
	return out
}

// Merger writes normalized CSV output from a list of sources.
type Merger struct {
	logger         *slog.Logger
	passthroughAll bool
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger used for per-source diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPassthroughAll copies every source row unchanged, as for the
// passthrough source.
func WithPassthroughAll(enabled bool) Option {
	return func(m *Merger) {
		m.passthroughAll = enabled
	}
}

// New constructs a Merger.
func New(opts ...Option) *Merger {
	m := &Merger{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "merge")
	return m
}

// MergeEntries parses name|path|chapter entries and merges the valid ones.
// Malformed entries are logged and reported in Result.DescriptorErrors.
func (m *Merger) MergeEntries(ctx context.Context, entries []string, outPath string) (Result, error) {
	specs, errs := ParseEntries(entries)
	for _, err := range errs {
		logging.ErrorWithContext(m.logger, "source descriptor skipped", "merge_descriptor_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "use name|path|chapter with an integer chapter"),
		)
	}
	result, err := m.Merge(ctx, specs, outPath)
	result.DescriptorErrors = errs
	return result, err
}

// Merge truncates outPath and writes the header followed by the remapped
// rows of every readable source, in order.
func (m *Merger) Merge(ctx context.Context, specs []SourceSpec, outPath string) (Result, error) {
	result := Result{Output: outPath}
	if dir := filepath.Dir(outPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, fmt.Errorf("ensure output directory: %w", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return result, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	result.Header = append([]string{"name", "chapter"}, m.sourceHeader(specs)...)
	if err := writer.Write(result.Header); err != nil {
		return result, fmt.Errorf("write header: %w", err)
	}

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			writer.Flush()
			return result, err
		}
		src := m.mergeSource(spec, len(result.Header), writer)
		result.Sources = append(result.Sources, src)
		result.Rows += src.Rows
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return result, fmt.Errorf("flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return result, fmt.Errorf("close output: %w", err)
	}
	m.logger.Info("merge complete",
		logging.String("output", outPath),
		logging.Int("rows", result.Rows),
		logging.Int("sources", len(specs)),
		logging.Int("skipped", len(result.Skipped())),
	)
	return result, nil
}

// sourceHeader returns the header of the first source that can be opened.
func (m *Merger) sourceHeader(specs []SourceSpec) []string {
	for _, spec := range specs {
		header, err := readHeader(spec.Path)
		if err != nil {
			continue
		}
		return header
	}
	m.logger.Warn("no readable source for header", logging.Int("sources", len(specs)))
	return nil
}

func (m *Merger) mergeSource(spec SourceSpec, width int, writer *csv.Writer) SourceResult {
	result := SourceResult{Spec: spec}
	logger := m.logger.With(logging.String("source", spec.Name), logging.String("path", spec.Path))

	src, err := openSource(spec.Path)
	if err != nil {
		result.Err = err
		logging.ErrorWithContext(logger, "source skipped", "merge_source_unreadable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the path in the source descriptor"),
		)
		return result
	}
	defer src.Close()

	if _, err := src.Read(); err != nil {
		if !errors.Is(err, io.EOF) {
			result.Err = fmt.Errorf("read header: %w", err)
			logging.ErrorWithContext(logger, "source skipped", "merge_source_unreadable", logging.Error(result.Err))
		}
		return result
	}

	for {
		row, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Err = err
			logging.ErrorWithContext(logger, "source stopped early", "merge_source_read_failed",
				logging.Error(err),
				logging.Int("rows_written", result.Rows),
			)
			break
		}
		remapped := Remap(spec, row, m.passthroughAll)
		if len(remapped) != width {
			if result.WidthMismatches == 0 {
				logging.WarnWithContext(logger, "row width differs from header", "merge_width_mismatch",
					logging.Int("row", result.Rows+1),
					logging.Int("source_width", len(row)),
					logging.Int("output_width", len(remapped)),
					logging.Int("header_width", width),
					logging.String(logging.FieldImpact, "publisher will read shifted or empty columns"),
				)
			}
			result.WidthMismatches++
		}
		if err := writer.Write(remapped); err != nil {
			result.Err = fmt.Errorf("write row: %w", err)
			break
		}
		result.Rows++
	}

	logger.Debug("source merged", logging.Int("rows", result.Rows), logging.Int("width_mismatches", result.WidthMismatches))
	return result
}
