package publish

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sutrasync/internal/config"
	"sutrasync/internal/contentapi"
	"sutrasync/internal/ledger"
	"sutrasync/internal/logging"
	"sutrasync/internal/scripture"
)

// Recorder stores finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, run ledger.Run) error
}

// Driver runs a complete publish: authenticate, ensure projects, publish
// every row.
type Driver struct {
	cfg      *config.Config
	api      API
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithRecorder stores each finished run.
func WithRecorder(recorder Recorder) DriverOption {
	return func(d *Driver) {
		d.recorder = recorder
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver constructs a Driver for cfg.
func NewDriver(cfg *config.Config, api API, opts ...DriverOption) *Driver {
	d := &Driver{cfg: cfg, api: api, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run publishes the configured CSV. It returns an error only when the run
// could not start (authentication, unreadable CSV) or was cancelled; field
// failures are reported in the RunReport.
func (d *Driver) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		RunID:     uuid.NewString(),
		StartedAt: d.now().UTC(),
		CSVPath:   d.cfg.Publish.CSVPath,
		APIURL:    d.cfg.API.URL,
		Status:    ledger.RunCompleted,
	}
	ctx = logging.ContextWithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.logger, "driver"))
	logger.Info("publish run started", logging.String("csv", report.CSVPath), logging.String("api_url", report.APIURL))

	auth := NewAuthenticator(d.api, Credentials{Email: d.cfg.API.Email, Password: d.cfg.API.Password}, d.logger)
	token, err := auth.ObtainToken(ctx)
	if err != nil {
		return d.finish(ctx, logger, report, ledger.RunAuthFailed, err)
	}

	projects := make([]contentapi.Project, 0, len(d.cfg.Publish.Projects))
	for _, p := range d.cfg.Publish.Projects {
		projects = append(projects, contentapi.Project{Name: p.Name, Description: p.Description})
	}
	report.Projects = NewProjectEnsurer(d.api, d.logger).Ensure(ctx, token, projects)

	rows, err := scripture.LoadRows(d.cfg.Publish.CSVPath, scripture.Defaults{
		Upanishad: d.cfg.Publish.DefaultUpanishad,
		Chapter:   d.cfg.Publish.DefaultChapter,
	})
	if err != nil {
		logging.ErrorWithContext(logger, "csv unreadable", "publish_csv_unreadable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check CSV_UPANISHADS or publish.csv_path"),
		)
		return d.finish(ctx, logger, report, ledger.RunCSVFailed, err)
	}
	logger.Info("csv loaded", logging.Int("rows", len(rows)))
	if len(rows) > 0 {
		if missing := rows[0].MissingColumns(); len(missing) > 0 {
			logging.WarnWithContext(logger, "csv missing publish columns", "publish_csv_columns_missing",
				logging.Int("count", len(missing)),
				logging.String("columns", strings.Join(missing, ",")),
				logging.String(logging.FieldErrorHint, "run merge to produce a normalized CSV"),
				logging.String(logging.FieldImpact, "fields for these columns are sent empty"),
			)
		}
	}

	publisher := NewPublisher(d.api, d.cfg.Paths.AudioDir, d.logger)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return d.finish(ctx, logger, report, ledger.RunCancelled, err)
		}
		if row.Upanishad == "" {
			report.SkippedRows++
			logging.WarnWithContext(logger, "row has no upanishad name", "publish_row_unnamed",
				logging.Int("line", row.Line),
				logging.String(logging.FieldErrorHint, "fill the name column or set publish.default_upanishad"),
				logging.String(logging.FieldImpact, "row not published"),
			)
			continue
		}
		report.Rows = append(report.Rows, publisher.Publish(ctx, row, token))
	}
	if err := ctx.Err(); err != nil {
		return d.finish(ctx, logger, report, ledger.RunCancelled, err)
	}
	return d.finish(ctx, logger, report, ledger.RunCompleted, nil)
}

func (d *Driver) finish(ctx context.Context, logger *slog.Logger, report RunReport, status ledger.RunStatus, runErr error) (RunReport, error) {
	report.Status = status
	report.Err = runErr
	report.FinishedAt = d.now().UTC()

	totals := report.Totals()
	logger.Info("publish run finished",
		logging.String("status", string(status)),
		logging.Int("rows", len(report.Rows)),
		logging.Int("created", totals.Created),
		logging.Int("failed", totals.Failed),
		logging.Int("skipped", totals.Skipped),
		logging.Duration("duration", report.Duration()),
	)

	if d.recorder != nil {
		// The run context may already be cancelled; the record is still written.
		if err := d.recorder.RecordRun(context.WithoutCancel(ctx), report.LedgerRun()); err != nil {
			logging.WarnWithContext(logger, "run not recorded in ledger", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history will not show this run"),
			)
		}
	}

	return report, runErr
}
