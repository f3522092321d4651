package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sutrasync/internal/ledger"
	"sutrasync/internal/publish"
	"sutrasync/internal/runlock"
)

const maxFailuresShown = 20

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var csvPath string
	var audioDir string
	var noLedger bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish every row of the normalized CSV to the content API",
		Long: `Publish authenticates (creating the admin account on first use), ensures the
configured projects exist, then creates each row's sutra with its
transliterations, meanings, bhashyams, interpretations and audio.

Individual field failures are logged and reported; the run continues. The
command fails only when authentication fails, the CSV cannot be read, or the
run is interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Publish.CSVPath, err = overridePath(cfg.Publish.CSVPath, csvPath); err != nil {
				return fmt.Errorf("resolve csv path: %w", err)
			}
			if cfg.Paths.AudioDir, err = overridePath(cfg.Paths.AudioDir, audioDir); err != nil {
				return fmt.Errorf("resolve audio dir: %w", err)
			}
			if err := cfg.ValidateForPublish(); err != nil {
				return err
			}

			lock, err := runlock.Acquire(cfg.LockPath("publish"))
			if err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			defer lock.Release()

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			opts := []publish.DriverOption{publish.WithLogger(logger)}
			if cfg.Ledger.Enabled && !noLedger {
				store, err := ledger.Open(cfg.Ledger.Path)
				if err != nil {
					return fmt.Errorf("open ledger: %w", err)
				}
				defer store.Close()
				opts = append(opts, publish.WithRecorder(store))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := publish.NewDriver(cfg, client, opts...).Run(runCtx)
			printRunSummary(cmd.OutOrStdout(), report)
			if err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Normalized CSV to publish (overrides publish.csv_path)")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "Audio tree root (overrides paths.audio_dir)")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "Do not record this run in the ledger")
	return cmd
}

func printRunSummary(out io.Writer, report publish.RunReport) {
	totals := report.Totals()
	fmt.Fprintf(out, "Run %s %s in %s\n", report.RunID, report.Status, report.Duration().Round(time.Millisecond))

	printTable(out, []string{"Rows", "Unnamed", "Created", "Failed", "Skipped", "Requests"}, [][]string{{
		strconv.Itoa(len(report.Rows)),
		strconv.Itoa(report.SkippedRows),
		strconv.Itoa(totals.Created),
		strconv.Itoa(totals.Failed),
		strconv.Itoa(totals.Skipped),
		strconv.Itoa(totals.Requests()),
	}}, []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight})

	projects := report.Projects
	if len(projects.Existing)+len(projects.Created)+len(projects.Failed) > 0 {
		fmt.Fprintf(out, "Projects: %d existing, %d created, %d failed\n",
			len(projects.Existing), len(projects.Created), len(projects.Failed))
	}

	var failures [][]string
	for _, row := range report.Rows {
		for _, outcome := range row.Failures() {
			failures = append(failures, []string{
				strconv.Itoa(row.Line),
				row.Ref.String(),
				outcome.DisplayLabel(),
				statusCodeText(outcome.StatusCode),
				outcome.Detail,
			})
		}
	}
	if len(failures) > 0 {
		shown := failures
		if len(shown) > maxFailuresShown {
			shown = shown[:maxFailuresShown]
		}
		printTable(out, []string{"Line", "Sutra", "Field", "Status", "Detail"}, shown,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft})
		if hidden := len(failures) - len(shown); hidden > 0 {
			fmt.Fprintf(out, "%d more failures; run 'sutrasync history show %s --failed'\n", hidden, shortID(report.RunID))
		}
	}

	if report.Err != nil {
		fmt.Fprintf(out, "Run stopped: %v\n", report.Err)
	}
}

func statusCodeText(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}
