package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sutrasync/internal/ledger"
	"sutrasync/internal/publish"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous publish runs from the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						formatTime(run.StartedAt),
						run.Duration().Round(time.Millisecond).String(),
						string(run.Status),
						strconv.Itoa(run.Rows),
						strconv.Itoa(run.Created),
						strconv.Itoa(run.Failed),
						strconv.Itoa(run.Skipped),
					})
				}
				printTable(out, []string{"Run", "Started", "Duration", "Status", "Rows", "Created", "Failed", "Skipped"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight})
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the field outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}
				status := ""
				if failedOnly {
					status = "failed"
				}
				outcomes, err := store.ListOutcomes(cmd.Context(), run.ID, status)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Status:   %s\n", run.Status)
				fmt.Fprintf(out, "Started:  %s\n", formatTime(run.StartedAt))
				fmt.Fprintf(out, "Duration: %s\n", run.Duration().Round(time.Millisecond))
				fmt.Fprintf(out, "CSV:      %s\n", run.CSVPath)
				fmt.Fprintf(out, "API:      %s\n", run.APIURL)
				fmt.Fprintf(out, "Totals:   %d rows, %d created, %d failed, %d skipped\n", run.Rows, run.Created, run.Failed, run.Skipped)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.Error)
				}
				if len(outcomes) == 0 {
					fmt.Fprintln(out, "No outcomes")
					return nil
				}

				rows := make([][]string, 0, len(outcomes))
				for _, o := range outcomes {
					rows = append(rows, []string{
						strconv.Itoa(o.Line),
						fmt.Sprintf("%s %d.%d", o.Upanishad, o.Chapter, o.Sutra),
						outcomeLabel(o),
						o.Status,
						statusCodeText(o.StatusCode),
						o.Detail,
					})
				}
				printTable(out, []string{"Line", "Sutra", "Field", "Result", "Status", "Detail"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed fields")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withLedger(func(store *ledger.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age above which runs are removed")
	return cmd
}

func (c *commandContext) withLedger(fn func(*ledger.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Ledger.Enabled {
		return errors.New("run ledger is disabled (ledger.enabled = false)")
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func outcomeLabel(o ledger.Outcome) string {
	return publish.FieldOutcome{Kind: o.Kind, Language: o.Language, Philosophy: o.Philosophy, Mode: o.Mode}.DisplayLabel()
}
