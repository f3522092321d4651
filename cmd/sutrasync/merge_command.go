package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"sutrasync/internal/csvmerge"
	"sutrasync/internal/runlock"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var inputs []string
	var output string
	var passthroughAll bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge per-Upanishad sources into one normalized CSV",
		Long: `Merge reads every name|path|chapter source in order and writes one CSV with
the header "name, chapter" followed by the first readable source's header.

Sources other than isha are remapped to the normalized column layout. Missing
or unreadable sources are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(inputs) > 0 {
				cfg.Merge.Inputs = inputs
			}
			if cfg.Merge.Output, err = overridePath(cfg.Merge.Output, output); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if passthroughAll {
				cfg.Merge.PassthroughAll = true
			}
			if err := cfg.ValidateForMerge(); err != nil {
				return err
			}

			lock, err := runlock.Acquire(cfg.LockPath("merge"))
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			defer lock.Release()

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			merger := csvmerge.New(
				csvmerge.WithLogger(logger),
				csvmerge.WithPassthroughAll(cfg.Merge.PassthroughAll),
			)
			result, err := merger.MergeEntries(runCtx, cfg.Merge.Inputs, cfg.Merge.Output)
			printMergeSummary(cmd.OutOrStdout(), result)
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Source descriptor name|path|chapter (repeatable; replaces configured inputs)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Normalized CSV destination")
	cmd.Flags().BoolVar(&passthroughAll, "passthrough-all", false, "Copy every source's columns unchanged")
	return cmd
}

func printMergeSummary(out io.Writer, result csvmerge.Result) {
	if len(result.Sources) > 0 {
		rows := make([][]string, 0, len(result.Sources))
		for _, src := range result.Sources {
			status := "merged"
			switch {
			case src.Err != nil && src.Rows == 0:
				status = "skipped: " + src.Err.Error()
			case src.Err != nil:
				status = "partial: " + src.Err.Error()
			case src.WidthMismatches > 0:
				status = fmt.Sprintf("merged (%d rows off width)", src.WidthMismatches)
			}
			rows = append(rows, []string{
				src.Spec.Name,
				src.Spec.Path,
				strconv.Itoa(src.Spec.Chapter),
				strconv.Itoa(src.Rows),
				status,
			})
		}
		printTable(out, []string{"Source", "Path", "Chapter", "Rows", "Status"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft})
	}
	for _, err := range result.DescriptorErrors {
		fmt.Fprintf(out, "Ignored descriptor: %v\n", err)
	}
	fmt.Fprintf(out, "Wrote %d rows to %s (%d of %d sources skipped)\n",
		result.Rows, result.Output, len(result.Skipped()), len(result.Sources))
}
