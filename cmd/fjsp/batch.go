package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/limaJavier/fjsp/internal/batch"
	"github.com/limaJavier/fjsp/internal/logger"
	"github.com/limaJavier/fjsp/internal/metrics"
	"github.com/limaJavier/fjsp/internal/report"
)

type batchFlags struct {
	csv, markdown, html, sqlite string
	metricsTextfile             string
	maxInstances, workers       int
}

func newBatchCmd(options *globalOptions) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "batch <root>",
		Short: "Solve every instance under a directory and write the result tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := options.load(cmd)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if changed("csv") {
				cfg.Report.CSV = flags.csv
			}
			if changed("markdown") {
				cfg.Report.Markdown = flags.markdown
			}
			if changed("html") {
				cfg.Report.HTML = flags.html
			}
			if changed("sqlite") {
				cfg.Report.SQLite = flags.sqlite
			}
			if changed("metrics-textfile") {
				cfg.Metrics.Textfile = flags.metricsTextfile
			}
			if changed("max-instances") {
				cfg.Batch.MaxInstances = flags.maxInstances
			}
			if changed("workers") {
				cfg.Batch.Workers = flags.workers
			}
			if err := cfg.Batch.Validate(); err != nil {
				return err
			}

			log := logger.New("batch")
			paths, err := batch.Discover(args[0], cfg.Batch.Extensions, cfg.Batch.Prefer)
			if err != nil {
				return err
			}
			if cfg.Batch.MaxInstances > 0 && len(paths) > cfg.Batch.MaxInstances {
				paths = paths[:cfg.Batch.MaxInstances]
			}
			log.Infof("found %d instances under %v", len(paths), args[0])

			scheduler, err := newScheduler(cfg)
			if err != nil {
				return err
			}
			registry := prometheus.NewRegistry()
			recorder, err := metrics.NewPromRecorder(registry)
			if err != nil {
				return err
			}

			runner := batch.Runner{Scheduler: scheduler, Workers: cfg.Batch.Workers, Logger: log, Metrics: recorder}
			rows, runErr := runner.Run(cmd.Context(), paths)

			//** Reports
			var reportErrs []error
			write := func(path string, render func(io.Writer, []batch.Row) error) {
				if path == "" {
					return
				}
				if err := writeOutput(cmd, path, func(w io.Writer) error { return render(w, rows) }); err != nil {
					reportErrs = append(reportErrs, fmt.Errorf("write %v: %w", path, err))
				}
			}
			write(cfg.Report.CSV, report.WriteCSV)
			write(cfg.Report.Markdown, report.WriteMarkdown)
			write(cfg.Report.HTML, report.WriteHTML)
			if err := report.WriteMarkdown(cmd.OutOrStdout(), rows); err != nil {
				reportErrs = append(reportErrs, err)
			}

			if cfg.Report.SQLite != "" {
				if err := saveRows(cmd, cfg.Report.SQLite, rows); err != nil {
					reportErrs = append(reportErrs, fmt.Errorf("save %v: %w", cfg.Report.SQLite, err))
				}
			}
			if cfg.Metrics.Textfile != "" {
				if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
					reportErrs = append(reportErrs, fmt.Errorf("write %v: %w", cfg.Metrics.Textfile, err))
				}
			}

			return errors.Join(append([]error{runErr}, reportErrs...)...)
		},
	}
	cmd.Flags().StringVar(&flags.csv, "csv", "", "CSV results file")
	cmd.Flags().StringVar(&flags.markdown, "markdown", "", "Markdown results file")
	cmd.Flags().StringVar(&flags.html, "html", "", "HTML charts file")
	cmd.Flags().StringVar(&flags.sqlite, "sqlite", "", "SQLite database accumulating results across runs")
	cmd.Flags().StringVar(&flags.metricsTextfile, "metrics-textfile", "", "Prometheus text exposition file")
	cmd.Flags().IntVar(&flags.maxInstances, "max-instances", 0, "solve at most this many instances (0 means all)")
	cmd.Flags().IntVar(&flags.workers, "workers", 1, "instances solved concurrently")
	return cmd
}

func saveRows(cmd *cobra.Command, path string, rows []batch.Row) error {
	store, err := report.OpenSQLite(path)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), rows); err != nil {
		_ = store.Close()
		return err
	}
	return store.Close()
}
