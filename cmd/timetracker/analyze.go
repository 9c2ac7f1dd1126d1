package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/RustingSword/time-tracker/internal/activitylog"
	"github.com/RustingSword/time-tracker/internal/analyzer"
	"github.com/RustingSword/time-tracker/internal/categories"
	"github.com/RustingSword/time-tracker/internal/classifier"
	"github.com/RustingSword/time-tracker/internal/config"
	"github.com/RustingSword/time-tracker/internal/reporter"
	"github.com/RustingSword/time-tracker/internal/visualizer"
)

type analyzeOptions struct {
	date         string
	output       string
	logFile      string
	categoryFile string
	json         bool
	noPrompt     bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize one day of activity and draw charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var prompter categories.Prompter
			if !opts.noPrompt {
				prompter = categories.NewInteractivePrompter(cmd.ErrOrStderr())
			}
			return analyze(cfg, opts, prompter, time.Now(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.date, "date", "d", "today", "date to analyze (YYYY-MM-DD, 'today' or 'yesterday')")
	cmd.Flags().StringVarP(&opts.output, "output", "o", string(visualizer.KindBoth), "type of visualization output (bar, pie, both)")
	cmd.Flags().StringVarP(&opts.logFile, "log-file", "l", "", "path to activity log file (default activity_log.csv)")
	cmd.Flags().StringVarP(&opts.categoryFile, "category-file", "c", "", "path to category mapping file (default app_categories.json)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON instead of a table")
	cmd.Flags().BoolVar(&opts.noPrompt, "no-prompt", false, "do not ask for categories; new activities are Uncategorized")

	return cmd
}

// analyze reads the day's records, prints the summary and writes charts.
// A nil prompter never asks and never updates the category file.
func analyze(cfg *config.Config, opts analyzeOptions, prompter categories.Prompter, now time.Time, out io.Writer) error {
	if opts.logFile != "" {
		cfg.Files.LogFile = opts.logFile
	}
	if opts.categoryFile != "" {
		cfg.Files.CategoryFile = opts.categoryFile
	}

	kind, err := visualizer.ParseKind(opts.output)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	day, err := analyzer.ParseDay(opts.date, now, loc)
	if err != nil {
		return err
	}

	records, err := activitylog.New(cfg.Files.LogFile).ReadDay(day, loc)
	if err != nil {
		return err
	}

	store := categories.Load(cfg.Files.CategoryFile, prompter)
	a := analyzer.New(classifier.New(), store, cfg.Analysis.MinDuration, loc)

	report, err := a.Analyze(day, records)
	if err != nil {
		return err
	}

	if opts.json {
		s, err := reporter.FormatReportJSON(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	} else {
		fmt.Fprint(out, reporter.FormatReportText(report))
	}

	if len(report.Summaries) == 0 {
		return nil
	}

	if err := os.MkdirAll(cfg.Files.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	paths, err := visualizer.New(cfg.Files.OutputDir, cfg.Analysis.SmallSegmentThreshold).Render(report.Summaries, report.Date, kind)
	if err != nil {
		return err
	}
	if !opts.json {
		for _, p := range paths {
			fmt.Fprintf(out, "Saved %s\n", p)
		}
	}
	return nil
}
