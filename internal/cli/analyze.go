package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpkit/bpkit/internal/analysis"
	"github.com/bpkit/bpkit/internal/history"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Fix bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Validate constitutional traceability and consistency",
		Long: `Run the full consistency pipeline over the pitch deck and its
constitutions: broken links, principle conflicts, coverage gaps,
version drift, circular dependencies, and orphaned principles.

Exits 1 when errors are found so the command can gate CI.

Example:
  bpkit analyze
  bpkit analyze --fix --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "rewrite stale constitution versions to the deck version")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	root, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve working directory", err)
	}

	started := time.Now()
	runner := analysis.NewRunner(root)
	report, err := runner.Run(cmd.Context(), analysis.Options{Fix: opts.Fix})
	if err != nil {
		return WrapExitError(ExitCommandError, "analysis failed", err)
	}

	recordRun(root, history.Run{
		Kind:          history.RunAnalyze,
		DeckVersion:   report.DeckVersion.String(),
		Constitutions: report.ConstitutionsAnalyzed,
		Errors:        len(report.Errors),
		Warnings:      len(report.Warnings),
		DurationMS:    time.Since(started).Milliseconds(),
	})

	logPath, err := report.WriteChangelog(filepath.Join(root, ".specify", "changelog"))
	if err != nil {
		formatter.VerboseLog("could not write changelog: %v", err)
	} else {
		formatter.VerboseLog("report written to %s", logPath)
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		printReport(formatter, report)
	}

	if !report.Passing() {
		return NewExitError(ExitFailure, "analysis found errors")
	}
	return nil
}

func printReport(formatter *OutputFormatter, report *analysis.Report) {
	w := formatter.Writer
	fmt.Fprintln(w, headerStyle.Render("Analysis report "+report.ID))
	fmt.Fprintln(w, report.Summary())
	for _, issue := range report.Errors {
		fmt.Fprintln(w, errorStyle.Render("  "+issue.Format()))
	}
	for _, issue := range report.Warnings {
		fmt.Fprintln(w, warnStyle.Render("  "+issue.Format()))
	}
	if formatter.Verbose {
		for _, issue := range report.Info {
			fmt.Fprintln(w, dimStyle.Render("  "+issue.Format()))
		}
	}
	for _, name := range report.FixedVersionMismatches {
		fmt.Fprintln(w, successStyle.Render("  fixed version: "+name))
	}
	if report.Passing() {
		fmt.Fprintln(w, successStyle.Render("All consistency checks passed"))
	}
}
