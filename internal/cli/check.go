package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bpkit/bpkit/internal/history"
	"github.com/bpkit/bpkit/internal/installer"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	History int
}

// checkReport is the JSON payload for the check command.
type checkReport struct {
	Installed   bool          `json:"installed"`
	SpecifyDir  bool          `json:"specify_dir"`
	Git         bool          `json:"git"`
	MissingDirs []string      `json:"missing_dirs,omitempty"`
	MissingTmpl []string      `json:"missing_templates,omitempty"`
	Deck        bool          `json:"pitch_deck"`
	Recent      []history.Run `json:"recent_runs,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify project structure and show recent runs",
		Long: `Report on the .specify scaffold: directories, templates, pitch deck
presence, and the most recent decompose/analyze runs from the local
history journal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.History, "history", 5, "number of recent runs to show")

	return cmd
}

// Directories and templates the scaffold is expected to carry.
var (
	requiredDirs = []string{
		".specify/deck",
		".specify/features",
		".specify/memory",
		".specify/changelog",
		".specify/checklists",
		".specify/templates",
	}
	requiredTemplates = []string{
		".specify/templates/pitch-deck-template.md",
	}
)

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	root, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve working directory", err)
	}

	report := checkReport{
		Installed:  installer.Installed(root),
		SpecifyDir: installer.SpecifyProject(root),
		Git:        installer.DetectGit(root),
	}
	for _, dir := range requiredDirs {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir))); err != nil {
			report.MissingDirs = append(report.MissingDirs, dir)
		}
	}
	for _, tmpl := range requiredTemplates {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(tmpl))); err != nil {
			report.MissingTmpl = append(report.MissingTmpl, tmpl)
		}
	}
	if _, err := os.Stat(filepath.Join(root, ".specify", "deck", "pitch-deck.md")); err == nil {
		report.Deck = true
	}
	report.Recent = recentRuns(root, opts.History)

	if opts.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintln(w, headerStyle.Render("BP-Kit project check"))
	fmt.Fprintf(w, "  installed:   %s\n", yesNo(report.Installed))
	fmt.Fprintf(w, "  git repo:    %s\n", yesNo(report.Git))
	fmt.Fprintf(w, "  pitch deck:  %s\n", yesNo(report.Deck))
	for _, dir := range report.MissingDirs {
		fmt.Fprintln(w, warnStyle.Render("  missing directory: "+dir))
	}
	for _, tmpl := range report.MissingTmpl {
		fmt.Fprintln(w, warnStyle.Render("  missing template: "+tmpl))
	}
	if len(report.Recent) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Recent runs"))
		for _, run := range report.Recent {
			fmt.Fprintf(w, "  %s  %-9s deck v%-8s errors=%d warnings=%d\n",
				run.StartedAt.Format("2006-01-02 15:04"), run.Kind, run.DeckVersion, run.Errors, run.Warnings)
		}
	}
	if !report.Installed {
		fmt.Fprintln(w, dimStyle.Render("Run bpkit init --here to scaffold this project"))
	}
	return nil
}

// recentRuns reads the history journal; any failure yields no runs.
func recentRuns(root string, limit int) []history.Run {
	path := filepath.Join(root, ".specify", "history.db")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		return nil
	}
	defer store.Close()
	runs, err := store.RecentRuns(context.Background(), limit)
	if err != nil {
		return nil
	}
	return runs
}

func yesNo(b bool) string {
	if b {
		return successStyle.Render("yes")
	}
	return warnStyle.Render("no")
}
