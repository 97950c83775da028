package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bpkit/bpkit/internal/checklist"
	"github.com/bpkit/bpkit/internal/constitution"
)

// ChecklistOptions holds flags for the checklist command.
type ChecklistOptions struct {
	*RootOptions
	Report bool
	Force  bool
}

// NewChecklistCommand creates the checklist command.
func NewChecklistCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChecklistOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Generate quality checklists for every constitution",
		Long: `Create structured validation checklists under .specify/checklists, one
per constitution. Strategic constitutions get 10 criteria, features 15.
With --report, show completion status instead of generating.

Example:
  bpkit checklist
  bpkit checklist --report`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecklist(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Report, "report", false, "show completion status of existing checklists")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing checklists")

	return cmd
}

func runChecklist(opts *ChecklistOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	root, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve working directory", err)
	}
	checklistsDir := filepath.Join(root, ".specify", "checklists")

	if opts.Report {
		return completionReport(checklistsDir, formatter)
	}
	return generateChecklists(root, checklistsDir, opts, formatter)
}

func generateChecklists(root, checklistsDir string, opts *ChecklistOptions, formatter *OutputFormatter) error {
	constitutions := loadAllConstitutions(root)
	if len(constitutions) == 0 {
		return NewExitError(ExitCommandError, "no constitutions found: run decompose first")
	}

	if err := os.MkdirAll(checklistsDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "create checklists directory", err)
	}

	generated, skipped := 0, 0
	for _, c := range constitutions {
		path := filepath.Join(checklistsDir, c.Name+".md")
		if _, err := os.Stat(path); err == nil && !opts.Force {
			skipped++
			formatter.VerboseLog("skipping %s.md (already exists)", c.Name)
			continue
		}

		cl := checklist.New(c.Name, c.Kind, time.Now())
		rendered, err := cl.Render()
		if err != nil {
			return WrapExitError(ExitFailure, "render checklist", err)
		}
		if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
			return WrapExitError(ExitFailure, "write checklist", err)
		}
		generated++
		formatter.VerboseLog("generated %s.md (%d items)", c.Name, len(cl.Items))
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"generated": generated,
			"skipped":   skipped,
		})
	}
	if generated > 0 {
		fmt.Fprintln(formatter.Writer, successStyle.Render(
			fmt.Sprintf("Checklists generated for %d constitutions (%d skipped)", generated, skipped)))
		fmt.Fprintln(formatter.Writer, dimStyle.Render("Run bpkit checklist --report to track completion"))
	} else {
		fmt.Fprintln(formatter.Writer, warnStyle.Render(
			"No new checklists generated: use --force to overwrite existing ones"))
	}
	return nil
}

// checklistStatus is one row of the completion report.
type checklistStatus struct {
	Name       string  `json:"name"`
	Completion float64 `json:"completion"`
	Remaining  int     `json:"remaining"`
}

func completionReport(checklistsDir string, formatter *OutputFormatter) error {
	entries, err := os.ReadDir(checklistsDir)
	if err != nil || len(entries) == 0 {
		return NewExitError(ExitCommandError, "no checklists found: run bpkit checklist first")
	}

	var rows []checklistStatus
	totalItems, totalChecked := 0, 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cl, err := checklist.ParseFile(filepath.Join(checklistsDir, e.Name()))
		if err != nil {
			formatter.VerboseLog("skipping %s: %v", e.Name(), err)
			continue
		}
		rows = append(rows, checklistStatus{
			Name:       cl.ConstitutionName,
			Completion: cl.Completion(),
			Remaining:  cl.Remaining(),
		})
		totalItems += len(cl.Items)
		totalChecked += len(cl.Items) - cl.Remaining()
	}
	if len(rows) == 0 {
		return NewExitError(ExitCommandError, "no valid checklists found")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}

	w := formatter.Writer
	fmt.Fprintln(w, headerStyle.Render("Checklist completion"))
	for _, row := range rows {
		line := fmt.Sprintf("  %-40s %5.0f%%  %d remaining", row.Name, row.Completion, row.Remaining)
		switch {
		case row.Completion == 100.0:
			fmt.Fprintln(w, successStyle.Render(line))
		case row.Completion >= 80.0:
			fmt.Fprintln(w, warnStyle.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
	if totalItems > 0 {
		overall := float64(totalChecked) / float64(totalItems) * 100.0
		fmt.Fprintf(w, "Overall: %.0f%% (%d/%d items)\n", overall, totalChecked, totalItems)
	}
	return nil
}

// loadAllConstitutions reads every parseable constitution under memory/
// and features/, sorted by name.
func loadAllConstitutions(root string) []*constitution.Constitution {
	var out []*constitution.Constitution
	for _, dir := range []string{".specify/memory", ".specify/features"} {
		full := filepath.Join(root, filepath.FromSlash(dir))
		entries, err := os.ReadDir(full)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			c, err := constitution.Parse(filepath.Join(full, name))
			if err != nil {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}
