package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bpkit/bpkit/internal/ambiguity"
	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/semver"
)

// ClarifyOptions holds flags for the clarify command.
type ClarifyOptions struct {
	*RootOptions
	Section string
	DryRun  bool
	Max     int

	// Asker collects the answer for one question. Defaults to an
	// interactive huh prompt; tests inject a canned responder.
	Asker func(q *ambiguity.Question) error
}

// NewClarifyCommand creates the clarify command.
func NewClarifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClarifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clarify",
		Short: "Resolve pitch deck ambiguities through targeted questions",
		Long: `Identify vague or incomplete pitch deck sections and ask prioritized
questions to resolve them. Answers are appended to the deck in place
and the deck version gets a patch bump.

Example:
  bpkit clarify
  bpkit clarify --section business-model
  bpkit clarify --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClarify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Section, "section", "", "focus on a single section id")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show questions without updating the deck")
	cmd.Flags().IntVar(&opts.Max, "max", ambiguity.DefaultMaxQuestions, "maximum questions to ask")

	return cmd
}

func runClarify(opts *ClarifyOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	root, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve working directory", err)
	}
	deckPath := filepath.Join(root, ".specify", "deck", "pitch-deck.md")

	d, err := deck.Load(deckPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load pitch deck", err)
	}
	formatter.VerboseLog("loaded pitch deck v%s with %d sections", d.Version, len(d.Sections))

	if decomposed(root) {
		fmt.Fprintln(formatter.GetErrWriter(), warnStyle.Render(
			"Pitch deck already decomposed: re-run bpkit decompose after clarifying."))
	}

	vague := ambiguity.Detect(d, deck.SectionID(opts.Section))
	if len(vague) == 0 {
		fmt.Fprintln(formatter.Writer, successStyle.Render("No clarifications needed: pitch deck is complete"))
		return nil
	}

	questions := ambiguity.Prioritize(ambiguity.Questions(vague), opts.Max)
	fmt.Fprintf(formatter.Writer, "Found %d sections needing clarification, asking %d questions.\n",
		len(vague), len(questions))

	asker := opts.Asker
	if asker == nil {
		asker = askInteractively
	}

	updated := 0
	for i := range questions {
		if err := asker(&questions[i]); err != nil {
			return WrapExitError(ExitCommandError, "clarification cancelled", err)
		}
		if opts.DryRun || !questions[i].Answered() {
			continue
		}
		if err := ambiguity.Apply(d, questions[i]); err != nil {
			fmt.Fprintln(formatter.GetErrWriter(), errorStyle.Render("could not apply answer: "+err.Error()))
			continue
		}
		updated++
	}

	if opts.DryRun {
		fmt.Fprintln(formatter.Writer, dimStyle.Render("Dry run: no changes made to the pitch deck"))
		return nil
	}
	if updated == 0 {
		fmt.Fprintln(formatter.Writer, warnStyle.Render("No sections were updated"))
		return nil
	}

	oldVersion := d.Version
	newVersion := d.BumpVersion(semver.BumpPatch)
	if err := d.Save(); err != nil {
		return WrapExitError(ExitFailure, "save pitch deck", err)
	}

	logPath, err := ambiguity.WriteChangelog(filepath.Join(root, ".specify", "changelog"), ambiguity.ClarifyLog{
		SectionsUpdated: updated,
		OldVersion:      oldVersion.String(),
		NewVersion:      newVersion.String(),
		Target:          deck.SectionID(opts.Section),
		Now:             time.Now(),
	})
	if err != nil {
		formatter.VerboseLog("could not write changelog: %v", err)
	} else {
		formatter.VerboseLog("changelog written to %s", logPath)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"sections_updated": updated,
			"old_version":      oldVersion.String(),
			"new_version":      newVersion.String(),
		})
	}
	fmt.Fprintln(formatter.Writer, successStyle.Render(
		fmt.Sprintf("Pitch deck clarified: %d sections updated, v%s -> v%s", updated, oldVersion, newVersion)))
	fmt.Fprintln(formatter.Writer, dimStyle.Render("Next: bpkit decompose to regenerate constitutions"))
	return nil
}

// decomposed reports whether constitutions already exist.
func decomposed(root string) bool {
	for _, dir := range []string{".specify/memory", ".specify/features"} {
		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".md" {
				return true
			}
		}
	}
	return false
}

// askInteractively presents a question with its suggested answers; the
// custom escape opens a free-form input.
func askInteractively(q *ambiguity.Question) error {
	if len(q.SuggestedAnswers) > 1 {
		var choice string
		options := make([]huh.Option[string], 0, len(q.SuggestedAnswers))
		for _, a := range q.SuggestedAnswers {
			options = append(options, huh.NewOption(a, a))
		}
		err := huh.NewSelect[string]().
			Title(fmt.Sprintf("%s [%s, %s priority]", q.Text, q.SectionID, q.Priority)).
			Options(options...).
			Value(&choice).
			Run()
		if err != nil {
			return err
		}
		if choice != "Custom answer" {
			q.Answer = choice
			return nil
		}
	}
	return huh.NewInput().Title(q.Text).Value(&q.Answer).Run()
}
