package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bpkit/bpkit/internal/constitution"
	"github.com/bpkit/bpkit/internal/deck"
	"github.com/bpkit/bpkit/internal/history"
	"github.com/bpkit/bpkit/internal/pdfx"
)

// DecomposeOptions holds flags for the decompose command.
type DecomposeOptions struct {
	*RootOptions
	Interactive bool
	FromFile    string
	FromPDF     string
	DryRun      bool
	Force       bool

	// PDFExtractor allows overriding the PDF boundary (for testing).
	// Nil means PDF extraction is unavailable in this build.
	PDFExtractor pdfx.Extractor
}

// NewDecomposeCommand creates the decompose command.
func NewDecomposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecomposeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Transform a pitch deck into constitutional specifications",
		Long: `Generate 4 strategic constitutions (company, product, market, business)
and up to 10 feature constitutions with bidirectional traceability.

Three modes are available:
  --interactive      Create the pitch deck via Q&A, then decompose
  --from-file PATH   Decompose an existing markdown pitch deck
  --from-pdf PATH    Extract a PDF pitch deck and decompose

Example:
  bpkit decompose --from-file ./pitch-deck.md
  bpkit decompose --interactive --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompose(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "create pitch deck via Q&A")
	cmd.Flags().StringVar(&opts.FromFile, "from-file", "", "path to existing markdown pitch deck")
	cmd.Flags().StringVar(&opts.FromPDF, "from-pdf", "", "path to PDF pitch deck")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "preview without writing files")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing files without prompting")
	cmd.MarkFlagsMutuallyExclusive("interactive", "from-file", "from-pdf")

	return cmd
}

func runDecompose(opts *DecomposeOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	root, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve working directory", err)
	}

	var d *deck.Deck
	switch {
	case opts.Interactive:
		d, err = interactiveDeck(root, opts, formatter)
	case opts.FromFile != "":
		d, err = fileDeck(root, opts, formatter)
	case opts.FromPDF != "":
		d, err = pdfDeck(root, opts, formatter)
	default:
		return NewExitError(ExitCommandError,
			"no mode specified: choose --interactive, --from-file, or --from-pdf")
	}
	if err != nil {
		return err
	}

	started := time.Now()
	result := constitution.NewGenerator(root).Decompose(d, opts.DryRun)
	result.DurationSeconds = time.Since(started).Seconds()

	if !opts.DryRun {
		recordRun(root, history.Run{
			Kind:          history.RunDecompose,
			DeckVersion:   d.Version.String(),
			Constitutions: result.Counts.StrategicConstitutions + result.Counts.FeatureConstitutions,
			Errors:        len(result.Errors),
			Warnings:      len(result.Warnings),
			DurationMS:    time.Since(started).Milliseconds(),
		})
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printDecomposeResult(formatter, result)
	}

	if !result.Success() {
		return NewExitError(ExitFailure, "decomposition failed")
	}
	return nil
}

func printDecomposeResult(formatter *OutputFormatter, result *constitution.Result) {
	w := formatter.Writer
	fmt.Fprintln(w, headerStyle.Render("Decomposition complete"))
	fmt.Fprint(w, result.Summary())
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  warning [%s]: %s", warning.Section, warning.Message)))
	}
	for _, e := range result.Errors {
		fmt.Fprintln(w, errorStyle.Render("  error: "+e.Error()))
	}
	if result.DryRun {
		fmt.Fprintln(w, dimStyle.Render("Dry run: no files were written"))
	} else if len(result.WrittenFiles) > 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Wrote %d files under .specify/", len(result.WrittenFiles))))
	}
}

func canonicalDeckPath(root string) string {
	return filepath.Join(root, ".specify", "deck", "pitch-deck.md")
}

// fileDeck parses an existing markdown deck and copies it to the
// canonical location.
func fileDeck(root string, opts *DecomposeOptions, formatter *OutputFormatter) (*deck.Deck, error) {
	d, err := deck.ParseSequoia(opts.FromFile, deck.SourceFromFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "parse pitch deck", err)
	}

	canonical := canonicalDeckPath(root)
	src, err := filepath.Abs(opts.FromFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "resolve pitch deck path", err)
	}
	if opts.DryRun || src == canonical {
		return d, nil
	}

	if _, err := os.Stat(canonical); err == nil && !opts.Force {
		if !confirm(fmt.Sprintf("Pitch deck exists at %s. Overwrite?", canonical), false) {
			return nil, NewExitError(ExitCommandError, "operation cancelled")
		}
	}
	if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create deck directory", err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read pitch deck", err)
	}
	if err := os.WriteFile(canonical, data, 0o644); err != nil {
		return nil, WrapExitError(ExitCommandError, "copy pitch deck", err)
	}
	formatter.VerboseLog("copied pitch deck to %s", canonical)
	d.Path = canonical
	return d, nil
}

// pdfDeck extracts a PDF through the configured boundary and writes
// the converted markdown to the canonical location.
func pdfDeck(root string, opts *DecomposeOptions, formatter *OutputFormatter) (*deck.Deck, error) {
	if opts.PDFExtractor == nil {
		return nil, NewExitError(ExitCommandError, "PDF extraction is not available in this build")
	}

	result, err := opts.PDFExtractor.Extract(opts.FromPDF)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "extract PDF", err)
	}
	pdfx.Finalize(result)
	markdown := pdfx.BlocksToMarkdown(result)
	for _, warning := range result.Warnings {
		formatter.VerboseLog("pdf: %s", warning)
	}

	canonical := canonicalDeckPath(root)
	target := canonical
	if opts.DryRun {
		// Dry runs still need a parsed deck, so the conversion lands
		// in a scratch file instead of the canonical path.
		tmp, err := os.CreateTemp("", "pitch-deck-*.md")
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "create scratch file", err)
		}
		tmp.Close()
		defer os.Remove(tmp.Name())
		target = tmp.Name()
	} else {
		if _, err := os.Stat(canonical); err == nil && !opts.Force {
			if !confirm(fmt.Sprintf("Pitch deck exists at %s. Overwrite?", canonical), false) {
				return nil, NewExitError(ExitCommandError, "operation cancelled")
			}
		}
		if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "create deck directory", err)
		}
	}
	if err := os.WriteFile(target, []byte(markdown), 0o644); err != nil {
		return nil, WrapExitError(ExitCommandError, "write pitch deck", err)
	}

	d, err := deck.ParseSequoia(target, deck.SourceFromPDF)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "parse extracted pitch deck", err)
	}
	d.Path = canonical
	return d, nil
}

var digitPattern = regexp.MustCompile(`\d`)

// validateAnswer enforces the per-section answer rules.
func validateAnswer(id deck.SectionID, answer string) error {
	if len(strings.TrimSpace(answer)) < 5 {
		return fmt.Errorf("answer too short (minimum 5 characters)")
	}
	switch id {
	case deck.CompanyPurpose:
		if len(strings.Fields(answer)) > 30 {
			return fmt.Errorf("company purpose should be concise (max 30 words)")
		}
	case deck.MarketSize, deck.Financials:
		if !digitPattern.MatchString(answer) {
			return fmt.Errorf("%s should include numbers/metrics", id.Title())
		}
	}
	return nil
}

// interactiveDeck runs the Q&A flow and builds a fresh deck from the
// answers.
func interactiveDeck(root string, opts *DecomposeOptions, formatter *OutputFormatter) (*deck.Deck, error) {
	canonical := canonicalDeckPath(root)
	if _, err := os.Stat(canonical); err == nil && !opts.Force {
		if !confirm(fmt.Sprintf("Pitch deck exists at %s. Overwrite?", canonical), false) {
			return nil, NewExitError(ExitCommandError, "operation cancelled")
		}
	}

	fmt.Fprintln(formatter.Writer, headerStyle.Render("Interactive Pitch Deck Creation"))
	fmt.Fprintln(formatter.Writer, dimStyle.Render("Answer 10 questions to create your Sequoia-format pitch deck."))

	answers := make(map[deck.SectionID]*string, len(deck.SequoiaSections))
	groups := make([]*huh.Group, 0, len(deck.SequoiaSections))
	for _, id := range deck.SequoiaSections {
		id := id
		answer := new(string)
		answers[id] = answer
		groups = append(groups, huh.NewGroup(
			huh.NewText().
				Title(id.Title()).
				Description(strings.Join(id.Prompts(), "\n")).
				Validate(func(s string) error { return validateAnswer(id, s) }).
				Value(answer),
		))
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		return nil, WrapExitError(ExitCommandError, "interactive input cancelled", err)
	}

	content := make(map[deck.SectionID]string, len(answers))
	for id, answer := range answers {
		content[id] = strings.TrimSpace(*answer)
	}
	d := deck.New(canonical, content, deck.SourceInteractive)

	if !opts.DryRun {
		if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "create deck directory", err)
		}
		if err := d.Save(); err != nil {
			return nil, WrapExitError(ExitCommandError, "save pitch deck", err)
		}
		fmt.Fprintln(formatter.Writer, successStyle.Render("Pitch deck saved: "+canonical))
	}
	return d, nil
}

// confirm asks a yes/no question; a cancelled prompt counts as no.
func confirm(title string, def bool) bool {
	answer := def
	err := huh.NewConfirm().Title(title).Value(&answer).Run()
	if err != nil {
		return false
	}
	return answer
}

// recordRun appends to the history journal. History is best-effort so
// failures only log.
func recordRun(root string, run history.Run) {
	store, err := history.Open(filepath.Join(root, ".specify", "history.db"))
	if err != nil {
		slog.Debug("history unavailable", "error", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), run); err != nil {
		slog.Debug("could not record run", "error", err)
	}
}
