package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bpkit/bpkit/internal/installer"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Force bool
	Here  bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Scaffold the .specify project structure",
		Long: `Create the .specify directory tree and install the pitch deck template.

With a project name, a new directory is created. With --here the scaffold
lands in the current directory instead.

Example:
  bpkit init my-startup
  bpkit init --here --force`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing installation")
	cmd.Flags().BoolVar(&opts.Here, "here", false, "scaffold into the current directory")

	return cmd
}

func runInit(opts *InitOptions, args []string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := newFormatter(opts.RootOptions, cmd)

	var root, name string
	switch {
	case opts.Here && len(args) > 0:
		return NewExitError(ExitCommandError, "cannot combine --here with a project name")
	case opts.Here:
		wd, err := os.Getwd()
		if err != nil {
			return WrapExitError(ExitCommandError, "resolve working directory", err)
		}
		root, name = wd, filepath.Base(wd)
	case len(args) == 1:
		root, name = args[0], filepath.Base(args[0])
	default:
		return NewExitError(ExitCommandError, "specify a project name or use --here")
	}

	if installer.Installed(root) && !opts.Force {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("project at %s is already initialized (use --force to overwrite)", root))
	}

	for _, conflict := range installer.Conflicts(root) {
		formatter.VerboseLog("note: %s", conflict)
	}

	in := installer.New(root, slog.Default())
	err := in.Install(installer.Options{
		ProjectName: name,
		Gitignore:   !installer.DetectGit(root),
	})
	if err != nil {
		return WrapExitError(ExitFailure, "initialization failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"root":    root,
			"project": name,
		})
	}
	fmt.Fprintln(formatter.Writer, successStyle.Render("Initialized BP-Kit project at "+root))
	fmt.Fprintln(formatter.Writer, dimStyle.Render("Next: copy your pitch deck to .specify/deck/pitch-deck.md or run bpkit decompose --interactive"))
	return nil
}
