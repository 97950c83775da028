// Package installer scaffolds the .specify project structure that the
// rest of the pipeline operates on. Installation is all-or-nothing: any
// failure rolls back everything the run created, leaving pre-existing
// files untouched.
package installer

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/pitch-deck-template.md
var pitchDeckTemplate string

// Directories created under the project root.
var scaffoldDirs = []string{
	".specify/deck",
	".specify/features",
	".specify/memory",
	".specify/changelog",
	".specify/checklists",
	".specify/templates",
}

// templateFiles maps destination paths to embedded template content.
var templateFiles = map[string]string{
	".specify/templates/pitch-deck-template.md": pitchDeckTemplate,
}

const gitignoreEntry = ".specify/deck/*.pdf"

// Journal tracks paths created during one install so a failed run can
// be undone. Only paths that did not exist before tracking are
// recorded, so rollback never touches pre-existing files.
type Journal struct {
	files []string
	dirs  []string
}

// TrackFile records a file about to be created.
func (j *Journal) TrackFile(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		j.files = append(j.files, path)
	}
}

// TrackDir records a directory about to be created.
func (j *Journal) TrackDir(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		j.dirs = append(j.dirs, path)
	}
}

// Rollback deletes tracked paths in LIFO order, files before
// directories. Non-empty directories are skipped so user data created
// alongside the scaffold survives.
func (j *Journal) Rollback(logger *slog.Logger) {
	for i := len(j.files) - 1; i >= 0; i-- {
		if err := os.Remove(j.files[i]); err != nil && !os.IsNotExist(err) {
			logger.Warn("rollback could not delete file", "path", j.files[i], "error", err)
		}
	}
	for i := len(j.dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(j.dirs[i])
		if err != nil {
			continue
		}
		if len(entries) > 0 {
			logger.Warn("rollback skipped non-empty directory", "path", j.dirs[i])
			continue
		}
		if err := os.Remove(j.dirs[i]); err != nil {
			logger.Warn("rollback could not delete directory", "path", j.dirs[i], "error", err)
		}
	}
}

// Options controls Install behavior.
type Options struct {
	// ProjectName substitutes [PROJECT_NAME] in templates when set.
	ProjectName string
	// Gitignore creates or appends .gitignore with the PDF exclusion.
	Gitignore bool
}

// Installer writes the scaffold under Root.
type Installer struct {
	Root   string
	Logger *slog.Logger
}

func New(root string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{Root: root, Logger: logger}
}

// Install creates the directory set and template files. On error every
// path created by this run is rolled back.
func (in *Installer) Install(opts Options) error {
	journal := &Journal{}
	if err := in.install(journal, opts); err != nil {
		in.Logger.Warn("installation failed, rolling back", "error", err)
		journal.Rollback(in.Logger)
		return fmt.Errorf("installation failed: %w (all changes rolled back)", err)
	}
	return nil
}

func (in *Installer) install(journal *Journal, opts Options) error {
	for _, dir := range scaffoldDirs {
		path := filepath.Join(in.Root, filepath.FromSlash(dir))
		journal.TrackDir(path)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		in.Logger.Debug("created directory", "path", dir)
	}

	for dest, content := range templateFiles {
		path := filepath.Join(in.Root, filepath.FromSlash(dest))
		journal.TrackFile(path)
		if err := os.WriteFile(path, []byte(ReplacePlaceholders(content, opts.ProjectName)), 0o644); err != nil {
			return fmt.Errorf("write template %s: %w", dest, err)
		}
		in.Logger.Debug("installed template", "path", dest)
	}

	if opts.Gitignore {
		if err := in.writeGitignore(journal); err != nil {
			return err
		}
	}
	return nil
}

func (in *Installer) writeGitignore(journal *Journal) error {
	path := filepath.Join(in.Root, ".gitignore")
	entry := "# Exclude pitch deck PDFs\n" + gitignoreEntry + "\n"

	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		journal.TrackFile(path)
		return os.WriteFile(path, []byte(entry), 0o644)
	case err != nil:
		return fmt.Errorf("read .gitignore: %w", err)
	}

	if strings.Contains(string(existing), gitignoreEntry) {
		return nil
	}
	updated := strings.TrimRight(string(existing), "\n") + "\n\n" + entry
	return os.WriteFile(path, []byte(updated), 0o644)
}

// ReplacePlaceholders substitutes [PROJECT_NAME] in template content.
// An empty name leaves the placeholder intact.
func ReplacePlaceholders(content, projectName string) string {
	if projectName == "" {
		return content
	}
	return strings.ReplaceAll(content, "[PROJECT_NAME]", projectName)
}

// Installed reports whether the project already carries the scaffold.
// Any marker is enough: a partial install still counts.
func Installed(root string) bool {
	markers := []string{
		filepath.Join(root, ".specify", "deck"),
		filepath.Join(root, ".specify", "templates", "pitch-deck-template.md"),
	}
	for _, m := range markers {
		if _, err := os.Stat(m); err == nil {
			return true
		}
	}
	return false
}

// SpecifyProject reports whether a .specify directory exists, even one
// created by another tool.
func SpecifyProject(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".specify"))
	return err == nil
}

// DetectGit reports whether the project root is a git repository.
func DetectGit(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil
}

// Conflicts lists files from other spec tooling that installation must
// not overwrite. Informational: scaffold filenames never collide with
// these, so conflicts do not block installation.
func Conflicts(root string) []string {
	foreign := []string{
		".specify/templates/spec-template.md",
		".specify/templates/plan-template.md",
		".specify/templates/tasks-template.md",
	}
	var conflicts []string
	for _, rel := range foreign {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			conflicts = append(conflicts, fmt.Sprintf("existing template %s will not be modified", rel))
		}
	}
	return conflicts
}
