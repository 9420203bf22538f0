// Package git discovers the repository root the bootstrap pass operates on.
package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
)

// RepoRoot holds the absolute path to a repository root.
type RepoRoot struct {
	Path string // absolute, clean, no trailing newline
}

// Name returns the repository directory name. Single-crate repositories use
// it as the implicit package name.
func (r RepoRoot) Name() string {
	return filepath.Base(r.Path)
}

// GetRepoRoot discovers the git repository root from the given working directory.
// Uses `git rev-parse --show-toplevel` via CommandRunner.
//
// Returns E_NO_REPO if:
//   - Not inside a git repository (exit code != 0)
//   - Git outputs empty or multi-line stdout
//   - cwd is empty
func GetRepoRoot(ctx context.Context, cr exec.CommandRunner, cwd string) (RepoRoot, error) {
	if cwd == "" {
		return RepoRoot{}, errors.New(errors.ENoRepo, "working directory is empty")
	}

	result, err := cr.Run(ctx, "git", []string{"rev-parse", "--show-toplevel"}, exec.RunOpts{Dir: cwd})
	if err != nil {
		return RepoRoot{}, errors.Wrap(errors.ENoRepo, "failed to run git rev-parse", err)
	}
	if result.ExitCode != 0 {
		return RepoRoot{}, errors.New(errors.ENoRepo, "not inside a git repository; pass --repo to bootstrap a plain directory")
	}

	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		return RepoRoot{}, errors.New(errors.ENoRepo, "git rev-parse returned empty output")
	}
	if strings.Contains(out, "\n") {
		return RepoRoot{}, errors.New(errors.ENoRepo, "git rev-parse returned unexpected multi-line output")
	}

	if !filepath.IsAbs(out) {
		out = filepath.Join(cwd, out)
	}
	absPath, err := filepath.Abs(filepath.Clean(out))
	if err != nil {
		return RepoRoot{}, errors.Wrap(errors.ENoRepo, "failed to resolve absolute path", err)
	}

	return RepoRoot{Path: absPath}, nil
}

// ResolveRoot returns explicit as the repository root when it is set, after
// checking it names an existing directory. Otherwise the root is discovered
// from cwd with GetRepoRoot.
func ResolveRoot(ctx context.Context, cr exec.CommandRunner, cwd, explicit string) (RepoRoot, error) {
	if explicit == "" {
		return GetRepoRoot(ctx, cr, cwd)
	}

	if !filepath.IsAbs(explicit) {
		explicit = filepath.Join(cwd, explicit)
	}
	absPath, err := filepath.Abs(filepath.Clean(explicit))
	if err != nil {
		return RepoRoot{}, errors.Wrap(errors.ENoRepo, "failed to resolve absolute path", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return RepoRoot{}, errors.Wrap(errors.ENoRepo, "repository directory not accessible: "+absPath, err)
	}
	if !info.IsDir() {
		return RepoRoot{}, errors.New(errors.ENoRepo, "repository path is not a directory: "+absPath)
	}
	return RepoRoot{Path: absPath}, nil
}
