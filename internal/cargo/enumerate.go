package cargo

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
)

// Package is one publishable crate.
type Package struct {
	Name    string
	RelPath string // slash-separated, relative to the repo root; "." for the root
}

// Enumerator lists packages using `cargo metadata`, falling back to reading
// workspace manifests directly when cargo is not installed.
type Enumerator struct {
	cr    exec.CommandRunner
	fsys  fs.FS
	cargo string
}

// NewEnumerator creates an Enumerator. cargoBin defaults to "cargo".
func NewEnumerator(cr exec.CommandRunner, fsys fs.FS, cargoBin string) *Enumerator {
	if cargoBin == "" {
		cargoBin = "cargo"
	}
	return &Enumerator{cr: cr, fsys: fsys, cargo: cargoBin}
}

// Enumerate returns the packages of the repository at repoRoot.
//
// A repository with at most one package yields exactly one Package named after
// the repository directory with RelPath ".". Otherwise one Package per
// workspace member is returned, in cargo's order.
//
// Errors:
//   - E_NO_MANIFEST: no Cargo.toml at repoRoot (recoverable)
//   - E_INVALID_MANIFEST: Cargo.toml unreadable, or a member lacks [package].name
//   - E_METADATA_FAILED: cargo ran and failed, or printed unparseable output
//   - E_FILESYSTEM: a member path does not resolve inside repoRoot
func (e *Enumerator) Enumerate(ctx context.Context, repoRoot string) ([]Package, error) {
	m, err := readManifest(e.fsys, repoRoot)
	if err != nil {
		return nil, err
	}

	single := []Package{{Name: filepath.Base(repoRoot), RelPath: "."}}
	if m.Workspace == nil {
		return single, nil
	}

	pkgs, err := e.fromMetadata(ctx, repoRoot)
	if exec.IsNotFound(err) {
		slog.Debug("cargo not found, reading workspace manifests", "cargo", e.cargo)
		pkgs, err = e.fromManifests(repoRoot, m)
	}
	if err != nil {
		return nil, err
	}

	if len(pkgs) <= 1 {
		return single, nil
	}
	return pkgs, nil
}

type metadata struct {
	Packages []struct {
		Name         string `json:"name"`
		ManifestPath string `json:"manifest_path"`
	} `json:"packages"`
}

// fromMetadata queries cargo. A binary that cannot be started is returned
// unwrapped so the caller can detect it with exec.IsNotFound.
func (e *Enumerator) fromMetadata(ctx context.Context, repoRoot string) ([]Package, error) {
	args := []string{"metadata", "--no-deps", "--format-version", "1",
		"--manifest-path", filepath.Join(repoRoot, ManifestName)}
	slog.Debug("querying cargo metadata", "cargo", e.cargo, "dir", repoRoot)

	result, err := e.cr.Run(ctx, e.cargo, args, exec.RunOpts{Dir: repoRoot})
	if err != nil {
		if exec.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.EMetadataFailed, "failed to run cargo metadata", err)
	}
	if result.ExitCode != 0 {
		return nil, errors.NewWithDetails(errors.EMetadataFailed, "cargo metadata failed",
			map[string]string{"exit_code": strconv.Itoa(result.ExitCode), "stderr": strings.TrimSpace(result.Stderr)})
	}

	var md metadata
	if err := json.Unmarshal([]byte(result.Stdout), &md); err != nil {
		return nil, errors.Wrap(errors.EMetadataFailed, "cargo metadata printed invalid JSON", err)
	}

	pkgs := make([]Package, 0, len(md.Packages))
	for _, p := range md.Packages {
		rel, err := relativeTo(repoRoot, filepath.Dir(p.ManifestPath))
		if err != nil {
			return nil, errors.WrapWithDetails(errors.EFileSystem, "cannot resolve package path relative to the repository root", err,
				map[string]string{"package": p.Name, "manifest_path": p.ManifestPath})
		}
		pkgs = append(pkgs, Package{Name: p.Name, RelPath: rel})
	}
	return pkgs, nil
}

// fromManifests expands workspace.members globs, drops workspace.exclude
// entries, and reads each member's package name. A root [package] comes first.
func (e *Enumerator) fromManifests(repoRoot string, m manifest) ([]Package, error) {
	var pkgs []Package
	if m.Package != nil {
		pkgs = append(pkgs, Package{Name: m.Package.Name, RelPath: "."})
	}

	excluded := map[string]bool{}
	for _, ex := range m.Workspace.Exclude {
		excluded[filepath.ToSlash(filepath.Clean(ex))] = true
	}

	seen := map[string]bool{".": m.Package != nil}
	for _, pattern := range m.Workspace.Members {
		matches, err := e.fsys.Glob(filepath.Join(repoRoot, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, errors.Wrap(errors.EInvalidManifest, "invalid workspace member pattern "+pattern, err)
		}
		sort.Strings(matches)
		for _, dir := range matches {
			rel, err := relativeTo(repoRoot, dir)
			if err != nil {
				return nil, errors.WrapWithDetails(errors.EFileSystem, "cannot resolve package path relative to the repository root", err,
					map[string]string{"member": pattern, "path": dir})
			}
			if seen[rel] || excluded[rel] {
				continue
			}
			if info, err := e.fsys.Stat(dir); err != nil || !info.IsDir() {
				continue
			}
			seen[rel] = true

			member, err := readManifest(e.fsys, dir)
			if err != nil {
				if errors.GetCode(err) == errors.ENoManifest {
					return nil, errors.WrapWithDetails(errors.EInvalidManifest, "workspace member has no "+ManifestName, err,
						map[string]string{"member": rel})
				}
				return nil, err
			}
			if member.Package == nil || member.Package.Name == "" {
				return nil, errors.NewWithDetails(errors.EInvalidManifest, "workspace member has no [package] name",
					map[string]string{"member": rel})
			}
			pkgs = append(pkgs, Package{Name: member.Package.Name, RelPath: rel})
		}
	}
	return pkgs, nil
}
