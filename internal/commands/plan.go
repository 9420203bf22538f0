// Package commands implements cibootstrap CLI commands.
package commands

import (
	"context"
	"path/filepath"

	"github.com/NielsdaWheelz/cibootstrap/internal/cargo"
	"github.com/NielsdaWheelz/cibootstrap/internal/core"
	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/reconcile"
	"github.com/NielsdaWheelz/cibootstrap/internal/templates"
)

// notApplicable is the summary/status value for the publish step when the
// repository has no Cargo.toml yet.
const notApplicable = "not_applicable"

// publishPlan is the set of publish workflows a repository should carry.
type publishPlan struct {
	Applicable bool
	Artifacts  []reconcile.Artifact
}

// planPublish enumerates packages and builds one publish artifact per package.
// A repository with more than one package gets one workflow per member named
// after it; otherwise a single workflow at the fixed location, named after the
// repository directory. A missing Cargo.toml yields a plan that is not
// applicable; every other enumeration error is returned.
func planPublish(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, store *templates.Store, repoRoot, cargoBin string) (publishPlan, error) {
	pkgs, err := cargo.NewEnumerator(cr, fsys, cargoBin).Enumerate(ctx, repoRoot)
	if err != nil {
		if errors.IsRecoverable(err) {
			return publishPlan{}, nil
		}
		return publishPlan{}, err
	}

	multi := len(pkgs) > 1
	plan := publishPlan{Applicable: true}
	for _, pkg := range pkgs {
		path := core.SingleWorkflowPath
		if multi {
			path = core.WorkflowPath(pkg.Name)
		}
		a, err := reconcile.PublishArtifact(store, pkg.Name, pkg.RelPath, path)
		if err != nil {
			return publishPlan{}, err
		}
		plan.Artifacts = append(plan.Artifacts, a)
	}
	return plan, nil
}

// openStore returns the built-in template store, or one rooted at dir.
func openStore(dir string) *templates.Store {
	if dir == "" {
		return templates.NewBuiltin()
	}
	return templates.NewDir(filepath.Clean(dir))
}
