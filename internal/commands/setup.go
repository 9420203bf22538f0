package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/NielsdaWheelz/cibootstrap/internal/cargo"
	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/git"
	"github.com/NielsdaWheelz/cibootstrap/internal/prompt"
	"github.com/NielsdaWheelz/cibootstrap/internal/reconcile"
	"github.com/NielsdaWheelz/cibootstrap/internal/render"
)

// SetupOpts holds options for the setup command.
type SetupOpts struct {
	Repo         string // explicit repository root; "" discovers it from cwd
	CargoBin     string // cargo executable; "" means "cargo"
	TemplatesDir string // installed template directory; "" uses the built-in templates
}

// Setup implements the `cibootstrap setup` command.
// Reconciles, in order, the platform list, the dependabot configuration and
// the publish workflows, then prints a stable key: value summary.
func Setup(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, prompter prompt.Prompter, cwd string, opts SetupOpts, stdout io.Writer) error {
	// Discover repo root
	repoRoot, err := git.ResolveRoot(ctx, cr, cwd, opts.Repo)
	if err != nil {
		return err
	}

	store := openStore(opts.TemplatesDir)
	if err := store.Verify(); err != nil {
		return err
	}
	slog.Debug("setup", "repo_root", repoRoot.Path, "templates", store.Origin())

	out := render.NewPrinter(stdout)
	rec := reconcile.New(fsys, repoRoot.Path, prompter, out)
	summary := []render.Field{{Key: "repo_root", Value: repoRoot.Path}}

	// Platform list
	res, err := rec.Reconcile(reconcile.PlatformArtifact())
	if err != nil {
		return err
	}
	summary = append(summary, resultField(res))

	// Bot config
	bot, err := reconcile.BotConfigArtifact(store)
	if err != nil {
		return err
	}
	res, err = rec.Reconcile(bot)
	if err != nil {
		return err
	}
	summary = append(summary, resultField(res))

	// Publish workflows, one package at a time
	plan, err := planPublish(ctx, cr, fsys, store, repoRoot.Path, opts.CargoBin)
	if err != nil {
		return err
	}
	if !plan.Applicable {
		out.Step("Publish workflows")
		out.Warn("no %s found in %s; re-run after creating %s", cargo.ManifestName, repoRoot.Path, cargo.ManifestName)
		summary = append(summary, render.Field{Key: "publish", Value: notApplicable})
	}
	for _, a := range plan.Artifacts {
		res, err := rec.Reconcile(a)
		if err != nil {
			return err
		}
		summary = append(summary, resultField(res))
	}

	fmt.Fprintln(stdout)
	render.WriteSummary(stdout, summary)
	return nil
}

func resultField(res reconcile.Result) render.Field {
	return render.Field{Key: res.Name, Value: string(res.Outcome)}
}
