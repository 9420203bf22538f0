package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/git"
	"github.com/NielsdaWheelz/cibootstrap/internal/reconcile"
	"github.com/NielsdaWheelz/cibootstrap/internal/render"
)

// StatusOpts holds options for the status command.
type StatusOpts struct {
	Repo         string
	CargoBin     string
	TemplatesDir string
}

// Status implements the `cibootstrap status` command.
// Classifies every managed file without prompting or writing.
func Status(ctx context.Context, cr exec.CommandRunner, fsys fs.FS, cwd string, opts StatusOpts, stdout io.Writer) error {
	repoRoot, err := git.ResolveRoot(ctx, cr, cwd, opts.Repo)
	if err != nil {
		return err
	}

	store := openStore(opts.TemplatesDir)
	if err := store.Verify(); err != nil {
		return err
	}

	artifacts := []reconcile.Artifact{reconcile.PlatformArtifact()}
	bot, err := reconcile.BotConfigArtifact(store)
	if err != nil {
		return err
	}
	artifacts = append(artifacts, bot)

	plan, err := planPublish(ctx, cr, fsys, store, repoRoot.Path, opts.CargoBin)
	if err != nil {
		return err
	}
	artifacts = append(artifacts, plan.Artifacts...)

	rec := reconcile.New(fsys, repoRoot.Path, nil, nil)
	rows := make([]render.StatusRow, 0, len(artifacts)+1)
	for _, a := range artifacts {
		cls, _, err := rec.Inspect(a)
		if err != nil {
			return err
		}
		rows = append(rows, render.StatusRow{Artifact: a.Name, Path: a.Path, State: cls.String()})
	}
	if !plan.Applicable {
		rows = append(rows, render.StatusRow{Artifact: "publish", Path: "-", State: notApplicable})
	}

	render.WriteSummary(stdout, []render.Field{
		{Key: "repo_root", Value: repoRoot.Path},
		{Key: "templates", Value: store.Origin()},
	})
	fmt.Fprintln(stdout)
	render.WriteStatusTable(stdout, rows)
	return nil
}
