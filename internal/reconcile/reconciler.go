package reconcile

import (
	"bytes"
	"log/slog"
	"path/filepath"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/prompt"
	"github.com/NielsdaWheelz/cibootstrap/internal/render"
)

// Outcome is the terminal result of one reconciliation pass over an artifact.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"     // was absent, now written
	OutcomeSkipped     Outcome = "skipped"     // was absent, operator declined
	OutcomeUnchanged   Outcome = "unchanged"   // known content left as is
	OutcomeKept        Outcome = "kept"        // foreign content left as is
	OutcomeRegenerated Outcome = "regenerated" // replaced with a chosen variant
	OutcomeRemoved     Outcome = "removed"     // regeneration confirmed, then nothing chosen
)

// SelectFunc asks the operator which variant to write. ok=false declines.
// The returned variant must be one of the artifact's Variants.
type SelectFunc func(p prompt.Prompter, out *render.Printer) (v Variant, ok bool, err error)

// Artifact describes one managed file.
type Artifact struct {
	Name     string // summary key, e.g. "platforms" or "publish[vm-memory]"
	Title    string // heading shown to the operator
	Path     string // slash-separated, relative to the repo root
	Variants []Variant
	Select   SelectFunc

	// SkipWhenKnown reports Known content without asking to regenerate.
	SkipWhenKnown bool
	// ShowCurrent prints existing content before asking about it.
	ShowCurrent bool
	// Note is printed after the file is written (follow-up instructions, links).
	Note string
}

// Result records what happened to an artifact.
type Result struct {
	Name    string
	Path    string
	Before  Classification
	Outcome Outcome
}

// Reconciler applies the state machine to artifacts under one repository root.
type Reconciler struct {
	fsys     fs.FS
	repoRoot string
	prompter prompt.Prompter
	out      *render.Printer
}

// New creates a Reconciler. prompter may be nil when only Inspect is used.
func New(fsys fs.FS, repoRoot string, prompter prompt.Prompter, out *render.Printer) *Reconciler {
	return &Reconciler{fsys: fsys, repoRoot: repoRoot, prompter: prompter, out: out}
}

func (r *Reconciler) absPath(a Artifact) string {
	return filepath.Join(r.repoRoot, filepath.FromSlash(a.Path))
}

// Inspect reads the artifact and classifies it without prompting or writing.
func (r *Reconciler) Inspect(a Artifact) (Classification, []byte, error) {
	current, present, err := fs.ReadOptional(r.fsys, r.absPath(a))
	if err != nil {
		return Classification{}, nil, errors.WrapWithDetails(errors.EFileSystem, "failed to read "+a.Path, err,
			map[string]string{"path": r.absPath(a)})
	}
	cls := Classify(current, present, a.Variants)
	slog.Debug("classified artifact", "artifact", a.Name, "path", a.Path, "state", cls.String())
	return cls, current, nil
}

// Reconcile walks the artifact to a terminal outcome:
//
//	Absent  -> ask for content; write it or leave the file absent
//	Known   -> report the active variant; regenerate only if confirmed
//	Foreign -> warn; reconfigure only if confirmed
//
// Regeneration removes the file and then follows the Absent path.
// Existing content is never replaced without the operator confirming.
func (r *Reconciler) Reconcile(a Artifact) (Result, error) {
	cls, current, err := r.Inspect(a)
	if err != nil {
		return Result{}, err
	}
	res := Result{Name: a.Name, Path: a.Path, Before: cls}

	r.out.Step("%s (%s)", a.Title, a.Path)

	switch cls.State {
	case Absent:
		written, err := r.create(a)
		if err != nil {
			return res, err
		}
		res.Outcome = OutcomeSkipped
		if written {
			res.Outcome = OutcomeCreated
		}
		return res, nil

	case Known:
		if a.SkipWhenKnown {
			r.out.Info("%s is up to date (%s); nothing to do", a.Path, cls.Label)
			res.Outcome = OutcomeUnchanged
			return res, nil
		}
		r.out.Info("%s is configured: %s", a.Path, cls.Label)
		r.showCurrent(a, current)
		ok, err := r.confirm("Regenerate " + a.Path + "?")
		if err != nil {
			return res, err
		}
		if !ok {
			res.Outcome = OutcomeUnchanged
			return res, nil
		}

	case Foreign:
		r.out.Warn("%s does not match any provided template", a.Path)
		r.showCurrent(a, current)
		ok, err := r.confirm("Reconfigure " + a.Path + "?")
		if err != nil {
			return res, err
		}
		if !ok {
			res.Outcome = OutcomeKept
			return res, nil
		}

	default:
		return res, errors.New(errors.EInternal, "invalid artifact state for "+a.Path)
	}

	res.Outcome, err = r.regenerate(a)
	return res, err
}

func (r *Reconciler) regenerate(a Artifact) (Outcome, error) {
	if err := r.fsys.Remove(r.absPath(a)); err != nil {
		return "", errors.WrapWithDetails(errors.EFileSystem, "failed to remove "+a.Path, err,
			map[string]string{"path": r.absPath(a)})
	}
	written, err := r.create(a)
	if err != nil {
		return "", err
	}
	if !written {
		r.out.Info("removed %s", a.Path)
		return OutcomeRemoved, nil
	}
	return OutcomeRegenerated, nil
}

// create runs the artifact's selection and writes the chosen variant.
func (r *Reconciler) create(a Artifact) (bool, error) {
	v, ok, err := a.Select(r.prompter, r.out)
	if err != nil {
		return false, promptError(err)
	}
	if !ok {
		return false, nil
	}
	if !isVariant(a.Variants, v) {
		return false, errors.New(errors.EInternal, "selected content for "+a.Path+" is not a known variant")
	}

	if err := fs.ReplaceFile(r.fsys, r.absPath(a), v.Content, 0644); err != nil {
		return false, errors.WrapWithDetails(errors.EFileSystem, "failed to write "+a.Path, err,
			map[string]string{"path": r.absPath(a)})
	}
	slog.Debug("wrote artifact", "artifact", a.Name, "path", a.Path, "variant", v.Label, "bytes", len(v.Content))
	r.out.Success("wrote %s (%s)", a.Path, v.Label)
	if a.Note != "" {
		r.out.Info("%s", a.Note)
	}
	return true, nil
}

func (r *Reconciler) confirm(question string) (bool, error) {
	ok, err := r.prompter.Confirm(question)
	if err != nil {
		return false, promptError(err)
	}
	return ok, nil
}

func (r *Reconciler) showCurrent(a Artifact, current []byte) {
	if a.ShowCurrent {
		r.out.Quote(string(current))
	}
}

func isVariant(variants []Variant, v Variant) bool {
	for _, known := range variants {
		if bytes.Equal(known.Content, v.Content) {
			return true
		}
	}
	return false
}

func promptError(err error) error {
	if _, ok := errors.AsBootstrapError(err); ok {
		return err
	}
	return errors.Wrap(errors.EPromptFailed, "failed to read operator answer", err)
}
