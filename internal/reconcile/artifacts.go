package reconcile

import (
	"github.com/NielsdaWheelz/cibootstrap/internal/platform"
	"github.com/NielsdaWheelz/cibootstrap/internal/prompt"
	"github.com/NielsdaWheelz/cibootstrap/internal/render"
	"github.com/NielsdaWheelz/cibootstrap/internal/templates"
)

// BotConfigPath is the dependabot configuration location relative to the repo root.
const BotConfigPath = ".github/dependabot.yml"

const (
	dependabotDocs       = "https://docs.github.com/en/code-security/dependabot/working-with-dependabot/dependabot-options-reference"
	trustedPublisherDocs = "https://crates.io/docs/trusted-publishing"
)

// PlatformArtifact describes the platform manifest. Every non-empty subset of
// the supported platforms, in canonical order, is a known variant.
func PlatformArtifact() Artifact {
	sets := platform.AllSets()
	variants := make([]Variant, 0, len(sets))
	for _, s := range sets {
		variants = append(variants, Variant{Label: s.String(), Content: s.Bytes()})
	}

	return Artifact{
		Name:        "platforms",
		Title:       "Platform list",
		Path:        platform.ManifestPath,
		Variants:    variants,
		ShowCurrent: true,
		Select:      selectPlatforms,
	}
}

// selectPlatforms asks once per supported platform. Declining all of them
// declines the artifact.
func selectPlatforms(p prompt.Prompter, out *render.Printer) (Variant, bool, error) {
	var set platform.Set
	for _, id := range platform.Supported {
		ok, err := p.Confirm("Run CI on " + id + "?")
		if err != nil {
			return Variant{}, false, err
		}
		if !ok {
			continue
		}
		if err := set.Add(id); err != nil {
			return Variant{}, false, err
		}
	}
	if set.Len() == 0 {
		out.Info("no platform selected; %s not written", platform.ManifestPath)
		return Variant{}, false, nil
	}
	return Variant{Label: set.String(), Content: set.Bytes()}, true, nil
}

// BotConfigArtifact describes the dependabot configuration; each schedule
// template is a known variant and "disabled" means no file.
func BotConfigArtifact(store *templates.Store) (Artifact, error) {
	scheds := templates.Schedules()
	variants := make([]Variant, 0, len(scheds))
	labels := make([]string, 0, len(scheds))
	for _, sched := range scheds {
		content, err := store.Get(sched.Key)
		if err != nil {
			return Artifact{}, err
		}
		variants = append(variants, Variant{Label: sched.Label, Content: content})
		labels = append(labels, sched.Label)
	}

	return Artifact{
		Name:     "dependabot",
		Title:    "Dependabot configuration",
		Path:     BotConfigPath,
		Variants: variants,
		Note:     "dependabot options: " + dependabotDocs,
		Select: func(p prompt.Prompter, out *render.Printer) (Variant, bool, error) {
			idx, ok, err := p.ChooseOne("Select the dependabot update schedule:", labels, "disabled")
			if err != nil {
				return Variant{}, false, err
			}
			if !ok {
				out.Info("dependabot disabled; %s not written", BotConfigPath)
				return Variant{}, false, nil
			}
			return variants[idx], true, nil
		},
	}, nil
}

// PublishArtifact describes the crates.io publish workflow for one package.
// name scopes the release tag pattern, relPath is where `cargo publish` runs,
// and path is the workflow file location.
func PublishArtifact(store *templates.Store, name, relPath, path string) (Artifact, error) {
	content, err := store.PublishWorkflow(name, relPath)
	if err != nil {
		return Artifact{}, err
	}
	v := Variant{Label: "publish " + name, Content: content}

	return Artifact{
		Name:          "publish[" + name + "]",
		Title:         "Publish workflow for " + name,
		Path:          path,
		Variants:      []Variant{v},
		SkipWhenKnown: true,
		Note:          "configure crates.io trusted publishing for " + name + ": " + trustedPublisherDocs,
		Select: func(p prompt.Prompter, _ *render.Printer) (Variant, bool, error) {
			ok, err := p.Confirm("Create a crates.io publish workflow for " + name + "?")
			if err != nil || !ok {
				return Variant{}, false, err
			}
			return v, true, nil
		},
	}, nil
}
