// Package templates holds the known-good configuration templates that
// generated artifacts are written from and compared against.
package templates

import (
	"bytes"
	"embed"
	iofs "io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/cibootstrap/internal/core"
	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
)

//go:embed files/*.yml
var builtin embed.FS

// Key names a template.
type Key string

const (
	KeyDependabotWeekly  Key = "dependabot-weekly"
	KeyDependabotMonthly Key = "dependabot-monthly"
	KeyPublish           Key = "publish"
)

// Placeholders in the publish template.
const (
	TagPatternPlaceholder = "__TAG_PATTERN__"
	WorkingDirPlaceholder = "__WORKING_DIRECTORY__"
)

// Keys returns every template key, in a fixed order.
func Keys() []Key {
	return []Key{KeyDependabotWeekly, KeyDependabotMonthly, KeyPublish}
}

func (k Key) fileName() (string, bool) {
	switch k {
	case KeyDependabotWeekly, KeyDependabotMonthly, KeyPublish:
		return string(k) + ".yml", true
	}
	return "", false
}

// Schedule is a dependabot update schedule backed by a template.
type Schedule struct {
	Label string // "weekly", "monthly"
	Key   Key
}

// Schedules returns the selectable dependabot schedules, most frequent first.
func Schedules() []Schedule {
	return []Schedule{
		{Label: "weekly", Key: KeyDependabotWeekly},
		{Label: "monthly", Key: KeyDependabotMonthly},
	}
}

// Store reads templates from a read-only file tree.
type Store struct {
	files  iofs.FS
	origin string
}

// NewBuiltin returns a Store over the templates compiled into the binary.
func NewBuiltin() *Store {
	sub, err := iofs.Sub(builtin, "files")
	if err != nil {
		// "files" is a literal embedded directory; Sub only fails on an invalid name.
		panic(err)
	}
	return &Store{files: sub, origin: "builtin"}
}

// NewDir returns a Store reading <dir>/<key>.yml, e.g. from a CI submodule checkout.
func NewDir(dir string) *Store {
	return &Store{files: os.DirFS(dir), origin: dir}
}

// Origin describes where templates are read from.
func (s *Store) Origin() string {
	return s.origin
}

// Get returns the raw template text for key.
// Returns E_UNKNOWN_TEMPLATE for a key outside Keys() and
// E_UNREADABLE_TEMPLATE when the template cannot be read.
func (s *Store) Get(key Key) ([]byte, error) {
	name, ok := key.fileName()
	if !ok {
		return nil, errors.New(errors.EUnknownTemplate, "unknown template key: "+string(key))
	}
	data, err := iofs.ReadFile(s.files, name)
	if err != nil {
		return nil, errors.WrapWithDetails(errors.EUnreadableTemplate, "failed to read template "+string(key), err,
			map[string]string{"template_origin": s.origin})
	}
	return data, nil
}

// Verify checks that every template is readable and is well-formed YAML, and
// that the publish template carries both placeholders.
func (s *Store) Verify() error {
	for _, key := range Keys() {
		data, err := s.Get(key)
		if err != nil {
			return err
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.WrapWithDetails(errors.EUnreadableTemplate, "template "+string(key)+" is not valid YAML", err,
				map[string]string{"template_origin": s.origin})
		}
		if key != KeyPublish {
			continue
		}
		for _, ph := range []string{TagPatternPlaceholder, WorkingDirPlaceholder} {
			if !bytes.Contains(data, []byte(ph)) {
				return errors.NewWithDetails(errors.EUnreadableTemplate, "publish template is missing placeholder "+ph,
					map[string]string{"template_origin": s.origin})
			}
		}
	}
	return nil
}

// Substitution replaces every occurrence of Placeholder with Value.
type Substitution struct {
	Placeholder string
	Value       string
}

// Instantiate applies subs to tmpl in order, as literal substring replacements.
// Values must not themselves contain placeholder text.
func Instantiate(tmpl []byte, subs ...Substitution) []byte {
	out := tmpl
	for _, sub := range subs {
		out = bytes.ReplaceAll(out, []byte(sub.Placeholder), []byte(sub.Value))
	}
	return out
}

// PublishWorkflow instantiates the publish template for a package: release
// tags are scoped to name and `cargo publish` runs in relPath.
func (s *Store) PublishWorkflow(name, relPath string) ([]byte, error) {
	tmpl, err := s.Get(KeyPublish)
	if err != nil {
		return nil, err
	}
	return Instantiate(tmpl,
		Substitution{Placeholder: TagPatternPlaceholder, Value: core.TagPattern(name)},
		Substitution{Placeholder: WorkingDirPlaceholder, Value: relPath},
	), nil
}
