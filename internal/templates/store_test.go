package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
)

func TestBuiltin_Verify(t *testing.T) {
	require.NoError(t, NewBuiltin().Verify())
}

func TestBuiltin_GetEveryKey(t *testing.T) {
	s := NewBuiltin()
	for _, key := range Keys() {
		data, err := s.Get(key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, data, key)
	}
}

func TestBuiltin_SchedulesDiffer(t *testing.T) {
	s := NewBuiltin()
	weekly, err := s.Get(KeyDependabotWeekly)
	require.NoError(t, err)
	monthly, err := s.Get(KeyDependabotMonthly)
	require.NoError(t, err)

	assert.NotEqual(t, weekly, monthly)
	assert.Contains(t, string(weekly), "interval: weekly")
	assert.NotContains(t, string(weekly), "interval: monthly")
	assert.Contains(t, string(monthly), "interval: monthly")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := NewBuiltin().Get(Key("nightly"))
	assert.Equal(t, errors.EUnknownTemplate, errors.GetCode(err))
}

func TestNewDir_MissingTemplateIsUnreadable(t *testing.T) {
	s := NewDir(t.TempDir())

	_, err := s.Get(KeyPublish)
	assert.Equal(t, errors.EUnreadableTemplate, errors.GetCode(err))
	assert.Equal(t, errors.EUnreadableTemplate, errors.GetCode(s.Verify()))
}

func writeTemplates(t *testing.T, dir string, publish string) {
	t.Helper()
	files := map[string]string{
		"dependabot-weekly.yml":  "version: 2\nupdates: []\n",
		"dependabot-monthly.yml": "version: 2\nupdates: [] # monthly\n",
		"publish.yml":            publish,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestNewDir_Verify(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplates(t, dir, "on:\n  push:\n    tags: ['__TAG_PATTERN__']\nrun: __WORKING_DIRECTORY__\n")
		s := NewDir(dir)
		require.NoError(t, s.Verify())
		assert.Equal(t, dir, s.Origin())
	})

	t.Run("missing placeholder", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplates(t, dir, "on:\n  push:\n    tags: ['v*']\nrun: __WORKING_DIRECTORY__\n")
		err := NewDir(dir).Verify()
		assert.Equal(t, errors.EUnreadableTemplate, errors.GetCode(err))
		assert.Contains(t, err.Error(), TagPatternPlaceholder)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeTemplates(t, dir, "on: [unterminated\n__TAG_PATTERN__ __WORKING_DIRECTORY__\n")
		err := NewDir(dir).Verify()
		assert.Equal(t, errors.EUnreadableTemplate, errors.GetCode(err))
	})
}

func TestInstantiate_Literal(t *testing.T) {
	tmpl := []byte("a=@A@ b=@B@ a-again=@A@ ${{ untouched }}")
	got := Instantiate(tmpl,
		Substitution{Placeholder: "@A@", Value: "1"},
		Substitution{Placeholder: "@B@", Value: "$2"},
	)
	assert.Equal(t, "a=1 b=$2 a-again=1 ${{ untouched }}", string(got))
	assert.Equal(t, "a=@A@ b=@B@ a-again=@A@ ${{ untouched }}", string(tmpl), "template must not be modified")
}

func TestPublishWorkflow_OnlyTwoSubstitutions(t *testing.T) {
	s := NewBuiltin()
	raw, err := s.Get(KeyPublish)
	require.NoError(t, err)

	packages := []struct{ name, path string }{
		{"vm-memory", "."},
		{"kvm-bindings", "kvm-bindings"},
		{"virtio-queue", "crates/virtio-queue"},
	}
	for _, p := range packages {
		t.Run(p.name, func(t *testing.T) {
			got, err := s.PublishWorkflow(p.name, p.path)
			require.NoError(t, err)

			assert.Contains(t, string(got), "tags: ['"+p.name+"-v*']")
			assert.Contains(t, string(got), "working-directory: "+p.path+"\n")
			assert.NotContains(t, string(got), TagPatternPlaceholder)
			assert.NotContains(t, string(got), WorkingDirPlaceholder)

			// Undoing the two substitutions recovers the template exactly.
			back := strings.Replace(string(got), "tags: ['"+p.name+"-v*']", "tags: ['"+TagPatternPlaceholder+"']", 1)
			back = strings.Replace(back, "working-directory: "+p.path+"\n", "working-directory: "+WorkingDirPlaceholder+"\n", 1)
			assert.Equal(t, string(raw), back)
		})
	}
}

func TestPublishWorkflow_Deterministic(t *testing.T) {
	s := NewBuiltin()
	a, err := s.PublishWorkflow("linux-loader", ".")
	require.NoError(t, err)
	b, err := s.PublishWorkflow("linux-loader", ".")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))

	c, err := s.PublishWorkflow("linux-loader", "loader")
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, c))
}

func TestSchedules(t *testing.T) {
	scheds := Schedules()
	require.Len(t, scheds, 2)
	assert.Equal(t, "weekly", scheds[0].Label)
	assert.Equal(t, KeyDependabotWeekly, scheds[0].Key)
	assert.Equal(t, "monthly", scheds[1].Label)
}
