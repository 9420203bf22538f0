package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/prompt/prompttest"
	"github.com/NielsdaWheelz/cibootstrap/internal/templates"
)

// cargoStub answers `cargo metadata` and fails the test on any other command.
type cargoStub struct {
	t        *testing.T
	metadata string
	notFound bool
	calls    int
}

func (s *cargoStub) Run(ctx context.Context, name string, args []string, opts exec.RunOpts) (exec.CmdResult, error) {
	if len(args) == 0 || args[0] != "metadata" {
		s.t.Fatalf("unexpected command: %s %v", name, args)
	}
	s.calls++
	if s.notFound {
		return exec.CmdResult{}, &osexec.Error{Name: name, Err: osexec.ErrNotFound}
	}
	return exec.CmdResult{Stdout: s.metadata}, nil
}

func newRepo(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.Mkdir(root, 0755))
	return root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, root, rel string) (string, bool) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return "", false
	}
	require.NoError(t, err)
	return string(data), true
}

func template(t *testing.T, key templates.Key) string {
	t.Helper()
	data, err := templates.NewBuiltin().Get(key)
	require.NoError(t, err)
	return string(data)
}

func publishWorkflow(t *testing.T, name, relPath string) string {
	t.Helper()
	data, err := templates.NewBuiltin().PublishWorkflow(name, relPath)
	require.NoError(t, err)
	return string(data)
}

func workspaceMetadata(t *testing.T, root string, members ...string) string {
	t.Helper()
	type pkg struct {
		Name         string `json:"name"`
		ManifestPath string `json:"manifest_path"`
	}
	var md struct {
		Packages []pkg `json:"packages"`
	}
	for _, m := range members {
		md.Packages = append(md.Packages, pkg{
			Name:         filepath.Base(m),
			ManifestPath: filepath.Join(root, filepath.FromSlash(m), "Cargo.toml"),
		})
	}
	data, err := json.Marshal(md)
	require.NoError(t, err)
	return string(data)
}

// summaryOf returns the trailing key: value block of setup output.
func summaryOf(out string) string {
	out = strings.TrimRight(out, "\n")
	i := strings.LastIndex(out, "\n\n")
	return out[i+2:] + "\n"
}

func runSetup(t *testing.T, cr exec.CommandRunner, root string, p *prompttest.Scripted) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := Setup(context.Background(), cr, fs.NewRealFS(), p, "/", SetupOpts{Repo: root}, &stdout)
	return stdout.String(), err
}

func TestSetup_EmptyRepository(t *testing.T) {
	root := newRepo(t, "fresh")
	p := prompttest.New(
		prompttest.Yes, prompttest.No, prompttest.No, // x86_64 only
		prompttest.Choose(0), // weekly
	)

	out, err := runSetup(t, &cargoStub{t: t}, root, p)
	require.NoError(t, err)
	assert.Zero(t, p.Remaining())

	platforms, ok := readFile(t, root, ".platform")
	require.True(t, ok)
	assert.Equal(t, "x86_64\n", platforms)

	bot, ok := readFile(t, root, ".github/dependabot.yml")
	require.True(t, ok)
	assert.Equal(t, template(t, templates.KeyDependabotWeekly), bot)

	_, err = os.Stat(filepath.Join(root, ".github", "workflows"))
	assert.True(t, os.IsNotExist(err), "no workflow may be written without Cargo.toml")

	assert.Contains(t, out, "re-run after creating Cargo.toml")
	assert.Equal(t, "repo_root: "+root+"\n"+
		"platforms: created\n"+
		"dependabot: created\n"+
		"publish: not_applicable\n", summaryOf(out))
}

func TestSetup_SingleCrate(t *testing.T) {
	root := newRepo(t, "vm-memory")
	writeFile(t, root, "Cargo.toml", "[package]\nname = \"vm-memory\"\nversion = \"0.16.1\"\n")
	writeFile(t, root, ".platform", "x86_64\naarch64\n")
	p := prompttest.New(
		prompttest.No,     // keep platforms
		prompttest.Cancel, // dependabot disabled
		prompttest.Yes,    // publish workflow
	)
	cr := &cargoStub{t: t}

	out, err := runSetup(t, cr, root, p)
	require.NoError(t, err)
	assert.Zero(t, cr.calls)

	platforms, _ := readFile(t, root, ".platform")
	assert.Equal(t, "x86_64\naarch64\n", platforms)
	_, ok := readFile(t, root, ".github/dependabot.yml")
	assert.False(t, ok)

	wf, ok := readFile(t, root, ".github/workflows/publish.yml")
	require.True(t, ok)
	assert.Equal(t, publishWorkflow(t, "vm-memory", "."), wf)

	assert.Equal(t, []string{
		"Regenerate .platform?",
		"Select the dependabot update schedule:",
		"Create a crates.io publish workflow for vm-memory?",
	}, p.Questions)
	assert.Equal(t, "repo_root: "+root+"\n"+
		"platforms: unchanged\n"+
		"dependabot: skipped\n"+
		"publish[vm-memory]: created\n", summaryOf(out))
}

func TestSetup_Workspace(t *testing.T) {
	root := newRepo(t, "vm-virtio")
	writeFile(t, root, "Cargo.toml", "[workspace]\nmembers = [\"crates/*\"]\n")
	cr := &cargoStub{t: t, metadata: workspaceMetadata(t, root, "crates/virtio-queue", "crates/virtio-blk")}
	p := prompttest.New(
		prompttest.No, prompttest.Yes, prompttest.No, // aarch64 only
		prompttest.Choose(1), // monthly
		prompttest.Yes,       // virtio-queue
		prompttest.No,        // virtio-blk
	)

	out, err := runSetup(t, cr, root, p)
	require.NoError(t, err)

	bot, _ := readFile(t, root, ".github/dependabot.yml")
	assert.Equal(t, template(t, templates.KeyDependabotMonthly), bot)

	wf, ok := readFile(t, root, ".github/workflows/publish-virtio-queue.yml")
	require.True(t, ok)
	assert.Equal(t, publishWorkflow(t, "virtio-queue", "crates/virtio-queue"), wf)
	_, ok = readFile(t, root, ".github/workflows/publish-virtio-blk.yml")
	assert.False(t, ok)
	_, ok = readFile(t, root, ".github/workflows/publish.yml")
	assert.False(t, ok)

	assert.Equal(t, "repo_root: "+root+"\n"+
		"platforms: created\n"+
		"dependabot: created\n"+
		"publish[virtio-queue]: created\n"+
		"publish[virtio-blk]: skipped\n", summaryOf(out))
}

func TestSetup_RerunIsIdempotent(t *testing.T) {
	root := newRepo(t, "vmm-sys-util")
	writeFile(t, root, "Cargo.toml", "[package]\nname = \"vmm-sys-util\"\n")

	_, err := runSetup(t, &cargoStub{t: t}, root, prompttest.New(
		prompttest.Yes, prompttest.Yes, prompttest.Yes,
		prompttest.Choose(0),
		prompttest.Yes,
	))
	require.NoError(t, err)
	before := map[string]string{}
	for _, rel := range []string{".platform", ".github/dependabot.yml", ".github/workflows/publish.yml"} {
		before[rel], _ = readFile(t, root, rel)
	}
	assert.Equal(t, "x86_64\naarch64\nriscv64\n", before[".platform"])

	// The publish workflow is up to date and must not be asked about again.
	p := prompttest.New(prompttest.No, prompttest.No)
	out, err := runSetup(t, &cargoStub{t: t}, root, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Regenerate .platform?", "Regenerate .github/dependabot.yml?"}, p.Questions)

	for rel, want := range before {
		got, _ := readFile(t, root, rel)
		assert.Equal(t, want, got, rel)
	}
	assert.Contains(t, summaryOf(out), "publish[vmm-sys-util]: unchanged\n")
}

func TestSetup_ForeignBotConfigReconfigured(t *testing.T) {
	root := newRepo(t, "linux-loader")
	writeFile(t, root, ".platform", "x86_64\n")
	writeFile(t, root, ".github/dependabot.yml", "version: 2\nupdates: []\n")
	p := prompttest.New(
		prompttest.No,        // keep platforms
		prompttest.Yes,       // reconfigure dependabot
		prompttest.Choose(1), // monthly
	)

	out, err := runSetup(t, &cargoStub{t: t}, root, p)
	require.NoError(t, err)

	bot, _ := readFile(t, root, ".github/dependabot.yml")
	assert.Equal(t, template(t, templates.KeyDependabotMonthly), bot)
	assert.Contains(t, out, "does not match any provided template")
	assert.Contains(t, summaryOf(out), "dependabot: regenerated\n")
}

func TestSetup_CargoMissingFallsBackToManifests(t *testing.T) {
	root := newRepo(t, "kvm")
	writeFile(t, root, "Cargo.toml", "[workspace]\nmembers = [\"kvm-bindings\", \"kvm-ioctls\"]\n")
	writeFile(t, root, "kvm-bindings/Cargo.toml", "[package]\nname = \"kvm-bindings\"\n")
	writeFile(t, root, "kvm-ioctls/Cargo.toml", "[package]\nname = \"kvm-ioctls\"\n")
	writeFile(t, root, ".platform", "x86_64\n")
	writeFile(t, root, ".github/dependabot.yml", template(t, templates.KeyDependabotWeekly))
	p := prompttest.New(prompttest.No, prompttest.No, prompttest.Yes, prompttest.Yes)

	_, err := runSetup(t, &cargoStub{t: t, notFound: true}, root, p)
	require.NoError(t, err)

	for _, name := range []string{"kvm-bindings", "kvm-ioctls"} {
		wf, ok := readFile(t, root, ".github/workflows/publish-"+name+".yml")
		require.True(t, ok, name)
		assert.Equal(t, publishWorkflow(t, name, name), wf)
	}
}

func TestSetup_InvalidManifestAborts(t *testing.T) {
	root := newRepo(t, "broken")
	writeFile(t, root, "Cargo.toml", "[package\n")
	writeFile(t, root, ".platform", "x86_64\n")
	writeFile(t, root, ".github/dependabot.yml", template(t, templates.KeyDependabotWeekly))

	out, err := runSetup(t, &cargoStub{t: t}, root, prompttest.New(prompttest.No, prompttest.No))
	assert.Equal(t, errors.EInvalidManifest, errors.GetCode(err))
	assert.NotContains(t, out, "repo_root:")
}

func TestSetup_UnreadableTemplatesAbortBeforeWriting(t *testing.T) {
	root := newRepo(t, "fresh")
	var stdout bytes.Buffer
	p := prompttest.New()

	err := Setup(context.Background(), &cargoStub{t: t}, fs.NewRealFS(), p, "/",
		SetupOpts{Repo: root, TemplatesDir: t.TempDir()}, &stdout)
	assert.Equal(t, errors.EUnreadableTemplate, errors.GetCode(err))
	assert.Empty(t, p.Questions)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetup_TemplatesDir(t *testing.T) {
	dir := t.TempDir()
	for _, key := range templates.Keys() {
		content := template(t, key)
		if key == templates.KeyDependabotWeekly {
			content = strings.Replace(content, "version: 2", "# installed copy\nversion: 2", 1)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(key)+".yml"), []byte(content), 0644))
	}
	root := newRepo(t, "fresh")
	var stdout bytes.Buffer
	p := prompttest.New(prompttest.No, prompttest.No, prompttest.No, prompttest.Choose(0))

	err := Setup(context.Background(), &cargoStub{t: t}, fs.NewRealFS(), p, "/",
		SetupOpts{Repo: root, TemplatesDir: dir}, &stdout)
	require.NoError(t, err)

	bot, _ := readFile(t, root, ".github/dependabot.yml")
	assert.True(t, strings.HasPrefix(bot, "# installed copy\n"), "bot config must come from the installed templates")
}

func TestSetup_PromptFailureAborts(t *testing.T) {
	root := newRepo(t, "fresh")

	_, err := runSetup(t, &cargoStub{t: t}, root, prompttest.New(prompttest.Yes))
	assert.Equal(t, errors.EPromptFailed, errors.GetCode(err))
	_, ok := readFile(t, root, ".platform")
	assert.False(t, ok)
}
