// Package cli handles command-line parsing and dispatch for cibootstrap.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/NielsdaWheelz/cibootstrap/internal/commands"
	"github.com/NielsdaWheelz/cibootstrap/internal/config"
	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
	"github.com/NielsdaWheelz/cibootstrap/internal/exec"
	"github.com/NielsdaWheelz/cibootstrap/internal/fs"
	"github.com/NielsdaWheelz/cibootstrap/internal/paths"
	"github.com/NielsdaWheelz/cibootstrap/internal/prompt"
	"github.com/NielsdaWheelz/cibootstrap/internal/version"
)

const usageText = `cibootstrap - set up a Rust repository for the shared CI

usage: cibootstrap <command> [options]

commands:
  setup       configure platforms, dependabot and publish workflows
  status      show the state of every managed file

options:
  -h, --help      show this help
  -v, --version   show version

run 'cibootstrap <command> --help' for command-specific help.
`

const setupUsageText = `usage: cibootstrap setup [options]

configure the platform list (.platform), the dependabot configuration
(.github/dependabot.yml) and the crates.io publish workflows
(.github/workflows/publish*.yml), asking before every change.

options:
  --repo <dir>      repository root (default: git top-level of the cwd)
  --yes             answer yes to every question and pick the first option
  --config <file>   config file (default: <config dir>/cibootstrap/config.yaml)
  --verbose         log diagnostics to stderr
  -h, --help        show this help

examples:
  cibootstrap setup
  cibootstrap setup --repo ../vm-memory
  printf 'y\nn\nn\n1\ny\n' | cibootstrap setup
`

const statusUsageText = `usage: cibootstrap status [options]

show whether each managed file is absent, matches a provided template
(known:<variant>) or was edited by hand (foreign). never prompts or writes.

options:
  --repo <dir>      repository root (default: git top-level of the cwd)
  --config <file>   config file (default: <config dir>/cibootstrap/config.yaml)
  --verbose         log diagnostics to stderr
  -h, --help        show this help
`

// Run parses arguments and dispatches to the appropriate subcommand.
// Returns an error if the command fails; the caller should print the error and exit.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usageText)
		return errors.New(errors.EUsage, "no command specified")
	}

	cmd := args[0]
	cmdArgs := args[1:]

	// Handle global flags
	if cmd == "-h" || cmd == "--help" {
		fmt.Fprint(stdout, usageText)
		return nil
	}
	if cmd == "-v" || cmd == "--version" {
		fmt.Fprintf(stdout, "cibootstrap %s\n", version.Version)
		return nil
	}

	switch cmd {
	case "setup":
		return runSetup(cmdArgs, stdin, stdout, stderr)
	case "status":
		return runStatus(cmdArgs, stdout, stderr)
	default:
		fmt.Fprint(stdout, usageText)
		return errors.New(errors.EUsage, fmt.Sprintf("unknown command: %s", cmd))
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	repo       string
	configPath string
	verbose    bool
}

func (c *commonFlags) register(flagSet *flag.FlagSet) {
	flagSet.StringVar(&c.repo, "repo", "", "repository root")
	flagSet.StringVar(&c.configPath, "config", "", "config file")
	flagSet.BoolVar(&c.verbose, "verbose", false, "log diagnostics to stderr")
}

// wantsHelp reports whether -h or --help appears before any "--" terminator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

func parseFlags(flagSet *flag.FlagSet, args []string) error {
	if err := flagSet.Parse(args); err != nil {
		return errors.Wrap(errors.EUsage, "invalid flags", err)
	}
	if flagSet.NArg() > 0 {
		return errors.New(errors.EUsage, "unexpected argument: "+flagSet.Arg(0))
	}
	return nil
}

func runSetup(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("setup", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var common commonFlags
	common.register(flagSet)
	yes := flagSet.Bool("yes", false, "answer yes to every question")

	// Handle help manually to return nil (exit 0)
	if wantsHelp(args) {
		fmt.Fprint(stdout, setupUsageText)
		return nil
	}
	if err := parseFlags(flagSet, args); err != nil {
		return err
	}

	cwd, cfg, err := prepare(common, stderr)
	if err != nil {
		return err
	}

	var prompter prompt.Prompter = prompt.NewTerminal(stdin, stdout)
	if *yes {
		prompter = prompt.NewAssumeYes(stdout)
	}

	opts := commands.SetupOpts{
		Repo:         common.repo,
		CargoBin:     cfg.Cargo,
		TemplatesDir: cfg.TemplatesDir,
	}
	return commands.Setup(context.Background(), exec.NewRealRunner(), fs.NewRealFS(), prompter, cwd, opts, stdout)
}

func runStatus(args []string, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet("status", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var common commonFlags
	common.register(flagSet)

	// Handle help manually to return nil (exit 0)
	if wantsHelp(args) {
		fmt.Fprint(stdout, statusUsageText)
		return nil
	}
	if err := parseFlags(flagSet, args); err != nil {
		return err
	}

	cwd, cfg, err := prepare(common, stderr)
	if err != nil {
		return err
	}

	opts := commands.StatusOpts{
		Repo:         common.repo,
		CargoBin:     cfg.Cargo,
		TemplatesDir: cfg.TemplatesDir,
	}
	return commands.Status(context.Background(), exec.NewRealRunner(), fs.NewRealFS(), cwd, opts, stdout)
}

// prepare resolves the working directory, loads configuration and installs
// the default logger.
func prepare(common commonFlags, stderr io.Writer) (string, config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", config.Config{}, errors.Wrap(errors.ENoRepo, "failed to get working directory", err)
	}

	cfg, err := loadConfig(common.configPath)
	if err != nil {
		return "", config.Config{}, err
	}
	if common.verbose {
		cfg.Log.Level = "debug"
	}
	initLogger(cfg.Log, stderr)
	slog.Debug("loaded config", "source", cfg.Source, "cargo", cfg.Cargo, "templates_dir", cfg.TemplatesDir)

	return cwd, cfg, nil
}

func loadConfig(explicit string) (config.Config, error) {
	if explicit != "" {
		return config.Load(fs.NewRealFS(), explicit, true, osEnv{})
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config.Config{}, errors.Wrap(errors.EInternal, "failed to get home directory", err)
	}
	dirs := paths.ResolveDirs(osEnv{}, homeDir)
	return config.Load(fs.NewRealFS(), config.DefaultPath(dirs), false, osEnv{})
}

// initLogger sends diagnostics to stderr; stdout carries the operator dialogue.
func initLogger(logCfg config.LogConfig, stderr io.Writer) {
	opts := &slog.HandlerOptions{Level: logCfg.SlogLevel()}

	var handler slog.Handler
	switch strings.ToLower(logCfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(stderr, opts)
	default:
		handler = slog.NewTextHandler(stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// osEnv implements paths.Env using os.Getenv.
type osEnv struct{}

func (osEnv) Get(key string) string {
	return os.Getenv(key)
}
