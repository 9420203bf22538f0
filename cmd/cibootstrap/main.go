// Command cibootstrap sets up a Rust repository to consume the shared CI:
// platform list, dependabot configuration and crates.io publish workflows.
package main

import (
	"os"

	"github.com/NielsdaWheelz/cibootstrap/internal/cli"
	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
)

func main() {
	err := cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
