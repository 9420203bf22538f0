// Package prompt asks the operator yes/no and single-choice questions.
// It carries no knowledge of what is being configured.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/NielsdaWheelz/cibootstrap/internal/errors"
)

// Prompter is the operator-facing question interface.
type Prompter interface {
	// Confirm asks a yes/no question. Empty input means yes.
	Confirm(question string) (bool, error)
	// ChooseOne presents options plus a trailing cancel entry. It returns the
	// index of the chosen option, or ok=false when cancel is picked.
	ChooseOne(question string, options []string, cancel string) (index int, ok bool, err error)
}

// Terminal is a line-oriented Prompter over a reader and writer.
type Terminal struct {
	in   *bufio.Reader
	out  io.Writer
	echo bool
}

// NewTerminal creates a Terminal. When in is not an interactive terminal
// (piped answers) each answer is echoed to out so transcripts stay readable.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:   bufio.NewReader(in),
		out:  out,
		echo: !isTerminal(in),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Confirm asks question with a [Y/n] suffix until a recognised answer is given.
func (t *Terminal) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(t.out, "%s [Y/n] ", question)
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "please answer y or n")
	}
}

// ChooseOne prints a numbered menu and reads a selection until it is valid.
func (t *Terminal) ChooseOne(question string, options []string, cancel string) (int, bool, error) {
	for {
		fmt.Fprintln(t.out, question)
		for i, opt := range options {
			fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprintf(t.out, "  %d) %s\n", len(options)+1, cancel)
		fmt.Fprint(t.out, "#? ")

		answer, err := t.readLine()
		if err != nil {
			return 0, false, err
		}
		if idx, ok := matchOption(answer, options, cancel); ok {
			if idx == len(options) {
				return 0, false, nil
			}
			return idx, true, nil
		}
		fmt.Fprintf(t.out, "invalid choice %q\n", answer)
	}
}

// matchOption resolves a 1-based number or an option label (case-insensitive)
// to a 0-based index; len(options) stands for cancel.
func matchOption(answer string, options []string, cancel string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options)+1 {
			return n - 1, true
		}
		return 0, false
	}
	for i, opt := range options {
		if strings.EqualFold(answer, opt) {
			return i, true
		}
	}
	if answer != "" && strings.EqualFold(answer, cancel) {
		return len(options), true
	}
	return 0, false
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(t.out)
		if err == io.EOF {
			return "", errors.New(errors.EPromptFailed, "input closed before an answer was given")
		}
		return "", errors.Wrap(errors.EPromptFailed, "failed to read answer", err)
	}
	answer := strings.TrimSpace(line)
	if t.echo {
		fmt.Fprintln(t.out, answer)
	}
	return answer, nil
}

// AssumeYes answers every confirmation with yes and picks the first option.
type AssumeYes struct {
	out io.Writer
}

// NewAssumeYes creates an AssumeYes that records each question and answer on out.
func NewAssumeYes(out io.Writer) *AssumeYes {
	return &AssumeYes{out: out}
}

func (a *AssumeYes) Confirm(question string) (bool, error) {
	fmt.Fprintf(a.out, "%s [Y/n] y (assumed)\n", question)
	return true, nil
}

func (a *AssumeYes) ChooseOne(question string, options []string, cancel string) (int, bool, error) {
	if len(options) == 0 {
		fmt.Fprintf(a.out, "%s %s (assumed)\n", question, cancel)
		return 0, false, nil
	}
	fmt.Fprintf(a.out, "%s %s (assumed)\n", question, options[0])
	return 0, true, nil
}
