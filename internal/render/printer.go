// Package render formats operator-facing output: progress messages during a
// pass and the stable summaries printed at the end.
package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled messages to the operator. Styles collapse to plain
// text when the writer is not a color-capable terminal.
type Printer struct {
	w       io.Writer
	step    lipgloss.Style
	warn    lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a Printer whose color profile is detected from w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		step:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4D96FF")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB020")),
		success: r.NewStyle().Foreground(lipgloss.Color("#6BCB77")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// Step announces the artifact about to be reconciled.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.step.Render("==> "+fmt.Sprintf(format, args...)))
}

// Info prints a plain message.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, fmt.Sprintf(format, args...))
}

// Warn prints a message prefixed with "warning:".
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

// Success prints a completed-action message.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render(fmt.Sprintf(format, args...)))
}

// Quote prints file content indented, for showing what is currently on disk.
func (p *Printer) Quote(content string) {
	for _, line := range splitLines(content) {
		fmt.Fprintln(p.w, p.muted.Render("    "+line))
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
