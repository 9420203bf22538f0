package render

import (
	"fmt"
	"io"
	"strings"
)

// Field is one line of a stable key: value summary.
type Field struct {
	Key   string
	Value string
}

// WriteSummary writes fields as "key: value" lines, in order.
// Keys are stable; scripts may parse this output.
func WriteSummary(w io.Writer, fields []Field) {
	for _, f := range fields {
		fmt.Fprintf(w, "%s: %s\n", f.Key, f.Value)
	}
}

// StatusRow is one artifact in the status table.
type StatusRow struct {
	Artifact string
	Path     string
	State    string
}

// WriteStatusTable writes rows in whitespace-aligned columns with a header.
func WriteStatusTable(w io.Writer, rows []StatusRow) {
	artW, pathW := len("ARTIFACT"), len("PATH")
	for _, r := range rows {
		artW = max(artW, len(r.Artifact))
		pathW = max(pathW, len(r.Path))
	}

	writeRow := func(a, p, s string) {
		line := pad(a, artW) + "  " + pad(p, pathW) + "  " + s
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	writeRow("ARTIFACT", "PATH", "STATE")
	for _, r := range rows {
		writeRow(r.Artifact, r.Path, r.State)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
