// Package core provides deterministic naming for generated artifacts.
package core

import (
	"strings"
	"unicode"
)

// maxSlugLen matches the crates.io limit on package name length.
const maxSlugLen = 64

// Slugify converts a package name into a lowercase hyphen slug.
// - allowed: [a-z0-9-]
// - whitespace/underscore => hyphen
// - drop all other chars
// - collapse multiple hyphens
// - trim leading/trailing hyphens
// - truncate to 64 chars, then re-trim
// if the result is empty => "package"
//
// crates.io treats '-' and '_' as the same name, so folding them cannot make
// two publishable crates collide.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-':
			b.WriteRune('-')
		}
	}

	result := strings.Trim(collapseHyphens(b.String()), "-")
	if len(result) > maxSlugLen {
		result = strings.Trim(result[:maxSlugLen], "-")
	}
	if result == "" {
		return "package"
	}
	return result
}

// collapseHyphens replaces multiple consecutive hyphens with a single hyphen.
func collapseHyphens(s string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if !prevHyphen {
				b.WriteRune(r)
			}
			prevHyphen = true
			continue
		}
		b.WriteRune(r)
		prevHyphen = false
	}
	return b.String()
}
