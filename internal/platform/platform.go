// Package platform models the set of architectures a repository's CI runs on.
package platform

import (
	"fmt"
	"strings"
)

// ManifestPath is the platform list location relative to the repo root.
const ManifestPath = ".platform"

// Supported lists the platform identifiers CI can target, in canonical order.
var Supported = []string{"x86_64", "aarch64", "riscv64"}

// IsSupported reports whether id is one of Supported.
func IsSupported(id string) bool {
	for _, s := range Supported {
		if s == id {
			return true
		}
	}
	return false
}

// Set is an ordered, duplicate-free selection of supported platforms.
// Members are always kept in Supported order.
type Set struct {
	ids []string
}

// NewSet builds a Set from ids. Unsupported and duplicate ids are rejected.
func NewSet(ids ...string) (Set, error) {
	var s Set
	for _, id := range ids {
		if err := s.Add(id); err != nil {
			return Set{}, err
		}
	}
	return s, nil
}

// Add inserts id in canonical position.
func (s *Set) Add(id string) error {
	if !IsSupported(id) {
		return fmt.Errorf("unsupported platform %q (supported: %s)", id, strings.Join(Supported, ", "))
	}
	if s.Contains(id) {
		return fmt.Errorf("duplicate platform %q", id)
	}
	next := make([]string, 0, len(s.ids)+1)
	for _, sup := range Supported {
		if sup == id || s.Contains(sup) {
			next = append(next, sup)
		}
	}
	s.ids = next
	return nil
}

// Contains reports whether id is a member.
func (s Set) Contains(id string) bool {
	for _, m := range s.ids {
		if m == id {
			return true
		}
	}
	return false
}

// IDs returns the members in canonical order.
func (s Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.ids)
}

// String joins the members with ", ".
func (s Set) String() string {
	return strings.Join(s.ids, ", ")
}

// Bytes renders the manifest file: one identifier per line, no header.
func (s Set) Bytes() []byte {
	var b strings.Builder
	for _, id := range s.ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// AllSets enumerates every non-empty Set, ordered by the bitmask over
// Supported. These are exactly the manifests the tool can generate.
func AllSets() []Set {
	n := len(Supported)
	sets := make([]Set, 0, 1<<n-1)
	for mask := 1; mask < 1<<n; mask++ {
		var s Set
		for i, id := range Supported {
			if mask&(1<<i) != 0 {
				s.ids = append(s.ids, id)
			}
		}
		sets = append(sets, s)
	}
	return sets
}
