// Package reconcile decides, for each managed artifact, whether to leave it
// alone, regenerate it, or ask before overwriting it.
package reconcile

import "bytes"

// State is where an artifact stands relative to its known variants.
type State int

const (
	// Absent means the file does not exist.
	Absent State = iota
	// Known means the file is byte-identical to one of the known variants.
	Known
	// Foreign means the file exists but matches no known variant.
	Foreign
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Known:
		return "known"
	case Foreign:
		return "foreign"
	}
	return "invalid"
}

// Variant is one known-good content an artifact may hold.
type Variant struct {
	Label   string
	Content []byte
}

// Classification is the result of Classify. Label is set only for Known.
type Classification struct {
	State State
	Label string
}

// String renders "absent", "foreign", or "known:<label>".
func (c Classification) String() string {
	if c.State == Known {
		return "known:" + c.Label
	}
	return c.State.String()
}

// Classify compares current against each candidate byte for byte. No
// whitespace or YAML normalization is applied, so a reformatted file is
// Foreign. The first matching candidate wins.
func Classify(current []byte, present bool, candidates []Variant) Classification {
	if !present {
		return Classification{State: Absent}
	}
	for _, c := range candidates {
		if bytes.Equal(current, c.Content) {
			return Classification{State: Known, Label: c.Label}
		}
	}
	return Classification{State: Foreign}
}
