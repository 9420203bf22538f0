package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	weekly := Variant{Label: "weekly", Content: []byte("interval: weekly\n")}
	monthly := Variant{Label: "monthly", Content: []byte("interval: monthly\n")}
	candidates := []Variant{weekly, monthly}

	tests := []struct {
		name    string
		current []byte
		present bool
		want    Classification
	}{
		{"absent", nil, false, Classification{State: Absent}},
		{"absent ignores stale bytes", []byte("interval: weekly\n"), false, Classification{State: Absent}},
		{"known weekly", []byte("interval: weekly\n"), true, Classification{State: Known, Label: "weekly"}},
		{"known monthly", []byte("interval: monthly\n"), true, Classification{State: Known, Label: "monthly"}},
		{"empty file is foreign", []byte{}, true, Classification{State: Foreign}},
		{"missing trailing newline is foreign", []byte("interval: weekly"), true, Classification{State: Foreign}},
		{"extra indentation is foreign", []byte("interval:  weekly\n"), true, Classification{State: Foreign}},
		{"crlf is foreign", []byte("interval: weekly\r\n"), true, Classification{State: Foreign}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.current, tt.present, candidates))
		})
	}
}

func TestClassify_NoCandidates(t *testing.T) {
	assert.Equal(t, Classification{State: Foreign}, Classify([]byte("x"), true, nil))
	assert.Equal(t, Classification{State: Absent}, Classify(nil, false, nil))
}

func TestClassify_FirstMatchWins(t *testing.T) {
	dup := []Variant{
		{Label: "first", Content: []byte("same")},
		{Label: "second", Content: []byte("same")},
	}
	assert.Equal(t, "first", Classify([]byte("same"), true, dup).Label)
}

func TestClassification_String(t *testing.T) {
	assert.Equal(t, "absent", Classification{State: Absent}.String())
	assert.Equal(t, "foreign", Classification{State: Foreign}.String())
	assert.Equal(t, "known:x86_64, aarch64", Classification{State: Known, Label: "x86_64, aarch64"}.String())
	assert.Equal(t, "invalid", State(42).String())
}
