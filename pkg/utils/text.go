package utils

import (
	"github.com/aryann/difflib"
)

type Delta struct {
	Op   int // -1 removed, 0 kept, +1 added
	Text string
}

// DiffStrings aligns two ordered lists and reports what was kept, removed
// and added going from a to b.
func DiffStrings(a, b []string) []Delta {
	recs := difflib.Diff(a, b)
	out := make([]Delta, 0, len(recs))
	for _, r := range recs {
		switch r.Delta {
		case difflib.Common:
			out = append(out, Delta{Op: 0, Text: r.Payload})
		case difflib.LeftOnly:
			out = append(out, Delta{Op: -1, Text: r.Payload})
		case difflib.RightOnly:
			out = append(out, Delta{Op: +1, Text: r.Payload})
		}
	}
	return out
}

// Changes lists only the removed ("-x") and added ("+x") entries.
func Changes(a, b []string) []string {
	var out []string
	for _, d := range DiffStrings(a, b) {
		switch d.Op {
		case -1:
			out = append(out, "-"+d.Text)
		case +1:
			out = append(out, "+"+d.Text)
		}
	}
	return out
}
