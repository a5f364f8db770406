package strengths

import "strings"

// Size is the number of strengths recorded per person.
const Size = 5

// Placeholder is the value of a selector slot that has not been filled in.
const Placeholder = "Select a strength..."

// Catalog holds the 34 CliftonStrengths themes in alphabetical order.
var Catalog = []string{
	"Achiever",
	"Activator",
	"Adaptability",
	"Analytical",
	"Arranger",
	"Belief",
	"Command",
	"Communication",
	"Competition",
	"Connectedness",
	"Consistency",
	"Context",
	"Deliberative",
	"Developer",
	"Discipline",
	"Empathy",
	"Focus",
	"Futuristic",
	"Harmony",
	"Ideation",
	"Includer",
	"Individualization",
	"Input",
	"Intellection",
	"Learner",
	"Maximizer",
	"Positivity",
	"Relator",
	"Responsibility",
	"Restorative",
	"Self-Assurance",
	"Significance",
	"Strategic",
	"Woo",
}

var catalogSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Catalog))
	for _, s := range Catalog {
		m[s] = struct{}{}
	}
	return m
}()

// Count returns the number of themes in the catalog.
func Count() int { return len(Catalog) }

// Contains reports whether name is one of the catalog themes.
func Contains(name string) bool {
	_, ok := catalogSet[name]
	return ok
}

// Filled returns the selected strengths without placeholder or empty slots.
func Filled(selected []string) []string {
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if unfilled(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Format joins strengths the way they appear in prompts and summaries.
func Format(selected []string) string {
	return strings.Join(selected, ", ")
}

func unfilled(s string) bool {
	return s == "" || s == Placeholder
}

// Profile is a person's name with their top strengths in ranked order.
type Profile struct {
	Name      string   `json:"name"`
	Strengths []string `json:"strengths"`
}
