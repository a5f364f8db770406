package prompts

import (
	"fmt"

	"clifton/pkg/strengths"
)

// System is the instruction sent with every comparison request.
const System = "You are an expert in CliftonStrengths assessment and workplace dynamics. " +
	"Provide insightful, practical, and empathetic advice about how people with " +
	"different strength profiles can work together effectively."

// Structured asks for all three sections in one JSON object.
const Structured = `Answer all three questions below in a single JSON object with the keys "conflicts", "collaboration" and "communication". Each value is the full answer to that question as markdown text. Output only the JSON object.`

// Prompts are the three user prompts of a comparison.
type Prompts struct {
	Conflicts     string
	Collaboration string
	Communication string
}

// All returns the prompts in result order.
func (p Prompts) All() [3]string {
	return [3]string{p.Conflicts, p.Collaboration, p.Communication}
}

// Build interpolates two profiles into the comparison prompts.
func Build(a, b strengths.Profile) Prompts {
	context := fmt.Sprintf("%s's top 5 CliftonStrengths are: %s. %s's top 5 CliftonStrengths are: %s.",
		a.Name, strengths.Format(a.Strengths), b.Name, strengths.Format(b.Strengths))

	return Prompts{
		Conflicts: context + "\n\n" + fmt.Sprintf(
			"Based on these CliftonStrengths profiles, what potential conflicts might arise between %s and %s? "+
				"Please provide specific insights about how their different strengths might lead to misunderstandings or tension.",
			a.Name, b.Name),
		Collaboration: context + "\n\n" + fmt.Sprintf(
			"How can %s and %s work well together? What are the complementary aspects of their strengths? "+
				"Please provide specific strategies for effective collaboration.",
			a.Name, b.Name),
		Communication: context + "\n\n" + fmt.Sprintf(
			"How should %s speak to %s to be most effective? What communication style, tone, and approach would resonate best with "+
				"%s based on their CliftonStrengths?",
			a.Name, b.Name, b.Name),
	}
}

// Combined joins the three prompts for the single-request mode.
func Combined(p Prompts) string {
	return Structured +
		"\n\n1. Conflicts:\n" + p.Conflicts +
		"\n\n2. Collaboration:\n" + p.Collaboration +
		"\n\n3. Communication:\n" + p.Communication
}
