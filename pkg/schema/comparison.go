package schema

// Comparison holds the three answers of a strengths comparison.
type Comparison struct {
	Conflicts     string `json:"conflicts" jsonschema_description:"Potential conflicts between the two people and how their strengths could cause tension"`
	Collaboration string `json:"collaboration" jsonschema_description:"How the two people can work well together and which strengths complement each other"`
	Communication string `json:"communication" jsonschema_description:"How the first person should speak to the second person to be most effective"`
}

// Complete reports whether every section has text.
func (c Comparison) Complete() bool {
	return c.Conflicts != "" && c.Collaboration != "" && c.Communication != ""
}
