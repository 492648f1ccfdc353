package wildlife

import "strings"

// Template is one stage's instruction: a role line and a literal JSON schema
// block. Caller-supplied values never get spliced into the schema text —
// they travel as named Fields in the user message, so the schema's braces stay
// untouched.
type Template struct {
	Role   string
	Schema string
}

// System renders the fixed part of the instruction: role, then the output
// contract with the schema verbatim.
func (t Template) System() string {
	var b strings.Builder
	b.WriteString(t.Role)
	b.WriteString("\nReturn ONLY JSON in this structure:\n\n")
	b.WriteString(t.Schema)
	return b.String()
}

// Field is a named input slot for a stage.
type Field struct {
	Name  string
	Value string
}

// User renders the variable part of the instruction as labeled lines.
func (t Template) User(fields ...Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}

var DetectTemplate = Template{
	Role: "You are a wildlife biologist. Analyze the image.",
	Schema: `{
  "species_detected": [
    {"common_name": "...", "scientific_name": "...", "confidence": "high|medium|low"}
  ],
  "count": 0,
  "habitat_type": "...",
  "observations": "...",
  "recommendation_summary": "..."
}`,
}

var ForecastTemplate = Template{
	Role: "You are an ecologist. Forecast the population of the given species from its historical monthly counts.",
	Schema: `{
  "forecast": [
    {"month": "...", "population": 0, "confidence": "high|medium|low"}
  ],
  "risk_level": "Low|Medium|High|Critical",
  "reasoning": "..."
}`,
}

var EcosystemTemplate = Template{
	Role: "You are an ecosystem modeler. Model the interactions between the given species.",
	Schema: `{
  "keystone_species": ["..."],
  "interaction_graph": {
    "species": ["interaction1", "interaction2"]
  },
  "health_score": 0,
  "collapse_risk": "Low|Medium|High|Critical",
  "simulate": {
    "decline_30pct": {
      "focal_species": "...",
      "affected_species": {
        "speciesA": 0,
        "speciesB": 0
      }
    }
  }
}`,
}

var RecommendTemplate = Template{
	Role: "You are a conservation planner. Propose interventions for the given species and ecosystem.",
	Schema: `{
  "recommended_actions": [
    {"action": "...", "impact": 0.0, "urgency": "...", "cost_estimate": "..."}
  ],
  "rationale": "..."
}`,
}
