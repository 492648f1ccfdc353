package wildlife

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateSystem(t *testing.T) {
	sys := DetectTemplate.System()
	assert.True(t, strings.HasPrefix(sys, DetectTemplate.Role))
	assert.Contains(t, sys, "Return ONLY JSON in this structure:")
	assert.Contains(t, sys, DetectTemplate.Schema)
}

func TestTemplateUser(t *testing.T) {
	user := ForecastTemplate.User(
		Field{Name: "Species", Value: "grey wolf"},
		Field{Name: "Historical monthly counts", Value: "\ndate,count\n2024-01-01,42"},
	)
	assert.Equal(t, "Species: grey wolf\nHistorical monthly counts: \ndate,count\n2024-01-01,42", user)
}

func TestTemplateUser_ValueWithBracesLeavesSchemaAlone(t *testing.T) {
	// Caller input full of braces must not leak into the schema text.
	sys := EcosystemTemplate.System()
	user := EcosystemTemplate.User(Field{Name: "Context", Value: `{"rogue": "}{"}`})

	assert.Contains(t, sys, EcosystemTemplate.Schema)
	assert.Contains(t, user, `{"rogue": "}{"}`)
	assert.Equal(t, EcosystemTemplate.System(), sys) // rendering is pure
}

// Every schema block must itself be well-formed enough that the first '{' and
// last '}' bracket the whole structure.
func TestSchemasAreBraceBalanced(t *testing.T) {
	for name, tpl := range map[string]Template{
		"detect":    DetectTemplate,
		"forecast":  ForecastTemplate,
		"ecosystem": EcosystemTemplate,
		"recommend": RecommendTemplate,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, strings.Count(tpl.Schema, "{"), strings.Count(tpl.Schema, "}"))
			assert.True(t, strings.HasPrefix(tpl.Schema, "{"))
			assert.True(t, strings.HasSuffix(tpl.Schema, "}"))
		})
	}
}

func TestDetectionResultDecodesFromSchemaShape(t *testing.T) {
	var det DetectionResult
	require.NoError(t, json.Unmarshal([]byte(`{
  "species_detected": [
    {"common_name": "grey wolf", "scientific_name": "Canis lupus", "confidence": "high"}
  ],
  "count": 2,
  "habitat_type": "boreal forest",
  "observations": "tracks in snow",
  "recommendation_summary": "Keep monitoring."
}`), &det))

	require.Len(t, det.SpeciesDetected, 1)
	assert.Equal(t, "grey wolf", det.SpeciesDetected[0].CommonName)
	assert.Equal(t, ConfidenceHigh, det.SpeciesDetected[0].Confidence)
	assert.Equal(t, []string{"grey wolf"}, det.SpeciesNames())
}

func TestEcosystemModelDecodesFromSchemaShape(t *testing.T) {
	var eco EcosystemModel
	require.NoError(t, json.Unmarshal([]byte(`{
  "keystone_species": ["grey wolf"],
  "interaction_graph": {"grey wolf": ["preys on red deer"]},
  "health_score": 7.2,
  "collapse_risk": "Medium",
  "simulate": {
    "decline_30pct": {
      "focal_species": "grey wolf",
      "affected_species": {"red deer": 1.4}
    }
  }
}`), &eco))

	assert.Equal(t, RiskMedium, eco.CollapseRisk)
	assert.Equal(t, "grey wolf", eco.Simulate.Decline30Pct.FocalSpecies)
	assert.Equal(t, 1.4, eco.Simulate.Decline30Pct.AffectedSpecies["red deer"])
}
