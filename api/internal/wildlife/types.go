package wildlife

// Confidence of a single species identification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RiskLevel grades both population risk and ecosystem collapse risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

type SpeciesRecord struct {
	CommonName     string     `json:"common_name"`
	ScientificName string     `json:"scientific_name"`
	Confidence     Confidence `json:"confidence"`
}

// DetectionResult is the detection stage output. Downstream stages treat
// SpeciesDetected[0] as the focal species, so callers must check the slice is
// non-empty before reading it.
type DetectionResult struct {
	SpeciesDetected       []SpeciesRecord `json:"species_detected"`
	Count                 int             `json:"count"`
	HabitatType           string          `json:"habitat_type"`
	Observations          string          `json:"observations"`
	RecommendationSummary string          `json:"recommendation_summary"`
}

// SpeciesNames lists the detected common names in order.
func (d DetectionResult) SpeciesNames() []string {
	names := make([]string, 0, len(d.SpeciesDetected))
	for _, s := range d.SpeciesDetected {
		names = append(names, s.CommonName)
	}
	return names
}

type ForecastPoint struct {
	Month      string     `json:"month"`
	Population float64    `json:"population"`
	Confidence Confidence `json:"confidence"`
}

type ForecastResult struct {
	Forecast  []ForecastPoint `json:"forecast"`
	RiskLevel RiskLevel       `json:"risk_level"`
	Reasoning string          `json:"reasoning"`
}

// Simulation describes one hypothetical perturbation: a decline of the focal
// species and the numeric impact on each affected species.
type Simulation struct {
	FocalSpecies    string             `json:"focal_species"`
	AffectedSpecies map[string]float64 `json:"affected_species"`
}

type SimulationSet struct {
	Decline30Pct Simulation `json:"decline_30pct"`
}

type EcosystemModel struct {
	KeystoneSpecies  []string            `json:"keystone_species"`
	InteractionGraph map[string][]string `json:"interaction_graph"`
	HealthScore      float64             `json:"health_score"`
	CollapseRisk     RiskLevel           `json:"collapse_risk"`
	Simulate         SimulationSet       `json:"simulate"`
}

type Action struct {
	Action       string  `json:"action"`
	Impact       float64 `json:"impact"`
	Urgency      string  `json:"urgency"`
	CostEstimate string  `json:"cost_estimate"`
}

type RecommendationSet struct {
	RecommendedActions []Action `json:"recommended_actions"`
	Rationale          string   `json:"rationale"`
}

// FallbackLabels is the closed taxonomy for the local zero-shot classifier.
var FallbackLabels = []string{"bear", "lion", "tiger", "wolf", "elephant", "deer"}
