package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaianet/api/internal/wildlife"
	"gaianet/api/internal/wildlife/clip"
)

// fakeEngine scripts one response per stage, keyed by the stage's system
// instruction, and records every call it sees.
type fakeEngine struct {
	responses map[string]string
	errors    map[string]error
	calls     []engineCall
}

type engineCall struct {
	system string
	user   string
	image  []byte
}

func (f *fakeEngine) Name() string     { return "fake" }
func (f *fakeEngine) GetModel() string { return "fake-model" }

func (f *fakeEngine) Generate(_ context.Context, system, user string, image []byte) (string, error) {
	f.calls = append(f.calls, engineCall{system: system, user: user, image: image})
	if err, ok := f.errors[system]; ok {
		return "", err
	}
	resp, ok := f.responses[system]
	if !ok {
		return "", fmt.Errorf("no scripted response for system prompt %q", system)
	}
	return resp, nil
}

func (f *fakeEngine) callFor(system string) (engineCall, bool) {
	for _, c := range f.calls {
		if c.system == system {
			return c, true
		}
	}
	return engineCall{}, false
}

const detectionTwoSpecies = `{
  "species_detected": [
    {"common_name": "grey wolf", "scientific_name": "Canis lupus", "confidence": "high"},
    {"common_name": "red deer", "scientific_name": "Cervus elaphus", "confidence": "medium"}
  ],
  "count": 3,
  "habitat_type": "boreal forest",
  "observations": "pack at a kill site",
  "recommendation_summary": "Maintain corridor connectivity."
}`

const forecastJSON = `{
  "forecast": [
    {"month": "2024-06", "population": 54, "confidence": "medium"}
  ],
  "risk_level": "High",
  "reasoning": "steady decline over six months"
}`

const ecosystemJSON = `{
  "keystone_species": ["grey wolf"],
  "interaction_graph": {"grey wolf": ["preys on red deer"]},
  "health_score": 6.5,
  "collapse_risk": "Medium",
  "simulate": {
    "decline_30pct": {
      "focal_species": "grey wolf",
      "affected_species": {"red deer": 1.4}
    }
  }
}`

const recommendJSON = `{
  "recommended_actions": [
    {"action": "protect denning sites", "impact": 0.7, "urgency": "high", "cost_estimate": "medium"}
  ],
  "rationale": "keystone predator under pressure"
}`

func remoteEngine() *fakeEngine {
	return &fakeEngine{responses: map[string]string{
		wildlife.DetectTemplate.System():    detectionTwoSpecies,
		wildlife.ForecastTemplate.System():  forecastJSON,
		wildlife.EcosystemTemplate.System(): ecosystemJSON,
		wildlife.RecommendTemplate.System(): recommendJSON,
	}}
}

func remotePipeline(eng *fakeEngine) *Pipeline {
	return New(wildlife.Selection{Mode: wildlife.ModeRemote, Engine: eng})
}

func TestRun_RemoteFullPipeline(t *testing.T) {
	eng := remoteEngine()
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.Equal(t, wildlife.ModeRemote, run.Mode)
	assert.False(t, run.Degraded)
	assert.Equal(t, 4, run.PopulatedStages())

	require.True(t, run.Detection.OK())
	assert.Equal(t, "grey wolf", run.Detection.Value.SpeciesDetected[0].CommonName)

	require.True(t, run.Forecast.OK())
	assert.Equal(t, wildlife.RiskHigh, run.Forecast.Value.RiskLevel)

	require.True(t, run.Ecosystem.OK())
	assert.Equal(t, []string{"grey wolf"}, run.Ecosystem.Value.KeystoneSpecies)

	require.True(t, run.Recommendations.OK())
	require.Len(t, run.Recommendations.Value.RecommendedActions, 1)
	assert.Equal(t, "protect denning sites", run.Recommendations.Value.RecommendedActions[0].Action)

	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestRun_EcosystemSeesEverySpecies(t *testing.T) {
	eng := remoteEngine()
	remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg"), Context: "riparian corridor"})

	call, ok := eng.callFor(wildlife.EcosystemTemplate.System())
	require.True(t, ok)
	assert.Contains(t, call.user, "grey wolf, red deer")
	assert.Contains(t, call.user, "riparian corridor")
}

func TestRun_ForecastUsesFocalSpeciesAndHistory(t *testing.T) {
	eng := remoteEngine()
	history := []Sample{{Date: "2024-01-01", Count: 17}}
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg"), History: history})

	assert.Equal(t, history, run.History)

	call, ok := eng.callFor(wildlife.ForecastTemplate.System())
	require.True(t, ok)
	assert.Contains(t, call.user, "Species: grey wolf")
	assert.Contains(t, call.user, "2024-01-01,17")
}

func TestRun_RecommendationsReceiveEcosystemModel(t *testing.T) {
	eng := remoteEngine()
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})
	require.True(t, run.Recommendations.OK())

	call, ok := eng.callFor(wildlife.RecommendTemplate.System())
	require.True(t, ok)
	assert.Contains(t, call.user, "Species: grey wolf")
	assert.Contains(t, call.user, "Status: Maintain corridor connectivity.")
	assert.Contains(t, call.user, `"keystone_species"`)
}

func TestRun_EmptyHistoryFallsBackToSynthetic(t *testing.T) {
	eng := remoteEngine()
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	require.Len(t, run.History, 6)
	assert.Equal(t, 120, run.History[0].Count)
	assert.Equal(t, 60, run.History[5].Count)
}

func TestRun_NoSpeciesSkipsDownstream(t *testing.T) {
	eng := remoteEngine()
	eng.responses[wildlife.DetectTemplate.System()] = `{
  "species_detected": [],
  "count": 0,
  "habitat_type": "meadow",
  "observations": "no animals visible",
  "recommendation_summary": ""
}`
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.True(t, run.Detection.OK())
	assert.Equal(t, StatusSkipped, run.Forecast.Status)
	assert.Equal(t, StatusSkipped, run.Ecosystem.Status)
	assert.Equal(t, StatusSkipped, run.Recommendations.Status)
	assert.Equal(t, 1, run.PopulatedStages())
	assert.Len(t, eng.calls, 1) // only detection reached the model
}

func TestRun_DetectionParseFailureSkipsDownstream(t *testing.T) {
	eng := remoteEngine()
	eng.responses[wildlife.DetectTemplate.System()] = "I am unable to identify the animal."
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.Equal(t, StatusParseFailed, run.Detection.Status)
	assert.Equal(t, "I am unable to identify the animal.", run.Detection.Raw)
	assert.Equal(t, StatusSkipped, run.Forecast.Status)
	assert.Equal(t, StatusSkipped, run.Ecosystem.Status)
	assert.Equal(t, StatusSkipped, run.Recommendations.Status)
	assert.Equal(t, 0, run.PopulatedStages())
}

func TestRun_EcosystemParseFailureSkipsRecommendations(t *testing.T) {
	eng := remoteEngine()
	eng.responses[wildlife.EcosystemTemplate.System()] = "the web of life resists tabulation"
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.True(t, run.Detection.OK())
	assert.True(t, run.Forecast.OK())
	assert.Equal(t, StatusParseFailed, run.Ecosystem.Status)
	assert.Equal(t, "the web of life resists tabulation", run.Ecosystem.Raw)
	assert.Equal(t, StatusSkipped, run.Recommendations.Status)

	_, called := eng.callFor(wildlife.RecommendTemplate.System())
	assert.False(t, called)
}

func TestRun_ForecastTransportErrorDoesNotStopEcosystem(t *testing.T) {
	eng := remoteEngine()
	eng.errors = map[string]error{
		wildlife.ForecastTemplate.System(): fmt.Errorf("rpc error: deadline exceeded"),
	}
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.Equal(t, StatusTransportError, run.Forecast.Status)
	assert.Contains(t, run.Forecast.Err, "deadline exceeded")
	assert.True(t, run.Ecosystem.OK())
	assert.True(t, run.Recommendations.OK())
}

func TestRun_DetectionNormalized(t *testing.T) {
	eng := remoteEngine()
	eng.responses[wildlife.DetectTemplate.System()] = `{
  "species_detected": [
    {"common_name": "  grey wolf ", "scientific_name": "Canis lupus", "confidence": "pretty sure"},
    {"common_name": "", "scientific_name": "ignored", "confidence": "high"}
  ],
  "count": 0,
  "habitat_type": "forest",
  "observations": "",
  "recommendation_summary": ""
}`
	run := remotePipeline(eng).Run(context.Background(), Observation{Image: []byte("jpeg")})

	require.True(t, run.Detection.OK())
	det := run.Detection.Value
	require.Len(t, det.SpeciesDetected, 1)
	assert.Equal(t, "grey wolf", det.SpeciesDetected[0].CommonName)
	assert.Equal(t, wildlife.ConfidenceMedium, det.SpeciesDetected[0].Confidence)
	assert.Equal(t, 1, det.Count)
}

// clipSidecar fakes the local classifier's load and classify endpoints.
func clipSidecar(t *testing.T, topLabel string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/load", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, clip.DefaultModel, body.Model)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/classify", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ImageB64 string   `json:"image_b64"`
			Labels   []string `json:"labels"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, wildlife.FallbackLabels, body.Labels)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predictions": []map[string]any{
				{"label": topLabel, "score": 0.81},
				{"label": "deer", "score": 0.11},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_DegradedLocalClassifier(t *testing.T) {
	srv := clipSidecar(t, "wolf")
	p := New(wildlife.Selection{Mode: wildlife.ModeLocal, Classifier: clip.New(srv.URL)})

	run := p.Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.True(t, run.Degraded)
	assert.Equal(t, wildlife.ModeLocal, run.Mode)
	assert.Equal(t, 1, run.PopulatedStages())

	require.True(t, run.Detection.OK())
	det := run.Detection.Value
	require.Len(t, det.SpeciesDetected, 1)
	assert.Equal(t, "wolf", det.SpeciesDetected[0].CommonName)
	assert.Equal(t, wildlife.ConfidenceMedium, det.SpeciesDetected[0].Confidence)
	assert.Contains(t, run.Detection.Raw, "0.81")

	for _, st := range []Status{run.Forecast.Status, run.Ecosystem.Status, run.Recommendations.Status} {
		assert.Equal(t, StatusUnavailable, st)
	}
}

func TestRun_DegradedSidecarDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // sidecar not reachable at all

	p := New(wildlife.Selection{Mode: wildlife.ModeLocal, Classifier: clip.New(srv.URL)})
	run := p.Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.Equal(t, StatusUnavailable, run.Detection.Status)
	assert.Equal(t, 0, run.PopulatedStages())
}

func TestRun_NothingConfigured(t *testing.T) {
	p := New(wildlife.Selection{Mode: wildlife.ModeNone})
	run := p.Run(context.Background(), Observation{Image: []byte("jpeg")})

	assert.True(t, run.Degraded)
	assert.Equal(t, StatusUnavailable, run.Detection.Status)
	assert.Equal(t, StatusUnavailable, run.Forecast.Status)
	assert.Equal(t, StatusUnavailable, run.Ecosystem.Status)
	assert.Equal(t, StatusUnavailable, run.Recommendations.Status)
	assert.Equal(t, 0, run.PopulatedStages())
}

func TestStore(t *testing.T) {
	s := NewStore()

	_, found := s.Get("s1")
	assert.False(t, found)

	run := &Run{Mode: wildlife.ModeRemote, StartedAt: time.Now()}
	s.Put("s1", run)

	got, found := s.Get("s1")
	require.True(t, found)
	assert.Same(t, run, got)

	s.Delete("s1")
	_, found = s.Get("s1")
	assert.False(t, found)
}
