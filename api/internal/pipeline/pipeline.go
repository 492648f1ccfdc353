// Package pipeline sequences the four inference stages over one observation:
// detection, then forecast and ecosystem modeling off the detection output,
// then recommendations off the ecosystem model. Stages run strictly in that
// order; a stage failure is recorded against the stage and the run continues.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"gaianet/api/internal/util"
	"gaianet/api/internal/wildlife"
	"gaianet/api/internal/wildlife/clip"
)

// Observation is one submitted wildlife observation. Image must already be
// JPEG (util.ReencodeJPEG); History may be empty, in which case a synthetic
// series is used.
type Observation struct {
	Image   []byte
	History []Sample
	Context string // optional free text for ecosystem modeling
}

// Run is the state of one pipeline execution. It is created per run and owned
// by the pipeline until Run returns; afterwards it is read-only.
type Run struct {
	Mode     wildlife.Mode `json:"mode"`
	Degraded bool          `json:"degraded"`
	History  []Sample      `json:"history"`

	Detection       Outcome[wildlife.DetectionResult]   `json:"detection"`
	Forecast        Outcome[wildlife.ForecastResult]    `json:"forecast"`
	Ecosystem       Outcome[wildlife.EcosystemModel]    `json:"ecosystem"`
	Recommendations Outcome[wildlife.RecommendationSet] `json:"recommendations"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// PopulatedStages counts stages that produced a structured value.
func (r *Run) PopulatedStages() int {
	n := 0
	if r.Detection.OK() {
		n++
	}
	if r.Forecast.OK() {
		n++
	}
	if r.Ecosystem.OK() {
		n++
	}
	if r.Recommendations.OK() {
		n++
	}
	return n
}

type Pipeline struct {
	sel wildlife.Selection
	now func() time.Time
}

func New(sel wildlife.Selection) *Pipeline {
	return &Pipeline{sel: sel, now: time.Now}
}

// Run executes the whole pipeline against one observation. It never returns a
// fault: every failure lands in a stage outcome.
func (p *Pipeline) Run(ctx context.Context, obs Observation) *Run {
	run := &Run{
		Mode:      p.sel.Mode,
		Degraded:  p.sel.Mode != wildlife.ModeRemote,
		StartedAt: p.now(),
	}
	if run.Degraded {
		log.Printf("pipeline: degraded mode (%s), only detection will run", p.sel.Mode)
	}

	run.Detection = p.detect(ctx, obs.Image)

	run.History = obs.History
	if len(run.History) == 0 {
		run.History = SyntheticHistory(p.now())
	}

	if run.Degraded {
		const reason = "remote model not configured; stage has no fallback"
		run.Forecast = unavailable[wildlife.ForecastResult](reason)
		run.Ecosystem = unavailable[wildlife.EcosystemModel](reason)
		run.Recommendations = unavailable[wildlife.RecommendationSet](reason)
		run.FinishedAt = p.now()
		return run
	}

	det := run.Detection.Value
	if det == nil || len(det.SpeciesDetected) == 0 {
		reason := "no species detected"
		if det == nil {
			reason = "detection produced no structured result"
		}
		run.Forecast = skipped[wildlife.ForecastResult](reason)
		run.Ecosystem = skipped[wildlife.EcosystemModel](reason)
		run.Recommendations = skipped[wildlife.RecommendationSet](reason)
		run.FinishedAt = p.now()
		return run
	}
	focal := det.SpeciesDetected[0].CommonName

	run.Forecast = p.forecast(ctx, focal, run.History)
	run.Ecosystem = p.ecosystem(ctx, det.SpeciesNames(), obs.Context)

	// Recommendations wants the ecosystem model serialized back into its
	// prompt, so modeling must have finished (well or badly) first.
	if run.Ecosystem.Value == nil {
		run.Recommendations = skipped[wildlife.RecommendationSet]("no ecosystem model")
	} else {
		run.Recommendations = p.recommend(ctx, focal, det.RecommendationSummary, run.Ecosystem.Value)
	}

	run.FinishedAt = p.now()
	return run
}

func (p *Pipeline) detect(ctx context.Context, image []byte) Outcome[wildlife.DetectionResult] {
	switch p.sel.Mode {
	case wildlife.ModeRemote:
		t := wildlife.DetectTemplate
		raw, err := p.sel.Engine.Generate(ctx, t.System(), "Identify the species in the attached image.", image)
		if err != nil {
			return transportError[wildlife.DetectionResult](err)
		}
		var det wildlife.DetectionResult
		if err := util.ExtractInto(raw, &det); err != nil {
			return parseFailed[wildlife.DetectionResult](raw)
		}
		wildlife.NormalizeDetection(&det)
		return ok(det, raw)

	case wildlife.ModeLocal:
		preds, err := p.sel.Classifier.Classify(ctx, image, wildlife.FallbackLabels)
		if err != nil {
			if errors.Is(err, clip.ErrUnavailable) {
				return unavailable[wildlife.DetectionResult](err.Error())
			}
			return transportError[wildlife.DetectionResult](err)
		}
		det := wildlife.DetectionResult{
			SpeciesDetected: []wildlife.SpeciesRecord{{
				CommonName: preds[0].Label,
				Confidence: wildlife.ConfidenceMedium,
			}},
			Count:                 1,
			HabitatType:           "unknown",
			Observations:          "degraded path: local zero-shot classifier over a fixed label set",
			RecommendationSummary: "Observe habitat quality.",
		}
		raw, _ := json.Marshal(preds)
		return ok(det, string(raw))

	default:
		return unavailable[wildlife.DetectionResult]("no inference capability configured")
	}
}

func (p *Pipeline) forecast(ctx context.Context, species string, history []Sample) Outcome[wildlife.ForecastResult] {
	t := wildlife.ForecastTemplate
	user := t.User(
		wildlife.Field{Name: "Species", Value: species},
		wildlife.Field{Name: "Historical monthly counts", Value: "\n" + HistoryCSV(history)},
	)
	raw, err := p.sel.Engine.Generate(ctx, t.System(), user, nil)
	if err != nil {
		return transportError[wildlife.ForecastResult](err)
	}
	var fc wildlife.ForecastResult
	if err := util.ExtractInto(raw, &fc); err != nil {
		return parseFailed[wildlife.ForecastResult](raw)
	}
	return ok(fc, raw)
}

func (p *Pipeline) ecosystem(ctx context.Context, species []string, contextInfo string) Outcome[wildlife.EcosystemModel] {
	t := wildlife.EcosystemTemplate
	user := t.User(
		wildlife.Field{Name: "Species", Value: strings.Join(species, ", ")},
		wildlife.Field{Name: "Context", Value: contextInfo},
	)
	raw, err := p.sel.Engine.Generate(ctx, t.System(), user, nil)
	if err != nil {
		return transportError[wildlife.EcosystemModel](err)
	}
	var eco wildlife.EcosystemModel
	if err := util.ExtractInto(raw, &eco); err != nil {
		return parseFailed[wildlife.EcosystemModel](raw)
	}
	return ok(eco, raw)
}

func (p *Pipeline) recommend(ctx context.Context, species, status string, eco *wildlife.EcosystemModel) Outcome[wildlife.RecommendationSet] {
	ecoJSON, err := json.Marshal(eco)
	if err != nil {
		return transportError[wildlife.RecommendationSet](err)
	}
	t := wildlife.RecommendTemplate
	user := t.User(
		wildlife.Field{Name: "Species", Value: species},
		wildlife.Field{Name: "Status", Value: status},
		wildlife.Field{Name: "Ecosystem Summary", Value: string(ecoJSON)},
	)
	raw, err := p.sel.Engine.Generate(ctx, t.System(), user, nil)
	if err != nil {
		return transportError[wildlife.RecommendationSet](err)
	}
	var rec wildlife.RecommendationSet
	if err := util.ExtractInto(raw, &rec); err != nil {
		return parseFailed[wildlife.RecommendationSet](raw)
	}
	return ok(rec, raw)
}
