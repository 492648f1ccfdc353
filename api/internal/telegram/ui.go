package telegram

import (
	"fmt"
	"strings"

	"gaianet/api/internal/pipeline"
)

func summarizeRun(run *pipeline.Run) string {
	var b strings.Builder

	if run.Degraded {
		b.WriteString("⚠ Degraded mode: no remote model configured, detection only.\n\n")
	}

	b.WriteString("🦜 Detection: ")
	if det := run.Detection.Value; run.Detection.OK() && len(det.SpeciesDetected) > 0 {
		top := det.SpeciesDetected[0]
		fmt.Fprintf(&b, "%s", top.CommonName)
		if top.ScientificName != "" {
			fmt.Fprintf(&b, " (%s)", top.ScientificName)
		}
		fmt.Fprintf(&b, ", confidence %s, habitat %s", top.Confidence, det.HabitatType)
		if det.Observations != "" {
			fmt.Fprintf(&b, "\nNotes: %s", det.Observations)
		}
	} else {
		b.WriteString(stageFailure(run.Detection.Status, run.Detection.Err))
	}

	b.WriteString("\n\n📈 Forecast: ")
	if fc := run.Forecast.Value; run.Forecast.OK() {
		fmt.Fprintf(&b, "risk %s over %d months. %s", fc.RiskLevel, len(fc.Forecast), fc.Reasoning)
	} else {
		b.WriteString(stageFailure(run.Forecast.Status, run.Forecast.Err))
	}

	b.WriteString("\n\n🕸 Ecosystem: ")
	if eco := run.Ecosystem.Value; run.Ecosystem.OK() {
		fmt.Fprintf(&b, "health %.0f, collapse risk %s, keystone: %s",
			eco.HealthScore, eco.CollapseRisk, strings.Join(eco.KeystoneSpecies, ", "))
	} else {
		b.WriteString(stageFailure(run.Ecosystem.Status, run.Ecosystem.Err))
	}

	b.WriteString("\n\n🛠 Recommendations: ")
	if rec := run.Recommendations.Value; run.Recommendations.OK() {
		for i, a := range rec.RecommendedActions {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s (urgency %s)", a.Action, a.Urgency)
		}
	} else {
		b.WriteString(stageFailure(run.Recommendations.Status, run.Recommendations.Err))
	}

	b.WriteString("\n\nUse /raw for the full model output.")
	return b.String()
}

func stageFailure(status pipeline.Status, reason string) string {
	switch status {
	case pipeline.StatusUnavailable:
		return "unavailable (" + reason + ")"
	case pipeline.StatusSkipped:
		return "skipped (" + reason + ")"
	case pipeline.StatusParseFailed:
		return "model output could not be parsed"
	case pipeline.StatusTransportError:
		return "call failed: " + reason
	default:
		return "no result"
	}
}
