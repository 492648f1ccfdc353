package wildlife

import (
	"context"
	"strings"

	"gaianet/api/internal/config"
	"gaianet/api/internal/wildlife/clip"
	"gaianet/api/internal/wildlife/gemini"
)

// Engine is a remote generative capability: it takes a composed instruction
// (system part with the schema, user part with the named inputs, optionally an
// image) and returns the model's free text. Parsing is the caller's job.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, system, user string, image []byte) (string, error)
}

// Mode says which capability a run operates on.
type Mode string

const (
	ModeRemote Mode = "remote" // generative vision model, all stages
	ModeLocal  Mode = "local"  // zero-shot classifier, detection only
	ModeNone   Mode = "none"   // nothing configured, every stage unavailable
)

// Selection is the capability chosen for one run. Exactly one of Engine and
// Classifier is set unless Mode is ModeNone.
type Selection struct {
	Mode       Mode
	Engine     Engine
	Classifier *clip.Classifier
}

// Select picks the capability from configuration alone — no network probe.
// A configured API key wins; otherwise the local classifier sidecar, which
// loads lazily on first use; otherwise nothing.
func Select(cfg *config.Config) Selection {
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		return Selection{Mode: ModeRemote, Engine: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)}
	}
	if strings.TrimSpace(cfg.ClipServerURL) != "" {
		return Selection{Mode: ModeLocal, Classifier: clip.New(cfg.ClipServerURL)}
	}
	return Selection{Mode: ModeNone}
}
