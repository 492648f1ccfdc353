package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"gaianet/api/internal/config"
	"gaianet/api/internal/handle"
	"gaianet/api/internal/pipeline"
	"gaianet/api/internal/wildlife"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	sel := wildlife.Select(cfg)
	switch sel.Mode {
	case wildlife.ModeRemote:
		log.Printf("remote model ready: %s", sel.Engine.GetModel())
	case wildlife.ModeLocal:
		log.Printf("no GEMINI_API_KEY: degraded mode, local classifier only")
	default:
		log.Printf("no inference capability configured: all stages will report unavailable")
	}

	h := handle.New(pipeline.New(sel), pipeline.NewStore())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/analyze", h.Analyze)
	mux.HandleFunc("/v1/state", h.State)

	addr := ":" + cfg.Port
	log.Printf("gaianet listening on %s (mode=%s)", addr, sel.Mode)
	log.Fatal(http.ListenAndServe(addr, mux))
}
