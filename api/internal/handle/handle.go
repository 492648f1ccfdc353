package handle

import (
	"encoding/json"
	"net/http"

	"gaianet/api/internal/pipeline"
)

type Handle struct {
	pipe  *pipeline.Pipeline
	store *pipeline.Store
}

func New(pipe *pipeline.Pipeline, store *pipeline.Store) *Handle {
	return &Handle{
		pipe:  pipe,
		store: store,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
