package handle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gaianet/api/internal/pipeline"
	"gaianet/api/internal/util"
)

func stripDataURL(b64 string) string {
	s := strings.TrimSpace(b64)
	if i := strings.Index(s, ","); i != -1 && strings.HasPrefix(strings.ToLower(s[:i]), "data:") {
		return s[i+1:]
	}
	return s
}

type AnalyzeRequest struct {
	Session    string `json:"session,omitempty"`
	ImageB64   string `json:"image_b64"`
	HistoryCSV string `json:"history_csv,omitempty"`
	Context    string `json:"context,omitempty"`
}

// Analyze runs the whole pipeline over one observation and stores the run
// under the caller's session.
func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json: " + err.Error()})
		return
	}

	req.ImageB64 = stripDataURL(req.ImageB64)
	img, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil || len(img) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad image_b64"})
		return
	}
	jpg, err := util.ReencodeJPEG(img)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var history []pipeline.Sample
	if strings.TrimSpace(req.HistoryCSV) != "" {
		history, err = pipeline.ParseHistoryCSV(strings.NewReader(req.HistoryCSV))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	deadline := 180 * time.Second
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), deadline)
	defer cancel()

	run := h.pipe.Run(ctx, pipeline.Observation{
		Image:   jpg,
		History: history,
		Context: req.Context,
	})

	session := strings.TrimSpace(req.Session)
	if session == "" {
		session = "default"
	}
	h.store.Put(session, run)

	writeJSON(w, http.StatusOK, run)
}
