package handle

import (
	"net/http"
	"strings"
)

// State exposes the stored run for a session: GET reads it (raw model text
// included, for debugging model behavior), DELETE ends the session.
func (h *Handle) State(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(r.URL.Query().Get("session"))
	if session == "" {
		session = "default"
	}

	switch r.Method {
	case http.MethodGet:
		run, ok := h.store.Get(session)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run for session " + session})
			return
		}
		writeJSON(w, http.StatusOK, run)
	case http.MethodDelete:
		h.store.Delete(session)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET or DELETE only"})
	}
}
