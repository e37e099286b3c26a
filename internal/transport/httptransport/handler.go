package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/oncostat/dosepath/internal/app"
	"github.com/oncostat/dosepath/internal/transport/pathdto"
)

type Handler struct {
	svc app.PathsService
}

func NewHandler(svc app.PathsService) *Handler {
	return &Handler{svc: svc}
}

// Paths enumerates a design's dose-path tree. When true_prob_tox is present
// the response also carries the crystallised operating characteristics.
func (h *Handler) Paths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in pathdto.PathsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()})
		return
	}

	req := in.ToApp()

	tree, err := h.svc.Enumerate(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "paths failed", "details": err.Error()})
		return
	}

	resp := pathdto.PathsResponse{Tree: tree}
	if len(in.TrueProbTox) > 0 {
		crys, err := h.svc.Crystallise(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "crystallise failed", "details": err.Error()})
			return
		}
		resp.Crystallised = crys
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
