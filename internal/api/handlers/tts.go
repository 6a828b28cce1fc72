package handlers

import (
	"encoding/json"
	"net/http"

	"lingotutor/internal/tts"
)

type TTSHandler struct {
	svc tts.Provider
}

func NewTTSHandler(svc tts.Provider) *TTSHandler {
	return &TTSHandler{svc: svc}
}

// Synthesize converts text to audio and streams it back.
func (h *TTSHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req tts.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Input == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input text required"})
		return
	}

	result, err := h.svc.Synthesize(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Audio)
}
