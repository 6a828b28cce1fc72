package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"lingotutor/internal/config"
	"lingotutor/internal/conversation"
	"lingotutor/internal/locale"
	"lingotutor/internal/stt"
	"lingotutor/internal/transcribe"
)

const maxAudioUploadBytes = 25 << 20 // 25 MB

// TranscriptionService runs an upload through STT and correction.
type TranscriptionService interface {
	Transcribe(ctx context.Context, in transcribe.Input) (*transcribe.Output, error)
}

type STTHandler struct {
	svc TranscriptionService
	cfg config.STTConfig
}

func NewSTTHandler(svc TranscriptionService, cfg config.STTConfig) *STTHandler {
	return &STTHandler{svc: svc, cfg: cfg}
}

// Transcribe accepts a multipart audio upload with optional language and
// conversation_id fields.
func (h *STTHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file provided"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read audio"})
		return
	}
	if len(audio) > maxAudioUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "audio file too large"})
		return
	}

	in := transcribe.Input{
		Audio:    audio,
		Filename: header.Filename,
		Language: r.FormValue("language"),
	}
	if raw := r.FormValue("conversation_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid conversation_id"})
			return
		}
		in.ConversationID = &id
	}

	slog.Info("transcription request",
		"filename", header.Filename,
		"size", len(audio),
		"language", in.Language,
		"conversation_id", r.FormValue("conversation_id"),
	)

	out, err := h.svc.Transcribe(r.Context(), in)
	if err != nil {
		h.writeTranscribeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *STTHandler) writeTranscribeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transcribe.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, conversation.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
	case errors.Is(err, stt.ErrTimeout):
		writeJSON(w, http.StatusRequestTimeout, map[string]string{
			"error": "transcription timed out, please try a shorter audio file",
		})
	case errors.Is(err, stt.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "speech-to-text service not available",
		})
	default:
		slog.Error("transcription failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transcription failed"})
	}
}

// Languages returns the locale capability table for STT-capable locales.
func (h *STTHandler) Languages(w http.ResponseWriter, r *http.Request) {
	variants := locale.List(true)

	languages := make([]map[string]any, 0, len(variants))
	for _, v := range variants {
		languages = append(languages, map[string]any{
			"locale":      v.Locale,
			"iso_639_1":   v.ISO6391,
			"iso_3166_1":  v.ISO31661,
			"name":        v.Name,
			"native_name": v.NativeName,
			"stt":         map[string]any{"supported": v.STT, "whisper_language_code": v.ISO6391},
			"tts":         map[string]any{"supported": v.TTS},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"languages": languages,
		"count":     len(languages),
	})
}

// Models returns the Whisper model catalog and the configured backend.
func (h *STTHandler) Models(w http.ResponseWriter, r *http.Request) {
	models := stt.AvailableModels()

	currentModel := h.cfg.OpenAIModel
	if currentModel == "" {
		currentModel = "whisper-1"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models":        models,
		"current_model": currentModel,
		"backend":       h.cfg.Backend,
		"multilingual":  true,
		"notes": []string{
			"Whisper model selection is not language-specific (models are multilingual).",
			"You may pass a language hint as ISO-639-1 (e.g., 'en') or locale (e.g., 'en-GB'); locales map to ISO-639-1.",
		},
		"count": len(models),
	})
}
