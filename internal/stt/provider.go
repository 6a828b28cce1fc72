package stt

import (
	"context"
	"errors"
)

// Sentinel errors so callers can classify failures without inspecting
// message text.
var (
	// ErrTimeout indicates the transcription did not finish within the
	// caller's deadline.
	ErrTimeout = errors.New("transcription timed out")

	// ErrUnavailable indicates the transcription backend is not reachable
	// or not installed.
	ErrUnavailable = errors.New("transcription backend unavailable")
)

// TranscriptionRequest holds the parameters for audio transcription.
type TranscriptionRequest struct {
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Duration   float64 `json:"duration"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
