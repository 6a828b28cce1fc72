package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeParsesVerboseJSON(t *testing.T) {
	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "hola, ¿qué tal?",
			"language": "spanish",
			"duration": 2.4,
			"segments": [{"avg_logprob": -0.05}, {"avg_logprob": -0.15}]
		}`))
	}))
	defer srv.Close()

	provider := NewOpenAISTT(OpenAISTTConfig{BaseURL: srv.URL})
	resp, err := provider.Transcribe(context.Background(), TranscriptionRequest{
		FilePath: writeTempAudio(t),
		Language: "es",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if resp.Text != "hola, ¿qué tal?" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Language != "spanish" {
		t.Errorf("language = %q", resp.Language)
	}
	if resp.Duration != 2.4 {
		t.Errorf("duration = %v", resp.Duration)
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 {
		t.Errorf("confidence out of range: %v", resp.Confidence)
	}
	if gotLanguage != "es" {
		t.Errorf("language hint not forwarded, got %q", gotLanguage)
	}
}

func TestTranscribeDeadlineMapsToErrTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	provider := NewOpenAISTT(OpenAISTTConfig{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Transcribe(ctx, TranscriptionRequest{FilePath: writeTempAudio(t)})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestTranscribeUnreachableMapsToErrUnavailable(t *testing.T) {
	// Closed port: connection refused.
	provider := NewOpenAISTT(OpenAISTTConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := provider.Transcribe(context.Background(), TranscriptionRequest{FilePath: writeTempAudio(t)})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
