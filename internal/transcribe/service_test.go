package transcribe

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"lingotutor/internal/conversation"
	"lingotutor/internal/correction"
	"lingotutor/internal/models"
	"lingotutor/internal/stt"
)

type stubProvider struct {
	resp     *stt.TranscriptionResponse
	err      error
	calls    int
	filePath string
	fileSeen bool // whether the temp file existed during the call
	language string
}

func (s *stubProvider) Transcribe(_ context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	s.calls++
	s.filePath = req.FilePath
	s.language = req.Language
	if _, err := os.Stat(req.FilePath); err == nil {
		s.fileSeen = true
	}
	return s.resp, s.err
}

func (s *stubProvider) Name() string { return "stub" }

type stubStore struct {
	conv *models.Conversation
	msgs []models.Message
	err  error
}

func (s *stubStore) Get(_ context.Context, id int64) (*models.Conversation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.conv, nil
}

func (s *stubStore) Messages(_ context.Context, _ int64) ([]models.Message, error) {
	return s.msgs, nil
}

type stubCorrector struct {
	result correction.Result
	calls  int
	lastIn correction.Request
}

func (s *stubCorrector) Correct(_ context.Context, req correction.Request) correction.Result {
	s.calls++
	s.lastIn = req
	return s.result
}

func requireTempFileGone(t *testing.T, provider *stubProvider) {
	t.Helper()
	if provider.filePath == "" {
		return
	}
	if _, err := os.Stat(provider.filePath); !os.IsNotExist(err) {
		t.Fatalf("temp file %s still exists after request", provider.filePath)
	}
}

func TestTranscribeRejectsInvalidInput(t *testing.T) {
	svc := NewService(&stubProvider{}, &stubCorrector{}, &stubStore{}, nil, time.Second, false)

	cases := []struct {
		name string
		in   Input
	}{
		{"no filename", Input{Audio: []byte("data")}},
		{"empty body", Input{Filename: "a.webm"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Transcribe(context.Background(), tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTranscribeWithoutConversationSkipsCorrection(t *testing.T) {
	provider := &stubProvider{resp: &stt.TranscriptionResponse{
		Text: "hola", Language: "spanish", Confidence: 0.92, Duration: 1.5,
	}}
	corrector := &stubCorrector{}
	svc := NewService(provider, corrector, &stubStore{}, nil, time.Second, false)

	out, err := svc.Transcribe(context.Background(), Input{
		Audio:    []byte("audio"),
		Filename: "clip.webm",
		Language: "es-MX",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if out.Text != "hola" {
		t.Errorf("text = %q, want raw transcript", out.Text)
	}
	if out.Corrections != nil {
		t.Errorf("corrections should be omitted, got %+v", out.Corrections)
	}
	if corrector.calls != 0 {
		t.Errorf("corrector should not run without a conversation, ran %d times", corrector.calls)
	}
	if provider.language != "es" {
		t.Errorf("language hint = %q, want locale mapped to %q", provider.language, "es")
	}
	if !provider.fileSeen {
		t.Error("temp file did not exist during transcription")
	}
	requireTempFileGone(t, provider)
}

func TestTranscribeWithConversationAppliesCorrection(t *testing.T) {
	provider := &stubProvider{resp: &stt.TranscriptionResponse{
		Text: "mi amo", Language: "spanish", Confidence: 0.85, Duration: 1.1,
	}}
	corrector := &stubCorrector{result: correction.Result{
		OriginalText:  "mi amo",
		CorrectedText: "me llamo Ana",
		Corrections: []correction.Item{
			{Original: "mi amo", Corrected: "me llamo", Reason: "homophone"},
		},
		Confidence: 0.9,
	}}
	store := &stubStore{
		conv: &models.Conversation{ID: 7, Language: "Spanish", DifficultyLevel: "A1"},
		msgs: []models.Message{
			{Role: "assistant", Content: "¿Cómo te llamas?"},
		},
	}
	svc := NewService(provider, corrector, store, nil, time.Second, false)

	id := int64(7)
	out, err := svc.Transcribe(context.Background(), Input{
		Audio:          []byte("audio"),
		Filename:       "clip.webm",
		ConversationID: &id,
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if out.Text != "me llamo Ana" {
		t.Errorf("text = %q, want corrected transcript", out.Text)
	}
	if len(out.Corrections) != 1 {
		t.Fatalf("corrections = %+v, want one item", out.Corrections)
	}
	if corrector.lastIn.Language != "Spanish" || corrector.lastIn.DifficultyLevel != "A1" {
		t.Errorf("conversation settings not forwarded: %+v", corrector.lastIn)
	}
	if len(corrector.lastIn.History) != 1 || corrector.lastIn.History[0].Role != "assistant" {
		t.Errorf("history not projected: %+v", corrector.lastIn.History)
	}
	requireTempFileGone(t, provider)
}

func TestTranscribeUnknownConversationSurfacesNotFound(t *testing.T) {
	provider := &stubProvider{resp: &stt.TranscriptionResponse{Text: "hola"}}
	store := &stubStore{err: conversation.ErrNotFound}
	svc := NewService(provider, &stubCorrector{}, store, nil, time.Second, false)

	id := int64(999)
	_, err := svc.Transcribe(context.Background(), Input{
		Audio:          []byte("audio"),
		Filename:       "clip.webm",
		ConversationID: &id,
	})
	if !errors.Is(err, conversation.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("transcription should not run for unknown conversation, ran %d times", provider.calls)
	}
	// No temp file is created before the conversation check.
	requireTempFileGone(t, provider)
}

func TestTranscribeTimeoutCleansUpTempFile(t *testing.T) {
	provider := &stubProvider{err: stt.ErrTimeout}
	svc := NewService(provider, &stubCorrector{}, &stubStore{}, nil, time.Second, false)

	_, err := svc.Transcribe(context.Background(), Input{
		Audio:    []byte("audio"),
		Filename: "clip.webm",
	})
	if !errors.Is(err, stt.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	requireTempFileGone(t, provider)
}

func TestTranscribeProviderErrorCleansUpTempFile(t *testing.T) {
	provider := &stubProvider{err: errors.New("backend exploded")}
	svc := NewService(provider, &stubCorrector{}, &stubStore{}, nil, time.Second, false)

	_, err := svc.Transcribe(context.Background(), Input{
		Audio:    []byte("audio"),
		Filename: "clip.webm",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	requireTempFileGone(t, provider)
}

func TestTranscribeDefaultsExtension(t *testing.T) {
	provider := &stubProvider{resp: &stt.TranscriptionResponse{Text: "ok"}}
	svc := NewService(provider, &stubCorrector{}, &stubStore{}, nil, time.Second, false)

	_, err := svc.Transcribe(context.Background(), Input{
		Audio:    []byte("audio"),
		Filename: "noext",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if ext := provider.filePath[len(provider.filePath)-5:]; ext != ".webm" {
		t.Errorf("temp file %q should default to .webm", provider.filePath)
	}
	requireTempFileGone(t, provider)
}
