// Package transcribe orchestrates one audio upload end to end: temp-file
// materialization, transcription with a deadline, and context-aware
// correction when the upload belongs to a conversation.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lingotutor/internal/correction"
	"lingotutor/internal/locale"
	"lingotutor/internal/models"
	"lingotutor/internal/storage"
	"lingotutor/internal/stt"
)

// ErrInvalidInput indicates a missing filename or an empty upload.
var ErrInvalidInput = errors.New("invalid transcription input")

// ConversationStore is the slice of the repository this service needs.
type ConversationStore interface {
	Get(ctx context.Context, id int64) (*models.Conversation, error)
	Messages(ctx context.Context, conversationID int64) ([]models.Message, error)
}

// Corrector repairs recognition errors using conversation context.
type Corrector interface {
	Correct(ctx context.Context, req correction.Request) correction.Result
}

type Service struct {
	provider  stt.Provider
	corrector Corrector
	store     ConversationStore
	mirror    storage.Store
	timeout   time.Duration
	devMode   bool
}

func NewService(provider stt.Provider, corrector Corrector, store ConversationStore, mirror storage.Store, timeout time.Duration, devMode bool) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		provider:  provider,
		corrector: corrector,
		store:     store,
		mirror:    mirror,
		timeout:   timeout,
		devMode:   devMode,
	}
}

type Input struct {
	Audio          []byte
	Filename       string
	Language       string // locale or ISO-639-1 hint, optional
	ConversationID *int64
}

type Output struct {
	Text        string            `json:"text"`
	Language    string            `json:"language"`
	Confidence  float64           `json:"confidence"`
	Duration    float64           `json:"duration"`
	Corrections []correction.Item `json:"corrections,omitempty"`
}

// Transcribe runs the upload through STT and, when a conversation is given,
// through correction. Failures carry a sentinel: ErrInvalidInput,
// conversation.ErrNotFound, stt.ErrTimeout or stt.ErrUnavailable.
func (s *Service) Transcribe(ctx context.Context, in Input) (*Output, error) {
	if in.Filename == "" {
		return nil, fmt.Errorf("%w: no file provided", ErrInvalidInput)
	}
	if len(in.Audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio file", ErrInvalidInput)
	}

	// Resolve conversation context before doing any work; an unknown
	// conversation is caller-visible, never silently ignored.
	var conv *models.Conversation
	var history []correction.Turn
	if in.ConversationID != nil {
		var err error
		conv, err = s.store.Get(ctx, *in.ConversationID)
		if err != nil {
			return nil, err
		}

		msgs, err := s.store.Messages(ctx, *in.ConversationID)
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			history = append(history, correction.Turn{Role: m.Role, Content: m.Content})
		}
	}

	tempPath, err := writeTempAudio(in.Filename, in.Audio)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete temp file", "path", tempPath, "error", err)
		}
	}()

	if s.devMode && s.mirror != nil {
		s.mirrorAudio(ctx, tempPath, in.Filename)
	}

	sttCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.provider.Transcribe(sttCtx, stt.TranscriptionRequest{
		FilePath: tempPath,
		Language: locale.WhisperCode(in.Language),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", stt.ErrTimeout, err)
		}
		return nil, err
	}

	slog.Info("transcription complete",
		"language", result.Language,
		"confidence", result.Confidence,
		"duration", result.Duration,
	)

	out := &Output{
		Text:       result.Text,
		Language:   result.Language,
		Confidence: result.Confidence,
		Duration:   result.Duration,
	}

	if conv != nil && len(history) > 0 {
		corrected := s.corrector.Correct(ctx, correction.Request{
			STTText:         result.Text,
			History:         history,
			Language:        conv.Language,
			DifficultyLevel: conv.DifficultyLevel,
		})
		out.Text = corrected.CorrectedText
		if len(corrected.Corrections) > 0 {
			out.Corrections = corrected.Corrections
		}
	}

	return out, nil
}

func writeTempAudio(filename string, audio []byte) (string, error) {
	suffix := filepath.Ext(filename)
	if suffix == "" {
		suffix = ".webm"
	}

	f, err := os.CreateTemp("", "upload-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return f.Name(), nil
}

// mirrorAudio copies the upload into durable storage for debugging.
// Best-effort: failures are logged and swallowed.
func (s *Service) mirrorAudio(ctx context.Context, tempPath, originalFilename string) {
	f, err := os.Open(tempPath)
	if err != nil {
		slog.Warn("audio mirror: open temp file failed", "error", err)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("audio_%s_%s%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		filepath.Ext(originalFilename),
	)

	dest, err := s.mirror.Save(ctx, name, f, "application/octet-stream")
	if err != nil {
		slog.Warn("audio mirror: save failed", "error", err)
		return
	}
	slog.Info("audio mirrored", "path", dest)
}
