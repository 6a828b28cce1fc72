package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"lingotutor/internal/config"
	"lingotutor/internal/conversation"
	"lingotutor/internal/correction"
	"lingotutor/internal/stt"
	"lingotutor/internal/transcribe"
)

type stubTranscription struct {
	out    *transcribe.Output
	err    error
	lastIn transcribe.Input
}

func (s *stubTranscription) Transcribe(_ context.Context, in transcribe.Input) (*transcribe.Output, error) {
	s.lastIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func multipartAudio(t *testing.T, fields map[string]string, filename string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("audio", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(audio)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func doTranscribe(t *testing.T, svc TranscriptionService, fields map[string]string, filename string, audio []byte) *httptest.ResponseRecorder {
	t.Helper()
	h := NewSTTHandler(svc, config.STTConfig{Backend: "openai"})

	body, contentType := multipartAudio(t, fields, filename, audio)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stt/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Transcribe(w, req)
	return w
}

func TestTranscribeEndpointReturnsCorrections(t *testing.T) {
	svc := &stubTranscription{out: &transcribe.Output{
		Text:       "me llamo Ana",
		Language:   "spanish",
		Confidence: 0.9,
		Duration:   1.2,
		Corrections: []correction.Item{
			{Original: "mi amo", Corrected: "me llamo", Reason: "homophone"},
		},
	}}

	w := doTranscribe(t, svc, map[string]string{
		"language":        "es-ES",
		"conversation_id": "7",
	}, "clip.webm", []byte("audio-bytes"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Text        string            `json:"text"`
		Corrections []correction.Item `json:"corrections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Text != "me llamo Ana" {
		t.Errorf("text = %q", resp.Text)
	}
	if len(resp.Corrections) != 1 {
		t.Errorf("corrections = %+v", resp.Corrections)
	}

	if svc.lastIn.ConversationID == nil || *svc.lastIn.ConversationID != 7 {
		t.Errorf("conversation id not forwarded: %+v", svc.lastIn.ConversationID)
	}
	if svc.lastIn.Language != "es-ES" {
		t.Errorf("language = %q", svc.lastIn.Language)
	}
	if string(svc.lastIn.Audio) != "audio-bytes" {
		t.Errorf("audio body not forwarded")
	}
}

func TestTranscribeEndpointOmitsEmptyCorrections(t *testing.T) {
	svc := &stubTranscription{out: &transcribe.Output{Text: "hola", Language: "spanish"}}

	w := doTranscribe(t, svc, nil, "clip.webm", []byte("audio"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("corrections")) {
		t.Fatalf("corrections field should be omitted: %s", w.Body.String())
	}
}

func TestTranscribeEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", transcribe.ErrInvalidInput, http.StatusBadRequest},
		{"unknown conversation", conversation.ErrNotFound, http.StatusNotFound},
		{"timeout", stt.ErrTimeout, http.StatusRequestTimeout},
		{"backend unavailable", stt.ErrUnavailable, http.StatusServiceUnavailable},
		{"anything else", context.Canceled, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doTranscribe(t, &stubTranscription{err: tc.err}, nil, "clip.webm", []byte("audio"))
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestTranscribeEndpointRequiresFile(t *testing.T) {
	w := doTranscribe(t, &stubTranscription{}, map[string]string{"language": "es"}, "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTranscribeEndpointRejectsBadConversationID(t *testing.T) {
	w := doTranscribe(t, &stubTranscription{}, map[string]string{"conversation_id": "abc"}, "clip.webm", []byte("audio"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	h := NewSTTHandler(&stubTranscription{}, config.STTConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stt/languages", nil)
	w := httptest.NewRecorder()
	h.Languages(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Languages []map[string]any `json:"languages"`
		Count     int              `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count == 0 || resp.Count != len(resp.Languages) {
		t.Fatalf("count = %d, languages = %d", resp.Count, len(resp.Languages))
	}
}

func TestModelsEndpoint(t *testing.T) {
	h := NewSTTHandler(&stubTranscription{}, config.STTConfig{Backend: "local"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stt/models", nil)
	w := httptest.NewRecorder()
	h.Models(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Models       []stt.ModelDetail `json:"models"`
		CurrentModel string            `json:"current_model"`
		Backend      string            `json:"backend"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Models) != 5 {
		t.Errorf("models = %d, want 5", len(resp.Models))
	}
	if resp.CurrentModel != "whisper-1" {
		t.Errorf("current_model = %q, want default whisper-1", resp.CurrentModel)
	}
	if resp.Backend != "local" {
		t.Errorf("backend = %q", resp.Backend)
	}
}
