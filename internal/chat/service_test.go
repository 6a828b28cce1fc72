package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lingotutor/internal/conversation"
	"lingotutor/internal/llm"
	"lingotutor/internal/models"
)

type stubGateway struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (s *stubGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content}, nil
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, errors.New("unused") }
func (s *stubGateway) ListModels() []llm.ModelInfo           { return nil }

type stubStore struct {
	conv  *models.Conversation
	msgs  []models.Message
	added []models.Message
}

func (s *stubStore) Get(_ context.Context, id int64) (*models.Conversation, error) {
	if s.conv == nil {
		return nil, conversation.ErrNotFound
	}
	return s.conv, nil
}

func (s *stubStore) Messages(_ context.Context, _ int64) ([]models.Message, error) {
	all := append([]models.Message{}, s.msgs...)
	return append(all, s.added...), nil
}

func (s *stubStore) AddMessage(_ context.Context, conversationID int64, role, content string) (*models.Message, error) {
	m := models.Message{
		ID:             int64(len(s.added) + 1000),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	s.added = append(s.added, m)
	return &m, nil
}

func TestSendPersistsBothSidesAndBuildsPrompt(t *testing.T) {
	gw := &stubGateway{content: "¡Muy bien! ¿Y de dónde eres?"}
	store := &stubStore{
		conv: &models.Conversation{ID: 1, Language: "Spanish", DifficultyLevel: "A1"},
		msgs: []models.Message{
			{Role: "assistant", Content: "¿Cómo te llamas?"},
		},
	}
	svc := NewService(gw, store, "anthropic", "claude-3-haiku-20240307")

	reply, err := svc.Send(context.Background(), 1, "me llamo Ana")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply.Role != models.RoleAssistant || reply.Content != "¡Muy bien! ¿Y de dónde eres?" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	if len(store.added) != 2 {
		t.Fatalf("expected user+assistant messages persisted, got %d", len(store.added))
	}
	if store.added[0].Role != models.RoleUser || store.added[0].Content != "me llamo Ana" {
		t.Fatalf("user message not persisted first: %+v", store.added[0])
	}

	if gw.lastReq.Messages[0].Role != "system" {
		t.Fatal("first message should be the tutor system prompt")
	}
	if !strings.Contains(gw.lastReq.Messages[0].Content, "Spanish") {
		t.Error("system prompt missing conversation language")
	}
	if !strings.Contains(gw.lastReq.Messages[0].Content, "A1") {
		t.Error("system prompt missing difficulty level")
	}
	last := gw.lastReq.Messages[len(gw.lastReq.Messages)-1]
	if last.Role != "user" || last.Content != "me llamo Ana" {
		t.Errorf("student message should be last in the prompt, got %+v", last)
	}
}

func TestSendUnknownConversation(t *testing.T) {
	svc := NewService(&stubGateway{}, &stubStore{}, "", "")

	_, err := svc.Send(context.Background(), 42, "hola")
	if !errors.Is(err, conversation.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendGatewayErrorDoesNotPersistReply(t *testing.T) {
	store := &stubStore{conv: &models.Conversation{ID: 1, Language: "French", DifficultyLevel: "B1"}}
	svc := NewService(&stubGateway{err: errors.New("provider down")}, store, "", "")

	_, err := svc.Send(context.Background(), 1, "bonjour")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.added) != 1 {
		t.Fatalf("only the user message should be persisted, got %d", len(store.added))
	}
}
