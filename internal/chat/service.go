// Package chat produces tutor replies for a conversation.
package chat

import (
	"context"
	"fmt"

	"lingotutor/internal/llm"
	"lingotutor/internal/models"
)

const tutorSystemPrompt = `You are a friendly %s language tutor. The student is at %s (CEFR) level.

Guidelines:
- Reply in %s, keeping vocabulary and sentence structure appropriate for the student's level
- Keep replies short (1-3 sentences) and end with a question to keep the conversation going
- If the student makes a mistake, gently model the correct form in your reply instead of lecturing
- Stay encouraging and conversational`

// historyWindow bounds how many past messages are sent to the model.
const historyWindow = 20

// Store is the slice of the conversation repository this service needs.
type Store interface {
	Get(ctx context.Context, id int64) (*models.Conversation, error)
	Messages(ctx context.Context, conversationID int64) ([]models.Message, error)
	AddMessage(ctx context.Context, conversationID int64, role, content string) (*models.Message, error)
}

type Service struct {
	gateway  llm.Gateway
	store    Store
	provider string
	model    string
}

func NewService(gw llm.Gateway, store Store, provider, model string) *Service {
	return &Service{gateway: gw, store: store, provider: provider, model: model}
}

// Send persists the student's message, generates a tutor reply from the
// conversation history, persists it, and returns it.
func (s *Service) Send(ctx context.Context, conversationID int64, text string) (*models.Message, error) {
	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AddMessage(ctx, conversationID, models.RoleUser, text); err != nil {
		return nil, err
	}

	history, err := s.store.Messages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(tutorSystemPrompt, conv.Language, conv.DifficultyLevel, conv.Language),
	})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Provider:    s.provider,
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate tutor reply: %w", err)
	}

	reply, err := s.store.AddMessage(ctx, conversationID, models.RoleAssistant, resp.Content)
	if err != nil {
		return nil, err
	}

	return reply, nil
}
