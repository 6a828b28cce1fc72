package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lingotutor/internal/models"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type CreateInput struct {
	Title           string
	Language        string
	DifficultyLevel string
}

func (r *Repository) Create(ctx context.Context, in CreateInput) (*models.Conversation, error) {
	if in.DifficultyLevel == "" {
		in.DifficultyLevel = "A1"
	}

	var conv models.Conversation
	err := r.db.QueryRow(ctx,
		`INSERT INTO conversations (title, language, difficulty_level)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, language, difficulty_level, created_at`,
		in.Title, in.Language, in.DifficultyLevel,
	).Scan(&conv.ID, &conv.Title, &conv.Language, &conv.DifficultyLevel, &conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	return &conv, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.QueryRow(ctx,
		`SELECT id, title, language, difficulty_level, created_at
		 FROM conversations WHERE id = $1`,
		id,
	).Scan(&conv.ID, &conv.Title, &conv.Language, &conv.DifficultyLevel, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, language, difficulty_level, created_at
		 FROM conversations ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.Language, &conv.DifficultyLevel, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Messages returns the full message history of a conversation in
// chronological order.
func (r *Repository) Messages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *Repository) AddMessage(ctx context.Context, conversationID int64, role, content string) (*models.Message, error) {
	var m models.Message
	err := r.db.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, role, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, conversation_id, role, content, created_at`,
		conversationID, role, content,
	).Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}
