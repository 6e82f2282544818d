package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

// ChatRepository provides append-only persistence for the global chat feed.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates the repository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Append inserts a new chat message with a server-assigned timestamp.
func (r *ChatRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO chat_messages (id, author_id, author_name, body, created_at)
VALUES (:id, :author_id, :author_name, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

// Recent returns the latest limit messages ordered newest first.
func (r *ChatRepository) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, author_id, author_name, body, created_at FROM chat_messages ORDER BY created_at DESC LIMIT %d`, limit)
	var messages []models.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return messages, nil
}
