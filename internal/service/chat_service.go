package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
)

type chatRepository interface {
	Append(ctx context.Context, message *models.ChatMessage) error
	Recent(ctx context.Context, limit int) ([]models.ChatMessage, error)
}

// ChatService handles the global chat feed.
type ChatService struct {
	repo         chatRepository
	historyLimit int
	maxLength    int
	logger       *zap.Logger
}

// NewChatService constructs the chat service.
func NewChatService(repo chatRepository, historyLimit, maxLength int, logger *zap.Logger) *ChatService {
	if historyLimit <= 0 || historyLimit > 100 {
		historyLimit = 50
	}
	if maxLength <= 0 {
		maxLength = 2000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{repo: repo, historyLimit: historyLimit, maxLength: maxLength, logger: logger}
}

// Send appends a message to the feed. Empty or whitespace-only text is
// rejected before any write.
func (s *ChatService) Send(ctx context.Context, authorID, authorName, body string) (*models.ChatMessage, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message text is empty")
	}
	if len(trimmed) > s.maxLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message text too long")
	}

	message := &models.ChatMessage{
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       trimmed,
	}
	if err := s.repo.Append(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return message, nil
}

// History returns the most recent messages in chronological order. The store
// yields them newest first; they are reversed for display.
func (s *ChatService) History(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	messages, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat history")
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
