package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
)

type mockChatRepo struct {
	messages []models.ChatMessage
}

func (m *mockChatRepo) Append(ctx context.Context, message *models.ChatMessage) error {
	message.ID = "m1"
	message.CreatedAt = time.Now().UTC()
	m.messages = append(m.messages, *message)
	return nil
}

func (m *mockChatRepo) Recent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	// Newest first, like the store.
	if limit > len(m.messages) {
		limit = len(m.messages)
	}
	result := make([]models.ChatMessage, 0, limit)
	for i := len(m.messages) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.messages[i])
	}
	return result, nil
}

func TestChatServiceSend(t *testing.T) {
	repo := &mockChatRepo{}
	svc := NewChatService(repo, 50, 2000, zap.NewNop())

	message, err := svc.Send(context.Background(), "u1", "Asha Verma", "  hello everyone  ")
	require.NoError(t, err)
	assert.Equal(t, "hello everyone", message.Body)
	assert.Equal(t, "u1", message.AuthorID)
	require.Len(t, repo.messages, 1)
}

func TestChatServiceSendEmptyRejected(t *testing.T) {
	repo := &mockChatRepo{}
	svc := NewChatService(repo, 50, 2000, zap.NewNop())

	_, err := svc.Send(context.Background(), "u1", "Asha Verma", "   ")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.messages)
}

func TestChatServiceSendTooLong(t *testing.T) {
	repo := &mockChatRepo{}
	svc := NewChatService(repo, 50, 10, zap.NewNop())

	_, err := svc.Send(context.Background(), "u1", "Asha Verma", "this message is far too long")
	require.Error(t, err)
	assert.Empty(t, repo.messages)
}

func TestChatServiceHistoryChronological(t *testing.T) {
	repo := &mockChatRepo{}
	svc := NewChatService(repo, 50, 2000, zap.NewNop())

	for _, body := range []string{"A", "B", "C", "D", "E"} {
		_, err := svc.Send(context.Background(), "u1", "Asha Verma", body)
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// The three newest, oldest first.
	assert.Equal(t, "C", history[0].Body)
	assert.Equal(t, "D", history[1].Body)
	assert.Equal(t, "E", history[2].Body)
}

func TestChatServiceHistoryClampsLimit(t *testing.T) {
	repo := &mockChatRepo{}
	svc := NewChatService(repo, 2, 2000, zap.NewNop())

	for _, body := range []string{"A", "B", "C"} {
		_, err := svc.Send(context.Background(), "u1", "Asha Verma", body)
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "B", history[0].Body)
	assert.Equal(t, "C", history[1].Body)
}
