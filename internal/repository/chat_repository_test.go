package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarsync/scholarsync-api/internal/models"
)

func TestChatAppendAssignsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectExec("INSERT INTO chat_messages").WillReturnResult(sqlmock.NewResult(1, 1))

	message := &models.ChatMessage{AuthorID: "u1", AuthorName: "Asha Verma", Body: "hello"}
	err := repo.Append(context.Background(), message)
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.False(t, message.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRecentOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "author_id", "author_name", "body", "created_at"}).
		AddRow("m2", "u1", "Asha Verma", "second", now).
		AddRow("m1", "u1", "Asha Verma", "first", now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, author_id, author_name, body, created_at FROM chat_messages ORDER BY created_at DESC LIMIT 2")).
		WillReturnRows(rows)

	messages, err := repo.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRecentClampsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 50")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "author_name", "body", "created_at"}))

	_, err := repo.Recent(context.Background(), -5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
