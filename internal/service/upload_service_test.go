package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
	"github.com/scholarsync/scholarsync-api/pkg/storage"
)

type mockPhotoRepo struct {
	students   map[string]*models.Student
	photoPaths map[string]string
}

func newMockPhotoRepo() *mockPhotoRepo {
	return &mockPhotoRepo{
		students:   make(map[string]*models.Student),
		photoPaths: make(map[string]string),
	}
}

func (m *mockPhotoRepo) FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error) {
	student, ok := m.students[rollNumber]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (m *mockPhotoRepo) UpdatePhotoPath(ctx context.Context, rollNumber, photoPath string) error {
	m.photoPaths[rollNumber] = photoPath
	return nil
}

func newUploadService(t *testing.T, repo *mockPhotoRepo) *UploadService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewUploadService(repo, store, signer, 1024, []string{"image/png"}, zap.NewNop())
}

func TestUploadServiceSavePhoto(t *testing.T) {
	repo := newMockPhotoRepo()
	repo.students["2021A042"] = &models.Student{RollNumber: "2021A042"}
	svc := newUploadService(t, repo)

	relPath, err := svc.SavePhoto(context.Background(), "2021A042", "image/png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "photos/2021A042.png", relPath)
	assert.Equal(t, relPath, repo.photoPaths["2021A042"])
}

func TestUploadServiceSavePhotoUnsupportedType(t *testing.T) {
	repo := newMockPhotoRepo()
	repo.students["2021A042"] = &models.Student{RollNumber: "2021A042"}
	svc := newUploadService(t, repo)

	_, err := svc.SavePhoto(context.Background(), "2021A042", "image/gif", 4, strings.NewReader("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnsupportedMedia.Code, appErr.Code)
}

func TestUploadServiceSavePhotoTooLarge(t *testing.T) {
	repo := newMockPhotoRepo()
	repo.students["2021A042"] = &models.Student{RollNumber: "2021A042"}
	svc := newUploadService(t, repo)

	_, err := svc.SavePhoto(context.Background(), "2021A042", "image/png", 2048, strings.NewReader("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErr.Code)
}

func TestUploadServiceSavePhotoUnknownStudent(t *testing.T) {
	svc := newUploadService(t, newMockPhotoRepo())

	_, err := svc.SavePhoto(context.Background(), "missing", "image/png", 4, strings.NewReader("data"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUploadServicePhotoURLRoundTrip(t *testing.T) {
	repo := newMockPhotoRepo()
	repo.students["2021A042"] = &models.Student{RollNumber: "2021A042"}
	svc := newUploadService(t, repo)

	_, err := svc.SavePhoto(context.Background(), "2021A042", "image/png", 4, strings.NewReader("data"))
	require.NoError(t, err)
	photoPath := repo.photoPaths["2021A042"]
	repo.students["2021A042"].PhotoPath = &photoPath

	token, expiresAt, err := svc.PhotoURL(context.Background(), "2021A042")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	file, err := svc.OpenByToken(token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestUploadServicePhotoURLWithoutPhoto(t *testing.T) {
	repo := newMockPhotoRepo()
	repo.students["2021A042"] = &models.Student{RollNumber: "2021A042"}
	svc := newUploadService(t, repo)

	_, _, err := svc.PhotoURL(context.Background(), "2021A042")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUploadServiceOpenByTokenTampered(t *testing.T) {
	repo := newMockPhotoRepo()
	repo.students["2021A042"] = &models.Student{RollNumber: "2021A042"}
	svc := newUploadService(t, repo)

	_, err := svc.OpenByToken("not.a.valid.token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
