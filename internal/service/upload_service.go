package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/scholarsync/scholarsync-api/internal/models"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
	"github.com/scholarsync/scholarsync-api/pkg/storage"
)

type photoRepository interface {
	FindByRollNumber(ctx context.Context, rollNumber string) (*models.Student, error)
	UpdatePhotoPath(ctx context.Context, rollNumber, photoPath string) error
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadService stores profile photos and issues signed download URLs.
type UploadService struct {
	repo         photoRepository
	store        *storage.LocalStorage
	signer       *storage.SignedURLSigner
	maxSizeBytes int64
	allowedMIMEs map[string]struct{}
	logger       *zap.Logger
}

// NewUploadService constructs the upload service.
func NewUploadService(repo photoRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, maxSizeBytes int64, allowedMIMEs []string, logger *zap.Logger) *UploadService {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 5 * 1024 * 1024
	}
	allowed := make(map[string]struct{}, len(allowedMIMEs))
	for _, mime := range allowedMIMEs {
		allowed[mime] = struct{}{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{repo: repo, store: store, signer: signer, maxSizeBytes: maxSizeBytes, allowedMIMEs: allowed, logger: logger}
}

// SavePhoto validates and stores an uploaded profile photo, updating the
// student record's photo reference.
func (s *UploadService) SavePhoto(ctx context.Context, rollNumber, contentType string, size int64, r io.Reader) (string, error) {
	if _, err := s.repo.FindByRollNumber(ctx, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if len(s.allowedMIMEs) > 0 {
		if _, ok := s.allowedMIMEs[contentType]; !ok {
			return "", appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("unsupported content type %q", contentType))
		}
	}
	if size > s.maxSizeBytes {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, "photo exceeds the size limit")
	}

	ext, ok := photoExtensions[contentType]
	if !ok {
		ext = ".bin"
	}
	relPath := fmt.Sprintf("photos/%s%s", rollNumber, ext)

	if _, err := s.store.SaveStream(relPath, io.LimitReader(r, s.maxSizeBytes)); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	if err := s.repo.UpdatePhotoPath(ctx, rollNumber, relPath); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update photo reference")
	}

	return relPath, nil
}

// PhotoURL returns a signed, time-limited token for the student's photo.
func (s *UploadService) PhotoURL(ctx context.Context, rollNumber string) (string, time.Time, error) {
	student, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.PhotoPath == nil || *student.PhotoPath == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "student has no photo")
	}

	token, expiresAt, err := s.signer.Generate(rollNumber, *student.PhotoPath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url")
	}
	return token, expiresAt, nil
}

// OpenByToken verifies a signed token and opens the referenced blob.
func (s *UploadService) OpenByToken(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	return file, nil
}
