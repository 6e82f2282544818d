package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/scholarsync/scholarsync-api/internal/service"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
	"github.com/scholarsync/scholarsync-api/pkg/response"
)

// UploadHandler exposes profile photo upload and download endpoints.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler creates a new handler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// UploadPhoto godoc
// @Summary Upload profile photo
// @Description Store a profile photo for the student record
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param roll path string true "Roll number"
// @Param photo formData file true "Photo file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /students/{roll}/photo [post]
func (h *UploadHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "photo file required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := fileHeader.Header.Get("Content-Type")
	relPath, err := h.service.SavePhoto(c.Request.Context(), c.Param("roll"), contentType, fileHeader.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"photo_path": relPath})
}

// PhotoURL godoc
// @Summary Get signed photo URL
// @Description Issue a time-limited download token for the student's photo
// @Tags Uploads
// @Produce json
// @Param roll path string true "Roll number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{roll}/photo-url [get]
func (h *UploadHandler) PhotoURL(c *gin.Context) {
	token, expiresAt, err := h.service.PhotoURL(c.Request.Context(), c.Param("roll"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/files/" + token,
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download file
// @Description Serve a stored blob referenced by a signed token
// @Tags Uploads
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	file, err := h.service.OpenByToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := mime.TypeByExtension(filepath.Ext(file.Name()))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
