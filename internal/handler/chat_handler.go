package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scholarsync/scholarsync-api/internal/service"
	appErrors "github.com/scholarsync/scholarsync-api/pkg/errors"
	"github.com/scholarsync/scholarsync-api/pkg/response"
)

// ChatHandler wires HTTP endpoints to the chat service.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler creates a new handler.
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// History godoc
// @Summary Chat history
// @Description Returns the most recent messages in chronological order
// @Tags Chat
// @Produce json
// @Param limit query int false "Maximum messages"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /chat/messages [get]
func (h *ChatHandler) History(c *gin.Context) {
	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	messages, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Send chat message
// @Description Append a message to the shared feed
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Message body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /chat/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.service.Send(c.Request.Context(), claims.UserID, claims.FullName, payload.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message)
}
