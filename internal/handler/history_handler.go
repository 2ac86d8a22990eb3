package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-fees-api/internal/models"
	"github.com/noah-isme/coaching-fees-api/internal/service"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
	"github.com/noah-isme/coaching-fees-api/pkg/response"
)

type historyService interface {
	PaymentHistory(ctx context.Context, userID string) ([]models.PaymentHistoryGroup, error)
	SessionHistory(ctx context.Context, userID string) ([]service.SessionHistoryEntry, error)
}

// HistoryHandler exposes read-only history endpoints.
type HistoryHandler struct {
	service historyService
}

// NewHistoryHandler builds a new handler.
func NewHistoryHandler(service historyService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// Payments godoc
// @Summary List verified payments grouped by billing period
// @Tags History
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /history/payments [get]
func (h *HistoryHandler) Payments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	groups, err := h.service.PaymentHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Sessions godoc
// @Summary List class sessions for the caller's courses
// @Tags History
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /history/sessions [get]
func (h *HistoryHandler) Sessions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, err := h.service.SessionHistory(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
