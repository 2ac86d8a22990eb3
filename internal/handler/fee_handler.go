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

type feeService interface {
	Courses(ctx context.Context) ([]models.Course, error)
	StatusMap(ctx context.Context, userID, courseID string) (*service.CourseFeeStatus, error)
	Action(ctx context.Context, userID, courseID string) (*models.PaymentAction, error)
	SubmitPayment(ctx context.Context, userID, courseID string, req service.SubmitPaymentRequest) (*models.PaymentAttempt, error)
}

// FeeHandler exposes fee status and payment endpoints.
type FeeHandler struct {
	service feeService
}

// NewFeeHandler builds a new handler.
func NewFeeHandler(service feeService) *FeeHandler {
	return &FeeHandler{service: service}
}

// List godoc
// @Summary List active course offerings with their fee schedules
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *FeeHandler) List(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Status godoc
// @Summary Derive the per-period fee status map for a course
// @Tags Fees
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/fees/status [get]
func (h *FeeHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.service.StatusMap(c.Request.Context(), claims.UserID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Action godoc
// @Summary Derive the single payment action for a course
// @Tags Fees
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/fees/action [get]
func (h *FeeHandler) Action(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	action, err := h.service.Action(c.Request.Context(), claims.UserID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, action, nil)
}

// SubmitPayment godoc
// @Summary Record a payment attempt for a billing period
// @Tags Fees
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body service.SubmitPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{courseId}/payments [post]
func (h *FeeHandler) SubmitPayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	attempt, err := h.service.SubmitPayment(c.Request.Context(), claims.UserID, c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attempt)
}
