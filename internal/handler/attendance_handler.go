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

type attendanceService interface {
	StartSession(ctx context.Context, req service.StartSessionRequest) (*models.AttendanceSession, error)
	ClassView(ctx context.Context, classID string) (*models.ClassSessionView, error)
	MarkPresent(ctx context.Context, sessionID, userID string) (*models.AttendanceSession, error)
	Sweep(ctx context.Context) (int64, error)
}

// AttendanceHandler exposes attendance session endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Start godoc
// @Summary Start a timed attendance session for a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.StartSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *AttendanceHandler) Start(c *gin.Context) {
	var req service.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.StartSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ClassView godoc
// @Summary Resolve the live and recently closed sessions for a class
// @Tags Attendance
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/sessions/current [get]
func (h *AttendanceHandler) ClassView(c *gin.Context) {
	view, err := h.service.ClassView(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// MarkPresent godoc
// @Summary Mark the calling student present in a session
// @Tags Attendance
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{sessionId}/present [post]
func (h *AttendanceHandler) MarkPresent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.service.MarkPresent(c.Request.Context(), c.Param("sessionId"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Sweep godoc
// @Summary Close every session past its deadline
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/sweep [post]
func (h *AttendanceHandler) Sweep(c *gin.Context) {
	swept, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"swept": swept}, nil)
}
