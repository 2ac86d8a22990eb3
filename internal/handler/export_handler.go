package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-fees-api/internal/models"
	"github.com/noah-isme/coaching-fees-api/internal/service"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
	"github.com/noah-isme/coaching-fees-api/pkg/response"
)

type exportService interface {
	RequestExport(ctx context.Context, userID string, req service.ExportRequest) (*models.ExportJob, error)
	GetJob(ctx context.Context, userID, jobID string) (*models.ExportJob, error)
	OpenDownload(token string) (*os.File, error)
}

// ExportHandler exposes asynchronous history export endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Request godoc
// @Summary Queue a history export
// @Tags History
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /history/export [post]
func (h *ExportHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.service.RequestExport(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Check the status of an export job
// @Tags History
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /history/export/{jobId} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.service.GetJob(c.Request.Context(), claims.UserID, c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download streams the rendered export file for a valid signed token.
// The token itself authorizes the request, so this route carries no JWT.
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.OpenDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export file"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(file.Name()))
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
