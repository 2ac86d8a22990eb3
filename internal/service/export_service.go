package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-fees-api/internal/models"
	"github.com/noah-isme/coaching-fees-api/internal/repository"
	"github.com/noah-isme/coaching-fees-api/pkg/export"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
	"github.com/noah-isme/coaching-fees-api/pkg/jobs"
	"github.com/noah-isme/coaching-fees-api/pkg/storage"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
}

type datasetBuilder interface {
	PaymentsDataset(ctx context.Context, userID string) (*export.Dataset, error)
	SessionsDataset(ctx context.Context, userID string) (*export.Dataset, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportService runs asynchronous history exports: a request creates a queued
// job, a worker renders the dataset to a file, and the result is fetched
// through a signed download URL.
type ExportService struct {
	store     exportJobStore
	history   datasetBuilder
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService. The queue is attached later
// via SetQueue because the queue's handler is this service.
func NewExportService(store exportJobStore, history datasetBuilder, fileStore fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store:     store,
		history:   history,
		storage:   fileStore,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetQueue attaches the worker queue used to dispatch jobs.
func (s *ExportService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// ExportRequest asks for a history export in the given format.
type ExportRequest struct {
	Type   string `json:"type" validate:"required,oneof=payments sessions"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// RequestExport records a queued job and hands it to the worker pool.
func (s *ExportService) RequestExport(ctx context.Context, userID string, req ExportRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export workers are not running")
	}

	job := &models.ExportJob{
		Type:      models.ExportType(req.Type),
		Format:    models.ExportFormat(req.Format),
		Status:    models.ExportStatusQueued,
		CreatedBy: userID,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "history_export"}); err != nil {
		message := "export queue unavailable"
		s.markFailed(ctx, job.ID, message)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
	return job, nil
}

// GetJob returns the job if it belongs to the requesting user.
func (s *ExportService) GetJob(ctx context.Context, userID, jobID string) (*models.ExportJob, error) {
	job, err := s.store.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.CreatedBy != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export job belongs to another user")
	}
	return job, nil
}

// HandleJob is the queue handler: it renders the dataset and stores the file.
// Returning an error lets the queue retry the job.
func (s *ExportService) HandleJob(ctx context.Context, queued jobs.Job) error {
	job, err := s.store.GetByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", queued.ID, err)
	}
	if job.Status == models.ExportStatusDone {
		return nil
	}

	s.updateStatus(ctx, job.ID, models.ExportStatusProcessing, 10)

	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}
	s.updateStatus(ctx, job.ID, models.ExportStatusProcessing, 50)

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(*dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(*dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", job.Type, job.CreatedBy, time.Now().UTC().Format("20060102_150405"), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.markFailed(ctx, job.ID, err.Error())
		return err
	}
	resultURL := fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)

	done := models.ExportStatusDone
	progress := 100
	now := time.Now().UTC()
	if err := s.store.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:     &done,
		Progress:   &progress,
		ResultPath: &relPath,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finalize export job %s: %w", job.ID, err)
	}

	s.logger.Info("history export completed",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Format)))
	return nil
}

// OpenDownload validates the signed token and opens the stored file.
func (s *ExportService) OpenDownload(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, nil
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (*export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypePayments:
		dataset, err := s.history.PaymentsDataset(ctx, job.CreatedBy)
		return dataset, "Payment History", err
	case models.ExportTypeSessions:
		dataset, err := s.history.SessionsDataset(ctx, job.CreatedBy)
		return dataset, "Attendance History", err
	default:
		return nil, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (s *ExportService) updateStatus(ctx context.Context, jobID string, status models.ExportStatus, progress int) {
	if err := s.store.Update(ctx, jobID, repository.UpdateExportJobParams{Status: &status, Progress: &progress}); err != nil {
		s.logger.Warn("failed to update export job", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ExportService) markFailed(ctx context.Context, jobID, message string) {
	failed := models.ExportStatusFailed
	now := time.Now().UTC()
	if err := s.store.Update(ctx, jobID, repository.UpdateExportJobParams{
		Status:       &failed,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
