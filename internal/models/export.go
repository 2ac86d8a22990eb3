package models

import "time"

// ExportFormat selects the rendered output type.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportType selects which history projection is exported.
type ExportType string

// Supported export types.
const (
	ExportTypePayments ExportType = "payments"
	ExportTypeSessions ExportType = "sessions"
)

// ExportStatus is the lifecycle state of an export job.
type ExportStatus string

// Export job statuses.
const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusDone       ExportStatus = "DONE"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks an asynchronous history export.
type ExportJob struct {
	ID           string       `db:"id" json:"id"`
	Type         ExportType   `db:"export_type" json:"type"`
	Format       ExportFormat `db:"format" json:"format"`
	Status       ExportStatus `db:"status" json:"status"`
	Progress     int          `db:"progress" json:"progress"`
	CreatedBy    string       `db:"created_by" json:"created_by"`
	ResultPath   *string      `db:"result_path" json:"-"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
