package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// PaymentRepository handles persistence of payment attempts. Rows are append
// only; the pending to success/failed transition belongs to the external
// verification flow.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByCourseAndUser returns every attempt for the pair in creation order.
func (r *PaymentRepository) ListByCourseAndUser(ctx context.Context, courseID, userID string) ([]models.PaymentAttempt, error) {
	const query = `SELECT id, course_id, user_id, period, period_year, amount, transaction_id, status, created_at
        FROM payment_attempts WHERE course_id = $1 AND user_id = $2 ORDER BY created_at`
	var attempts []models.PaymentAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, courseID, userID); err != nil {
		return nil, fmt.Errorf("list payment attempts: %w", err)
	}
	return attempts, nil
}

// ListSuccessfulByUser returns all verified payments for a user, newest first.
func (r *PaymentRepository) ListSuccessfulByUser(ctx context.Context, userID string) ([]models.PaymentAttempt, error) {
	const query = `SELECT id, course_id, user_id, period, period_year, amount, transaction_id, status, created_at
        FROM payment_attempts WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`
	var attempts []models.PaymentAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, userID, models.PaymentStatusSuccess); err != nil {
		return nil, fmt.Errorf("list successful payments: %w", err)
	}
	return attempts, nil
}

// HasPendingForPeriod reports whether an unresolved attempt already exists for
// the (course, user, period) triple.
func (r *PaymentRepository) HasPendingForPeriod(ctx context.Context, courseID, userID string, period models.BillingPeriod, year int) (bool, error) {
	const query = `SELECT 1 FROM payment_attempts
        WHERE course_id = $1 AND user_id = $2 AND period = $3 AND period_year = $4 AND status = $5 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, userID, period, year, models.PaymentStatusPending); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check pending attempt: %w", err)
	}
	return true, nil
}

// Create appends a new payment attempt.
func (r *PaymentRepository) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	if attempt.Status == "" {
		attempt.Status = models.PaymentStatusPending
	}
	const query = `INSERT INTO payment_attempts (id, course_id, user_id, period, period_year, amount, transaction_id, status, created_at)
        VALUES (:id, :course_id, :user_id, :period, :period_year, :amount, :transaction_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return fmt.Errorf("create payment attempt: %w", err)
	}
	return nil
}
