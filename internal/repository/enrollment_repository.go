package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// EnrollmentRepository reads enrollment records. Enrollments are created by an
// external approval flow; this API never writes them.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByUserAndCourse returns the single enrollment for a (user, course) pair.
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, course_id, approve_date, status, created_at
        FROM enrollments WHERE user_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListActiveByUser returns all active enrollments for a user.
func (r *EnrollmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	const query = `SELECT id, user_id, course_id, approve_date, status, created_at
        FROM enrollments WHERE user_id = $1 AND status = $2 ORDER BY approve_date`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, userID, models.EnrollmentStatusActive); err != nil {
		return nil, err
	}
	return enrollments, nil
}
