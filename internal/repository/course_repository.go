package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// CourseRepository handles persistence of course offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, course_type, fees_monthly, fees_total, duration_months, active, created_at, updated_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListActive returns all active course offerings.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, course_type, fees_monthly, fees_total, duration_months, active, created_at, updated_at
        FROM courses WHERE active = true ORDER BY name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, err
	}
	return courses, nil
}
