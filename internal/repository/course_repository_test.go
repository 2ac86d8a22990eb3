package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

func courseColumns() []string {
	return []string{"id", "name", "course_type", "fees_monthly", "fees_total", "duration_months", "active", "created_at", "updated_at"}
}

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseColumns()).
		AddRow("course-guitar", "Guitar", "ELECTIVE", 2000, 10000, 6, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, course_type, fees_monthly, fees_total, duration_months, active, created_at, updated_at").
		WithArgs("course-guitar").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "course-guitar")
	require.NoError(t, err)
	assert.Equal(t, models.CourseTypeElective, course.Type)
	require.NotNil(t, course.FeesTotal)
	assert.Equal(t, int64(10000), *course.FeesTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseColumns()).
		AddRow("course-guitar", "Guitar", "ELECTIVE", 2000, 10000, 6, true, time.Now(), time.Now()).
		AddRow("course-math", "Mathematics", "CORE_CURRICULUM", 2000, nil, nil, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, course_type, fees_monthly, fees_total, duration_months, active, created_at, updated_at").
		WillReturnRows(rows)

	courses, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Guitar", courses[0].Name)
	assert.Nil(t, courses[1].FeesTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
