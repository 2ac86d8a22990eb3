package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

type paymentHistoryStub struct {
	attempts []models.PaymentAttempt
}

func (s paymentHistoryStub) ListSuccessfulByUser(ctx context.Context, userID string) ([]models.PaymentAttempt, error) {
	return s.attempts, nil
}

type sessionHistoryStub struct {
	byCourse map[string][]models.AttendanceSession
}

func (s sessionHistoryStub) ListAttendedByCourse(ctx context.Context, courseID string) ([]models.AttendanceSession, error) {
	return s.byCourse[courseID], nil
}

type enrollmentListerStub struct {
	enrollments []models.Enrollment
}

func (s enrollmentListerStub) ListActiveByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	return s.enrollments, nil
}

func TestPaymentHistoryGroupsByPeriodNewestFirst(t *testing.T) {
	base := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	payments := paymentHistoryStub{attempts: []models.PaymentAttempt{
		attempt("u1", models.PeriodJanuary, 2026, 2000, models.PaymentStatusSuccess, base),
		attempt("u1", models.PeriodMarch, 2026, 2000, models.PaymentStatusSuccess, base.AddDate(0, 2, 0)),
		{
			ID: "second-jan", UserID: "u1", CourseID: "course-2",
			Period: models.PeriodJanuary, PeriodYear: 2026, Amount: 1500,
			Status: models.PaymentStatusSuccess, CreatedAt: base.Add(time.Hour),
		},
	}}
	svc := NewHistoryService(payments, sessionHistoryStub{}, enrollmentListerStub{}, courseReaderStub{}, nil)

	groups, err := svc.PaymentHistory(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, models.PeriodMarch, groups[0].Period)
	assert.Equal(t, models.PeriodJanuary, groups[1].Period)
	assert.Equal(t, int64(3500), groups[1].Total)
	assert.Len(t, groups[1].Payments, 2)
}

func TestPaymentHistoryEmpty(t *testing.T) {
	svc := NewHistoryService(paymentHistoryStub{}, sessionHistoryStub{}, enrollmentListerStub{}, courseReaderStub{}, nil)

	groups, err := svc.PaymentHistory(context.Background(), "u1")

	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSessionHistoryFlagsAttendance(t *testing.T) {
	started := time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC)
	course := coreCourse()
	sessions := sessionHistoryStub{byCourse: map[string][]models.AttendanceSession{
		course.ID: {
			{
				ID: "sess-1", ClassID: "class-1", CourseID: course.ID, Topic: "Fractions",
				StartedAt: started, ExpiresAt: started.Add(30 * time.Minute),
				Status: models.SessionStatusInactive, StudentsPresent: []string{"u1", "u2"},
			},
			{
				ID: "sess-2", ClassID: "class-1", CourseID: course.ID, Topic: "Decimals",
				StartedAt: started.AddDate(0, 0, 1), ExpiresAt: started.AddDate(0, 0, 1).Add(30 * time.Minute),
				Status: models.SessionStatusInactive, StudentsPresent: []string{"u2"},
			},
		},
	}}
	enrollments := enrollmentListerStub{enrollments: []models.Enrollment{
		{ID: "enr-1", UserID: "u1", CourseID: course.ID, Status: models.EnrollmentStatusActive},
	}}
	courses := courseReaderStub{courses: map[string]*models.Course{course.ID: &course}}
	svc := NewHistoryService(paymentHistoryStub{}, sessions, enrollments, courses, nil)

	entries, err := svc.SessionHistory(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "sess-2", entries[0].SessionID)
	assert.False(t, entries[0].Attended)
	assert.Equal(t, "sess-1", entries[1].SessionID)
	assert.True(t, entries[1].Attended)
	assert.Equal(t, course.Name, entries[0].CourseName)
}

func TestPaymentsDatasetRows(t *testing.T) {
	base := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	payments := paymentHistoryStub{attempts: []models.PaymentAttempt{
		attempt("u1", models.PeriodFebruary, 2026, 2000, models.PaymentStatusSuccess, base),
	}}
	svc := NewHistoryService(payments, sessionHistoryStub{}, enrollmentListerStub{}, courseReaderStub{}, nil)

	dataset, err := svc.PaymentsDataset(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []string{"Period", "Year", "Course", "Amount", "Transaction", "Paid At"}, dataset.Headers)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "February", dataset.Rows[0][0])
	assert.Equal(t, "2026", dataset.Rows[0][1])
	assert.Equal(t, "2000", dataset.Rows[0][3])
}
