package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

func coreCourse() models.Course {
	return models.Course{
		ID:          "course-math",
		Name:        "Mathematics",
		Type:        models.CourseTypeCore,
		FeesMonthly: 2000,
		Active:      true,
	}
}

func enrollmentOn(approve time.Time) models.Enrollment {
	return models.Enrollment{
		ID:          "enr-1",
		UserID:      "u1",
		CourseID:    "course-math",
		ApproveDate: approve,
		Status:      models.EnrollmentStatusActive,
	}
}

func TestDeriveStatusesMonthlyCourse(t *testing.T) {
	course := coreCourse()
	enrollment := enrollmentOn(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodJanuary, 2026, 2000, models.PaymentStatusSuccess, enrollment.ApproveDate),
		attempt("u1", models.PeriodFebruary, 2026, 2000, models.PaymentStatusSuccess, enrollment.ApproveDate.AddDate(0, 1, 0)),
		attempt("u1", models.PeriodMarch, 2026, 2000, models.PaymentStatusFailed, enrollment.ApproveDate.AddDate(0, 2, 0)),
	})

	entries := DeriveStatuses(course, enrollment, ledger, now)

	require.Len(t, entries, 4)
	assert.Equal(t, models.PeriodStatusSuccess, entries[0].Status)
	assert.Equal(t, models.PeriodStatusSuccess, entries[1].Status)
	assert.Equal(t, models.PeriodStatusDue, entries[2].Status)
	assert.Equal(t, models.PeriodStatusDue, entries[3].Status)
}

func TestDeriveStatusesExcludesPreEnrollmentPeriods(t *testing.T) {
	course := coreCourse()
	enrollment := enrollmentOn(time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	entries := DeriveStatuses(course, enrollment, Ledger{}, now)

	require.Len(t, entries, 2)
	assert.Equal(t, models.PeriodMarch, entries[0].Period)
	assert.Equal(t, models.PeriodApril, entries[1].Period)
}

func TestDeriveStatusesLumpCoverageMarksEntries(t *testing.T) {
	course := electiveCourse(10000, 6)
	enrollment := enrollmentOn(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 10000, models.PaymentStatusSuccess, enrollment.ApproveDate),
	})

	entries := DeriveStatuses(course, enrollment, ledger, now)

	require.Len(t, entries, 4)
	for _, entry := range entries {
		assert.Equal(t, models.PeriodStatusSuccess, entry.Status, entry.Key().Label())
		assert.True(t, entry.Covered, entry.Key().Label())
	}
}

func TestClassifyPeriodPendingBeatsDue(t *testing.T) {
	course := coreCourse()
	approve := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	key := models.NewPeriodKey(models.PeriodJanuary, 2026)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodJanuary, 2026, 2000, models.PaymentStatusFailed, approve),
		attempt("u1", models.PeriodJanuary, 2026, 2000, models.PaymentStatusPending, approve.Add(time.Hour)),
	})

	entry := ClassifyPeriod(course, approve, key, ledger)
	assert.Equal(t, models.PeriodStatusPending, entry.Status)
}

func TestSelectActionTargetsOldestDue(t *testing.T) {
	course := coreCourse()
	enrollment := enrollmentOn(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodJanuary, 2026, 2000, models.PaymentStatusSuccess, enrollment.ApproveDate),
		attempt("u1", models.PeriodFebruary, 2026, 2000, models.PaymentStatusSuccess, enrollment.ApproveDate),
	})

	entries := DeriveStatuses(course, enrollment, ledger, now)
	action := SelectAction(course, enrollment, entries, now)

	assert.True(t, action.Enabled)
	assert.Equal(t, models.PeriodMarch, action.TargetPeriod)
	assert.Equal(t, 2026, action.TargetYear)
	assert.Equal(t, models.SeverityOverdue, action.Severity)
	assert.Equal(t, 2, action.DueCount)
	assert.Equal(t, int64(2000), action.Amount)
	assert.Contains(t, action.Label, "March 2026")
	assert.Contains(t, action.Label, "2 periods due")
}

func TestSelectActionCurrentPaidDisables(t *testing.T) {
	course := coreCourse()
	enrollment := enrollmentOn(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodApril, 2026, 2000, models.PaymentStatusSuccess, enrollment.ApproveDate),
	})

	entries := DeriveStatuses(course, enrollment, ledger, now)
	action := SelectAction(course, enrollment, entries, now)

	assert.False(t, action.Enabled)
	assert.Equal(t, models.SeverityNone, action.Severity)
	assert.Contains(t, action.Label, "Paid for April 2026")
}

func TestSelectActionCurrentPendingDisables(t *testing.T) {
	course := coreCourse()
	enrollment := enrollmentOn(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodApril, 2026, 2000, models.PaymentStatusPending, enrollment.ApproveDate),
	})

	entries := DeriveStatuses(course, enrollment, ledger, now)
	action := SelectAction(course, enrollment, entries, now)

	assert.False(t, action.Enabled)
	assert.Contains(t, action.Label, "Awaiting verification")
}

func TestSelectActionCurrentPeriodDue(t *testing.T) {
	course := coreCourse()
	enrollment := enrollmentOn(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)

	entries := DeriveStatuses(course, enrollment, Ledger{}, now)
	action := SelectAction(course, enrollment, entries, now)

	assert.True(t, action.Enabled)
	assert.Equal(t, models.PeriodApril, action.TargetPeriod)
	assert.Equal(t, models.SeverityDue, action.Severity)
	assert.Equal(t, 1, action.DueCount)
	assert.NotContains(t, action.Label, "periods due")
}

func TestSelectActionLumpAmountAtEnrollmentPeriod(t *testing.T) {
	course := electiveCourse(10000, 6)
	enrollment := enrollmentOn(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	entries := DeriveStatuses(course, enrollment, Ledger{}, now)
	action := SelectAction(course, enrollment, entries, now)

	assert.True(t, action.Enabled)
	assert.Equal(t, int64(10000), action.Amount)
}

func TestSelectActionMonthlyAmountOutsideCoverageWindow(t *testing.T) {
	course := electiveCourse(10000, 6)
	enrollment := enrollmentOn(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)

	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 10000, models.PaymentStatusSuccess, enrollment.ApproveDate),
	})

	entries := DeriveStatuses(course, enrollment, ledger, now)
	action := SelectAction(course, enrollment, entries, now)

	// Coverage ran out in August; September reverts to the monthly fee.
	assert.True(t, action.Enabled)
	assert.Equal(t, models.PeriodSeptember, action.TargetPeriod)
	assert.Equal(t, int64(2000), action.Amount)
}
