package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

func electiveCourse(total int64, months int) models.Course {
	return models.Course{
		ID:             "course-guitar",
		Name:           "Guitar",
		Type:           models.CourseTypeElective,
		FeesMonthly:    2000,
		FeesTotal:      &total,
		DurationMonths: &months,
		Active:         true,
	}
}

func TestLumpCoveredInsideWindow(t *testing.T) {
	course := electiveCourse(10000, 6)
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 10000, models.PaymentStatusSuccess, approve),
	})

	// March through August are covered, September is not.
	for offset := 0; offset < 6; offset++ {
		key := models.NewPeriodKey(models.PeriodMarch, 2026).Add(offset)
		assert.True(t, LumpCovered(course, approve, key, ledger), key.Label())
	}
	assert.False(t, LumpCovered(course, approve, models.NewPeriodKey(models.PeriodSeptember, 2026), ledger))
}

func TestLumpCoveredRequiresExactAmount(t *testing.T) {
	course := electiveCourse(10000, 6)
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	key := models.NewPeriodKey(models.PeriodApril, 2026)

	short := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 9999, models.PaymentStatusSuccess, approve),
	})
	assert.False(t, LumpCovered(course, approve, key, short))

	over := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 10001, models.PaymentStatusSuccess, approve),
	})
	assert.False(t, LumpCovered(course, approve, key, over))
}

func TestLumpCoveredRequiresEnrollmentPeriod(t *testing.T) {
	course := electiveCourse(10000, 6)
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	// The exact total paid one period late grants nothing.
	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodApril, 2026, 10000, models.PaymentStatusSuccess, approve.AddDate(0, 1, 0)),
	})
	assert.False(t, LumpCovered(course, approve, models.NewPeriodKey(models.PeriodMay, 2026), ledger))
}

func TestLumpCoveredIgnoresNonSuccess(t *testing.T) {
	course := electiveCourse(10000, 6)
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	key := models.NewPeriodKey(models.PeriodApril, 2026)

	for _, status := range []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed} {
		ledger := BuildLedger("u1", []models.PaymentAttempt{
			attempt("u1", models.PeriodMarch, 2026, 10000, status, approve),
		})
		assert.False(t, LumpCovered(course, approve, key, ledger), string(status))
	}
}

func TestLumpCoveredFindsLumpAfterMonthlyPayment(t *testing.T) {
	course := electiveCourse(10000, 6)
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	// A monthly payment in the enrollment period must not mask the lump that
	// follows it.
	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 2000, models.PaymentStatusSuccess, approve),
		attempt("u1", models.PeriodMarch, 2026, 10000, models.PaymentStatusSuccess, approve.Add(time.Hour)),
	})
	assert.True(t, LumpCovered(course, approve, models.NewPeriodKey(models.PeriodJune, 2026), ledger))
}

func TestLumpCoveredCoreCourseNeverCovered(t *testing.T) {
	total := int64(10000)
	months := 6
	course := models.Course{
		ID:             "course-math",
		Type:           models.CourseTypeCore,
		FeesMonthly:    2000,
		FeesTotal:      &total,
		DurationMonths: &months,
	}
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodMarch, 2026, 10000, models.PaymentStatusSuccess, approve),
	})
	assert.False(t, LumpCovered(course, approve, models.NewPeriodKey(models.PeriodApril, 2026), ledger))
}

func TestLumpCoveredNotEligibleWithoutTotal(t *testing.T) {
	course := models.Course{ID: "course-art", Type: models.CourseTypeElective, FeesMonthly: 1500}
	approve := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.False(t, LumpCovered(course, approve, models.NewPeriodKey(models.PeriodMarch, 2026), Ledger{}))
}
