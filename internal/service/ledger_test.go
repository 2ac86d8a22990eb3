package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

func attempt(userID string, period models.BillingPeriod, year int, amount int64, status models.PaymentStatus, createdAt time.Time) models.PaymentAttempt {
	return models.PaymentAttempt{
		ID:         userID + string(period),
		CourseID:   "course-1",
		UserID:     userID,
		Period:     period,
		PeriodYear: year,
		Amount:     amount,
		Status:     status,
		CreatedAt:  createdAt,
	}
}

func TestBuildLedgerFiltersAndGroups(t *testing.T) {
	base := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	attempts := []models.PaymentAttempt{
		attempt("u1", models.PeriodJanuary, 2026, 2000, models.PaymentStatusSuccess, base),
		attempt("u2", models.PeriodJanuary, 2026, 2000, models.PaymentStatusSuccess, base),
		attempt("u1", models.PeriodFebruary, 2026, 2000, models.PaymentStatusPending, base.AddDate(0, 1, 0)),
	}

	ledger := BuildLedger("u1", attempts)

	require.Len(t, ledger, 2)
	assert.Len(t, ledger[models.NewPeriodKey(models.PeriodJanuary, 2026)], 1)
	assert.Len(t, ledger[models.NewPeriodKey(models.PeriodFebruary, 2026)], 1)
}

func TestBuildLedgerOrdersByCreatedAt(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	later := attempt("u1", models.PeriodMarch, 2026, 2000, models.PaymentStatusSuccess, base.Add(2*time.Hour))
	earlier := attempt("u1", models.PeriodMarch, 2026, 2000, models.PaymentStatusFailed, base)
	earlier.ID = "first"
	later.ID = "second"

	ledger := BuildLedger("u1", []models.PaymentAttempt{later, earlier})

	entries := ledger[models.NewPeriodKey(models.PeriodMarch, 2026)]
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].ID)
	assert.Equal(t, "second", entries[1].ID)
}

func TestBuildLedgerEmptyInput(t *testing.T) {
	ledger := BuildLedger("u1", nil)
	assert.Empty(t, ledger)
	assert.Nil(t, ledger.SuccessfulAttempt(models.NewPeriodKey(models.PeriodJanuary, 2026)))
	assert.False(t, ledger.HasPending(models.NewPeriodKey(models.PeriodJanuary, 2026)))
}

func TestLedgerSuccessfulAttemptSkipsFailures(t *testing.T) {
	base := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	key := models.NewPeriodKey(models.PeriodApril, 2026)
	ledger := BuildLedger("u1", []models.PaymentAttempt{
		attempt("u1", models.PeriodApril, 2026, 2000, models.PaymentStatusFailed, base),
		attempt("u1", models.PeriodApril, 2026, 2000, models.PaymentStatusSuccess, base.Add(time.Hour)),
	})

	success := ledger.SuccessfulAttempt(key)
	require.NotNil(t, success)
	assert.Equal(t, models.PaymentStatusSuccess, success.Status)
	assert.False(t, ledger.HasPending(key))
}
