package service

import (
	"sort"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// Ledger maps each billing period to the payment attempts recorded for it.
type Ledger map[models.PeriodKey][]models.PaymentAttempt

// BuildLedger reconstructs the per-period ledger for one user from a course's
// payment attempts. Entries for other users are dropped and each period's
// attempts are kept in stable createdAt order. Absence of data yields an
// empty ledger, never an error.
func BuildLedger(userID string, attempts []models.PaymentAttempt) Ledger {
	ledger := make(Ledger)
	for _, attempt := range attempts {
		if attempt.UserID != userID {
			continue
		}
		key := attempt.Key()
		ledger[key] = append(ledger[key], attempt)
	}
	for key := range ledger {
		entries := ledger[key]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})
		ledger[key] = entries
	}
	return ledger
}

// SuccessfulAttempt returns the first verified attempt for the period, or nil.
func (l Ledger) SuccessfulAttempt(key models.PeriodKey) *models.PaymentAttempt {
	for i, attempt := range l[key] {
		if attempt.Status == models.PaymentStatusSuccess {
			return &l[key][i]
		}
	}
	return nil
}

// HasPending reports whether an unresolved attempt exists for the period.
func (l Ledger) HasPending(key models.PeriodKey) bool {
	for _, attempt := range l[key] {
		if attempt.Status == models.PaymentStatusPending {
			return true
		}
	}
	return false
}
