package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// ClassifyPeriod derives the status of a single billing period. Coverage wins
// outright; otherwise a verified attempt beats a pending one, and anything
// else - including failed attempts, which are treated exactly like absent
// ones - is due.
func ClassifyPeriod(course models.Course, approveDate time.Time, period models.PeriodKey, ledger Ledger) models.PeriodStatusEntry {
	entry := models.PeriodStatusEntry{
		Period: period.Period(),
		Year:   period.Year,
	}
	if LumpCovered(course, approveDate, period, ledger) {
		entry.Status = models.PeriodStatusSuccess
		entry.Covered = true
		return entry
	}
	switch {
	case ledger.SuccessfulAttempt(period) != nil:
		entry.Status = models.PeriodStatusSuccess
	case ledger.HasPending(period):
		entry.Status = models.PeriodStatusPending
	default:
		entry.Status = models.PeriodStatusDue
	}
	return entry
}

// DeriveStatuses classifies every period from the enrollment period through
// the current one, in calendar order. Periods before the approve date are
// never evaluated and future periods are never marked.
func DeriveStatuses(course models.Course, enrollment models.Enrollment, ledger Ledger, now time.Time) []models.PeriodStatusEntry {
	start := enrollment.StartPeriod()
	current := models.CurrentPeriod(now)
	keys := models.PeriodsBetween(start, current)
	entries := make([]models.PeriodStatusEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, ClassifyPeriod(course, enrollment.ApproveDate, key, ledger))
	}
	return entries
}

// SelectAction reduces a course's per-period statuses into the single
// actionable state shown to the user. The oldest due period is always
// targeted first so old debt is cleared before the current period.
func SelectAction(course models.Course, enrollment models.Enrollment, entries []models.PeriodStatusEntry, now time.Time) models.PaymentAction {
	current := models.CurrentPeriod(now)

	var currentEntry *models.PeriodStatusEntry
	var due []models.PeriodKey
	for i := range entries {
		key := entries[i].Key()
		if key == current {
			currentEntry = &entries[i]
		}
		if entries[i].Status == models.PeriodStatusDue {
			due = append(due, key)
		}
	}

	if currentEntry != nil {
		switch currentEntry.Status {
		case models.PeriodStatusSuccess:
			return models.PaymentAction{
				Label:        fmt.Sprintf("Paid for %s", current.Label()),
				TargetPeriod: current.Period(),
				TargetYear:   current.Year,
				Enabled:      false,
				Severity:     models.SeverityNone,
			}
		case models.PeriodStatusPending:
			return models.PaymentAction{
				Label:        fmt.Sprintf("Awaiting verification for %s", current.Label()),
				TargetPeriod: current.Period(),
				TargetYear:   current.Year,
				Enabled:      false,
				Severity:     models.SeverityNone,
			}
		}
	}

	target := current
	severity := models.SeverityDue
	if len(due) > 0 {
		// The earliest due period wins regardless of entry order.
		target = due[0]
		for _, key := range due[1:] {
			if key.Before(target) {
				target = key
			}
		}
		if target.Before(current) {
			severity = models.SeverityOverdue
		}
	}

	label := fmt.Sprintf("Pay fees for %s", target.Label())
	if len(due) > 1 {
		label = fmt.Sprintf("Pay fees for %s (%d periods due)", target.Label(), len(due))
	}

	return models.PaymentAction{
		Label:        label,
		TargetPeriod: target.Period(),
		TargetYear:   target.Year,
		Enabled:      true,
		Severity:     severity,
		DueCount:     len(due),
		Amount:       actionAmount(course, enrollment, target),
	}
}

// actionAmount picks the fee the action should collect. The lump total
// applies only when the target is the enrollment period of a lump-eligible
// elective; everywhere else - including elective periods outside the coverage
// window - the monthly fee applies.
func actionAmount(course models.Course, enrollment models.Enrollment, target models.PeriodKey) int64 {
	if course.LumpEligible() && target == enrollment.StartPeriod() {
		return *course.FeesTotal
	}
	return course.FeesMonthly
}
