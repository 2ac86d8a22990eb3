package service

import (
	"time"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// LumpCovered decides whether the evaluated period of an elective course is
// satisfied by a prior lump-sum payment.
//
// Coverage is strict: the lump payment is recognised only in the exact
// enrollment period, and only when a verified attempt matches FeesTotal to
// the unit. A payment that differs by even one unit, or lands in any other
// period, grants nothing.
func LumpCovered(course models.Course, approveDate time.Time, period models.PeriodKey, ledger Ledger) bool {
	if course.Type == models.CourseTypeCore {
		return false
	}
	if !course.LumpEligible() {
		return false
	}

	enrollmentPeriod := models.PeriodOf(approveDate)
	windowEnd := enrollmentPeriod.Add(*course.DurationMonths)
	if period.Before(enrollmentPeriod) || !period.Before(windowEnd) {
		return false
	}

	for _, attempt := range ledger[enrollmentPeriod] {
		if attempt.Status == models.PaymentStatusSuccess && attempt.Amount == *course.FeesTotal {
			return true
		}
	}
	return false
}
