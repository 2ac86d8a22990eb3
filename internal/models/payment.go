package models

import "time"

// PaymentStatus is the lifecycle state of a single payment attempt.
type PaymentStatus string

// Possible payment attempt statuses. A failed attempt leaves no trace in
// derived statuses; only pending and success are load-bearing.
const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// PaymentAttempt is one recorded attempt to pay a billing period. Multiple
// attempts may exist per (course, user, period); rows are append-only and the
// status transitions pending to success or failed exactly once, driven by an
// external verification step.
type PaymentAttempt struct {
	ID            string        `db:"id" json:"id"`
	CourseID      string        `db:"course_id" json:"course_id"`
	UserID        string        `db:"user_id" json:"user_id"`
	Period        BillingPeriod `db:"period" json:"period"`
	PeriodYear    int           `db:"period_year" json:"period_year"`
	Amount        int64         `db:"amount" json:"amount"`
	TransactionID string        `db:"transaction_id" json:"transaction_id"`
	Status        PaymentStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Key returns the billing period key the attempt targets.
func (p PaymentAttempt) Key() PeriodKey {
	return NewPeriodKey(p.Period, p.PeriodYear)
}

// PeriodStatus is the derived status of one billing period. It is computed
// fresh on every read and never persisted.
type PeriodStatus string

// Derived period statuses.
const (
	PeriodStatusDue     PeriodStatus = "DUE"
	PeriodStatusPending PeriodStatus = "PENDING"
	PeriodStatusSuccess PeriodStatus = "SUCCESS"
)

// PeriodStatusEntry is one row of the per-course status map.
type PeriodStatusEntry struct {
	Period  BillingPeriod `json:"period"`
	Year    int           `json:"year"`
	Status  PeriodStatus  `json:"status"`
	Covered bool          `json:"covered"`
}

// Key returns the period key of the entry.
func (e PeriodStatusEntry) Key() PeriodKey {
	return NewPeriodKey(e.Period, e.Year)
}

// ActionSeverity grades the urgency of a payment action.
type ActionSeverity string

// Action severities.
const (
	SeverityNone    ActionSeverity = "NONE"
	SeverityDue     ActionSeverity = "DUE"
	SeverityOverdue ActionSeverity = "OVERDUE"
)

// PaymentAction is the single actionable state derived from a course's
// per-period statuses.
type PaymentAction struct {
	Label        string         `json:"label"`
	TargetPeriod BillingPeriod  `json:"target_period"`
	TargetYear   int            `json:"target_year"`
	Enabled      bool           `json:"enabled"`
	Severity     ActionSeverity `json:"severity"`
	DueCount     int            `json:"due_count"`
	Amount       int64          `json:"amount"`
}

// PaymentHistoryGroup is a calendar-ordered bucket of successful payments.
type PaymentHistoryGroup struct {
	Period   BillingPeriod    `json:"period"`
	Year     int              `json:"year"`
	Total    int64            `json:"total"`
	Payments []PaymentAttempt `json:"payments"`
}
