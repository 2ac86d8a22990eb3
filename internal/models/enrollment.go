package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive   EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive EnrollmentStatus = "INACTIVE"
)

// Enrollment links a user to a course. ApproveDate is the authoritative start
// of billing: periods are only ever evaluated from its period forward.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	CourseID    string           `db:"course_id" json:"course_id"`
	ApproveDate time.Time        `db:"approve_date" json:"approve_date"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// StartPeriod returns the first billable period for the enrollment.
func (e Enrollment) StartPeriod() PeriodKey {
	return PeriodOf(e.ApproveDate)
}
