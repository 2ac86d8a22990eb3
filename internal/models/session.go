package models

import (
	"time"

	"github.com/lib/pq"
)

// SessionStatus is the stored state of an attendance session. The stored flag
// is a lazily-applied cache of wall-clock expiry, corrected by the sweep.
type SessionStatus string

// Possible session statuses.
const (
	SessionStatusActive   SessionStatus = "ACTIVE"
	SessionStatusInactive SessionStatus = "INACTIVE"
)

// AttendanceSession is one timed class session. StudentsPresent grows
// monotonically while the session is active.
type AttendanceSession struct {
	ID              string         `db:"id" json:"id"`
	ClassID         string         `db:"class_id" json:"class_id"`
	CourseID        string         `db:"course_id" json:"course_id"`
	Topic           string         `db:"topic" json:"topic"`
	StartedAt       time.Time      `db:"started_at" json:"started_at"`
	ExpiresAt       time.Time      `db:"expires_at" json:"expires_at"`
	TimerMinutes    int            `db:"timer_minutes" json:"timer_minutes"`
	Status          SessionStatus  `db:"status" json:"status"`
	StudentsPresent pq.StringArray `db:"students_present" json:"students_present"`
}

// Expired reports whether the session is logically expired at now, regardless
// of the stored status flag.
func (s AttendanceSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasStudent reports whether the user is already marked present.
func (s AttendanceSession) HasStudent(userID string) bool {
	for _, id := range s.StudentsPresent {
		if id == userID {
			return true
		}
	}
	return false
}

// ClassSessionView is the UI-facing projection for one class: the currently
// active session, if any, plus a recently closed one still inside the display
// window.
type ClassSessionView struct {
	Active         *AttendanceSession `json:"active,omitempty"`
	RecentlyClosed *AttendanceSession `json:"recently_closed,omitempty"`
}
