package models

import "time"

// CourseType separates the two fee schedules a course can carry.
type CourseType string

// Course types. Core curriculum courses bill monthly only; electives may also
// offer a lump-sum total covering a fixed duration.
const (
	CourseTypeCore     CourseType = "CORE_CURRICULUM"
	CourseTypeElective CourseType = "ELECTIVE"
)

// Course is one offering of the institute.
type Course struct {
	ID             string     `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Type           CourseType `db:"course_type" json:"type"`
	FeesMonthly    int64      `db:"fees_monthly" json:"fees_monthly"`
	FeesTotal      *int64     `db:"fees_total" json:"fees_total,omitempty"`
	DurationMonths *int       `db:"duration_months" json:"duration_months,omitempty"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// LumpEligible reports whether the course can be settled with a single
// lump-sum payment.
func (c Course) LumpEligible() bool {
	return c.Type == CourseTypeElective && c.FeesTotal != nil && c.DurationMonths != nil && *c.DurationMonths > 0
}
