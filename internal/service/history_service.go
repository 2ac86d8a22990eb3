package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-fees-api/internal/models"
	"github.com/noah-isme/coaching-fees-api/pkg/export"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
)

type paymentHistoryReader interface {
	ListSuccessfulByUser(ctx context.Context, userID string) ([]models.PaymentAttempt, error)
}

type sessionHistoryReader interface {
	ListAttendedByCourse(ctx context.Context, courseID string) ([]models.AttendanceSession, error)
}

type enrollmentLister interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
}

// HistoryService aggregates a student's verified payments and attended
// sessions into read-only history views and export datasets.
type HistoryService struct {
	payments    paymentHistoryReader
	sessions    sessionHistoryReader
	enrollments enrollmentLister
	courses     courseReader
	logger      *zap.Logger
}

// NewHistoryService constructs the history service.
func NewHistoryService(payments paymentHistoryReader, sessions sessionHistoryReader, enrollments enrollmentLister, courses courseReader, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		payments:    payments,
		sessions:    sessions,
		enrollments: enrollments,
		courses:     courses,
		logger:      logger,
	}
}

// PaymentHistory groups a user's verified payments by billing period, most
// recent period first. Pending and failed attempts never appear here.
func (s *HistoryService) PaymentHistory(ctx context.Context, userID string) ([]models.PaymentHistoryGroup, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}

	attempts, err := s.payments.ListSuccessfulByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment history")
	}

	grouped := make(map[models.PeriodKey]*models.PaymentHistoryGroup)
	for _, attempt := range attempts {
		key := attempt.Key()
		group, ok := grouped[key]
		if !ok {
			group = &models.PaymentHistoryGroup{Period: key.Period(), Year: key.Year}
			grouped[key] = group
		}
		group.Total += attempt.Amount
		group.Payments = append(group.Payments, attempt)
	}

	keys := make([]models.PeriodKey, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[j].Before(keys[i])
	})

	groups := make([]models.PaymentHistoryGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *grouped[key])
	}
	return groups, nil
}

// SessionHistoryEntry is one attended session in a student's history.
type SessionHistoryEntry struct {
	SessionID  string    `json:"session_id"`
	CourseID   string    `json:"course_id"`
	CourseName string    `json:"course_name"`
	Topic      string    `json:"topic"`
	Date       time.Time `json:"date"`
	Attended   bool      `json:"attended"`
}

// SessionHistory lists the sessions held for the user's active courses, newest
// first, flagging the ones the user was marked present in.
func (s *HistoryService) SessionHistory(ctx context.Context, userID string) ([]SessionHistoryEntry, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}

	enrollments, err := s.enrollments.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	var entries []SessionHistoryEntry
	for _, enrollment := range enrollments {
		course, err := s.courses.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("enrollment references unknown course", zap.String("course_id", enrollment.CourseID))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		sessions, err := s.sessions.ListAttendedByCourse(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
		}
		for _, session := range sessions {
			entries = append(entries, SessionHistoryEntry{
				SessionID:  session.ID,
				CourseID:   course.ID,
				CourseName: course.Name,
				Topic:      session.Topic,
				Date:       session.StartedAt,
				Attended:   session.HasStudent(userID),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[j].Date.Before(entries[i].Date)
	})
	return entries, nil
}

// PaymentsDataset flattens the payment history into an exportable table.
func (s *HistoryService) PaymentsDataset(ctx context.Context, userID string) (*export.Dataset, error) {
	groups, err := s.PaymentHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	dataset := &export.Dataset{
		Headers: []string{"Period", "Year", "Course", "Amount", "Transaction", "Paid At"},
	}
	for _, group := range groups {
		for _, payment := range group.Payments {
			dataset.Rows = append(dataset.Rows, []string{
				string(payment.Period),
				strconv.Itoa(payment.PeriodYear),
				payment.CourseID,
				strconv.FormatInt(payment.Amount, 10),
				payment.TransactionID,
				payment.CreatedAt.Format(time.RFC3339),
			})
		}
	}
	return dataset, nil
}

// SessionsDataset flattens the session history into an exportable table.
func (s *HistoryService) SessionsDataset(ctx context.Context, userID string) (*export.Dataset, error) {
	entries, err := s.SessionHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	dataset := &export.Dataset{
		Headers: []string{"Date", "Course", "Topic", "Attended"},
	}
	for _, entry := range entries {
		attended := "No"
		if entry.Attended {
			attended = "Yes"
		}
		dataset.Rows = append(dataset.Rows, []string{
			entry.Date.Format("2006-01-02"),
			entry.CourseName,
			entry.Topic,
			attended,
		})
	}
	return dataset, nil
}
