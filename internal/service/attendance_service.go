package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-fees-api/internal/models"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
)

type sessionStore interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	FindActiveByClass(ctx context.Context, classID string) (*models.AttendanceSession, error)
	ListRecentByClass(ctx context.Context, classID string, cutoff time.Time) ([]models.AttendanceSession, error)
	Create(ctx context.Context, session *models.AttendanceSession) error
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	AppendPresent(ctx context.Context, sessionID, userID string, now time.Time) (bool, error)
}

// AttendanceService manages timed attendance sessions. Expiry is always judged
// against the wall clock, never the stored status flag, so a session is closed
// the instant its deadline passes even if no sweep has run yet.
type AttendanceService struct {
	sessions             sessionStore
	metrics              *MetricsService
	validator            *validator.Validate
	logger               *zap.Logger
	recentlyClosedWindow time.Duration
	now                  func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(sessions sessionStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, recentlyClosedWindow time.Duration) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recentlyClosedWindow <= 0 {
		recentlyClosedWindow = time.Hour
	}
	return &AttendanceService{
		sessions:             sessions,
		metrics:              metrics,
		validator:            validate,
		logger:               logger,
		recentlyClosedWindow: recentlyClosedWindow,
		now:                  time.Now,
	}
}

// StartSessionRequest opens a new timed session for a class.
type StartSessionRequest struct {
	ClassID      string `json:"class_id" validate:"required"`
	CourseID     string `json:"course_id" validate:"required"`
	Topic        string `json:"topic" validate:"required"`
	TimerMinutes int    `json:"timer_minutes" validate:"required,min=1,max=480"`
}

// StartSession opens a session for the class. A class can hold at most one
// live session, so the request is rejected while a previous one is still
// inside its timer.
func (s *AttendanceService) StartSession(ctx context.Context, req StartSessionRequest) (*models.AttendanceSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	now := s.now()
	active, err := s.sessions.FindActiveByClass(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active session")
	}
	if active != nil && !active.Expired(now) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an attendance session is already running for this class")
	}

	session := &models.AttendanceSession{
		ClassID:      req.ClassID,
		CourseID:     req.CourseID,
		Topic:        req.Topic,
		StartedAt:    now,
		ExpiresAt:    now.Add(time.Duration(req.TimerMinutes) * time.Minute),
		TimerMinutes: req.TimerMinutes,
		Status:       models.SessionStatusActive,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start session")
	}

	s.logger.Info("attendance session started",
		zap.String("session_id", session.ID),
		zap.String("class_id", session.ClassID),
		zap.Int("timer_minutes", session.TimerMinutes))
	return session, nil
}

// ClassView resolves what a class sees right now: the live session if one is
// running, plus the most recently closed session still inside the display
// window. A stored ACTIVE flag past its deadline counts as closed.
func (s *AttendanceService) ClassView(ctx context.Context, classID string) (*models.ClassSessionView, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}

	now := s.now()
	view := &models.ClassSessionView{}

	active, err := s.sessions.FindActiveByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active session")
	}
	if active != nil && !active.Expired(now) {
		view.Active = active
	}

	cutoff := now.Add(-s.recentlyClosedWindow)
	recent, err := s.sessions.ListRecentByClass(ctx, classID, cutoff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent sessions")
	}
	for i := range recent {
		session := recent[i]
		if !session.Expired(now) {
			continue
		}
		view.RecentlyClosed = &recent[i]
		break
	}
	return view, nil
}

// MarkPresent adds the student to the session roster. Marking twice is a
// no-op success; marking after expiry is rejected even when the sweep has not
// flipped the stored flag yet.
func (s *AttendanceService) MarkPresent(ctx context.Context, sessionID, userID string) (*models.AttendanceSession, error) {
	if sessionID == "" || userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id and user id are required")
	}

	now := s.now()
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Expired(now) {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "the attendance window for this session has closed")
	}
	if session.HasStudent(userID) {
		return session, nil
	}

	changed, err := s.sessions.AppendPresent(ctx, sessionID, userID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record presence")
	}
	if !changed {
		// The statement matched no row: either a concurrent writer already
		// recorded this student, or the deadline passed in between. Reload to
		// tell the two apart.
		session, err = s.sessions.FindByID(ctx, sessionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload session")
		}
		if session.HasStudent(userID) {
			return session, nil
		}
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "the attendance window for this session has closed")
	}

	session.StudentsPresent = append(session.StudentsPresent, userID)
	return session, nil
}

// Sweep flips every session past its deadline to inactive. The sweep is a
// single statement, so overlapping runs never double-close a session.
func (s *AttendanceService) Sweep(ctx context.Context) (int64, error) {
	swept, err := s.sessions.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep sessions")
	}
	if s.metrics != nil {
		s.metrics.RecordSessionsSwept(swept)
	}
	if swept > 0 {
		s.logger.Info("expired attendance sessions closed", zap.Int64("count", swept))
	}
	return swept, nil
}
