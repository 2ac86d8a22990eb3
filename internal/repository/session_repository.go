package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-fees-api/internal/models"
)

// SessionRepository handles persistence of attendance sessions. The
// conditional UPDATE statements are the per-class / per-session serialization
// points that keep the at-most-one-active and presence invariants under
// concurrent writers.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, class_id, course_id, topic, started_at, expires_at, timer_minutes, status, students_present`

// FindByID returns a session by its ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE id = $1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByClass returns the newest session still flagged active for the
// class, or nil when none exists. Expiry is judged by the caller.
func (r *SessionRepository) FindActiveByClass(ctx context.Context, classID string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions
        WHERE class_id = $1 AND status = $2 ORDER BY started_at DESC LIMIT 1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, classID, models.SessionStatusActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return &session, nil
}

// ListRecentByClass returns sessions for the class whose expiry falls at or
// after the cutoff, newest first.
func (r *SessionRepository) ListRecentByClass(ctx context.Context, classID string, cutoff time.Time) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions
        WHERE class_id = $1 AND expires_at >= $2 ORDER BY started_at DESC`, sessionColumns)
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, classID, cutoff); err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	return sessions, nil
}

// ListAttendedByCourse returns sessions for a course that recorded at least
// one present student, newest first.
func (r *SessionRepository) ListAttendedByCourse(ctx context.Context, courseID string) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions
        WHERE course_id = $1 AND cardinality(students_present) > 0 ORDER BY started_at DESC`, sessionColumns)
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, courseID); err != nil {
		return nil, fmt.Errorf("list attended sessions: %w", err)
	}
	return sessions, nil
}

// Create appends a new attendance session.
func (r *SessionRepository) Create(ctx context.Context, session *models.AttendanceSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusActive
	}
	if session.StudentsPresent == nil {
		session.StudentsPresent = []string{}
	}
	const query = `INSERT INTO attendance_sessions (id, class_id, course_id, topic, started_at, expires_at, timer_minutes, status, students_present)
        VALUES (:id, :class_id, :course_id, :topic, :started_at, :expires_at, :timer_minutes, :status, :students_present)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SweepExpired flips every active session past its deadline to inactive and
// returns the number of rows changed. Running it repeatedly is harmless.
func (r *SessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE attendance_sessions SET status = $1 WHERE status = $2 AND expires_at <= $3`
	result, err := r.db.ExecContext(ctx, query, models.SessionStatusInactive, models.SessionStatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	swept, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep rows affected: %w", err)
	}
	return swept, nil
}

// AppendPresent adds a user to the session roster. The WHERE clause rejects
// expired sessions and duplicate entries in one atomic statement; callers
// inspect the session to tell the two apart when no row changes.
func (r *SessionRepository) AppendPresent(ctx context.Context, sessionID, userID string, now time.Time) (bool, error) {
	const query = `UPDATE attendance_sessions
        SET students_present = array_append(students_present, $2)
        WHERE id = $1 AND expires_at > $3 AND NOT ($2 = ANY(students_present))`
	result, err := r.db.ExecContext(ctx, query, sessionID, userID, now)
	if err != nil {
		return false, fmt.Errorf("append presence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("presence rows affected: %w", err)
	}
	return affected > 0, nil
}
