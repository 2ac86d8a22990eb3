package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-fees-api/internal/models"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
)

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type courseCatalog interface {
	courseReader
	ListActive(ctx context.Context) ([]models.Course, error)
}

type enrollmentReader interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
}

type paymentStore interface {
	ListByCourseAndUser(ctx context.Context, courseID, userID string) ([]models.PaymentAttempt, error)
	HasPendingForPeriod(ctx context.Context, courseID, userID string, period models.BillingPeriod, year int) (bool, error)
	Create(ctx context.Context, attempt *models.PaymentAttempt) error
}

// FeeService derives billing period statuses and payment actions. All
// derivation is a pure function of a storage snapshot and the wall clock;
// callers may re-derive as often as they like.
type FeeService struct {
	courses     courseCatalog
	enrollments enrollmentReader
	payments    paymentStore
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewFeeService constructs the fee service.
func NewFeeService(courses courseCatalog, enrollments enrollmentReader, payments paymentStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	RegisterFeeValidators(validate)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{
		courses:     courses,
		enrollments: enrollments,
		payments:    payments,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// CourseFeeStatus bundles the per-period statuses with the derived action.
type CourseFeeStatus struct {
	CourseID string                     `json:"course_id"`
	Periods  []models.PeriodStatusEntry `json:"periods"`
	Action   models.PaymentAction       `json:"action"`
}

// StatusMap derives the status of every billing period from enrollment to
// now for the given (user, course) pair.
func (s *FeeService) StatusMap(ctx context.Context, userID, courseID string) (*CourseFeeStatus, error) {
	now := s.now()

	// Cache keys carry the current period so entries can never leak across
	// a period boundary; the TTL keeps pending/success transitions fresh.
	cacheKey := fmt.Sprintf("fees:status:%s:%s:%d", userID, courseID, models.CurrentPeriod(now).Ordinal())
	if s.cache.Enabled() {
		var cached CourseFeeStatus
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	course, enrollment, err := s.loadCourseAndEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.payments.ListByCourseAndUser(ctx, courseID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment attempts")
	}

	ledger := BuildLedger(userID, attempts)
	entries := DeriveStatuses(*course, *enrollment, ledger, now)
	action := SelectAction(*course, *enrollment, entries, now)
	if s.metrics != nil {
		s.metrics.RecordStatusDerivation()
	}

	result := &CourseFeeStatus{CourseID: courseID, Periods: entries, Action: action}
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil {
			s.logger.Warn("failed to cache fee status", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return result, nil
}

// Courses lists the active offerings with their fee schedules.
func (s *FeeService) Courses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	return courses, nil
}

// Action derives only the payment action for the pair.
func (s *FeeService) Action(ctx context.Context, userID, courseID string) (*models.PaymentAction, error) {
	status, err := s.StatusMap(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return &status.Action, nil
}

// SubmitPaymentRequest records a new payment attempt for a billing period.
type SubmitPaymentRequest struct {
	Period        string `json:"period" validate:"required,billing_period"`
	Year          int    `json:"year" validate:"required,min=2000"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	TransactionID string `json:"transaction_id" validate:"required"`
}

// SubmitPayment appends a pending attempt. Capture and verification stay with
// the external payment flow; this only records that an attempt was made. A
// period with an unresolved attempt rejects new ones.
func (s *FeeService) SubmitPayment(ctx context.Context, userID, courseID string, req SubmitPaymentRequest) (*models.PaymentAttempt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	course, enrollment, err := s.loadCourseAndEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	period := models.BillingPeriod(req.Period)
	key := models.NewPeriodKey(period, req.Year)
	if key.Before(enrollment.StartPeriod()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period precedes enrollment")
	}
	if models.CurrentPeriod(s.now()).Before(key) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period is in the future")
	}

	pending, err := s.payments.HasPendingForPeriod(ctx, courseID, userID, period, req.Year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending attempts")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a payment for %s is awaiting verification", key.Label()))
	}

	attempt := &models.PaymentAttempt{
		CourseID:      course.ID,
		UserID:        userID,
		Period:        period,
		PeriodYear:    req.Year,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		Status:        models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment attempt")
	}

	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, fmt.Sprintf("fees:status:%s:%s:*", userID, courseID)); err != nil {
			s.logger.Warn("failed to invalidate fee status cache", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return attempt, nil
}

func (s *FeeService) loadCourseAndEnrollment(ctx context.Context, userID, courseID string) (*models.Course, *models.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return course, enrollment, nil
}

// RegisterFeeValidators installs the custom billing period validation used by
// request payloads.
func RegisterFeeValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("billing_period", func(fl validator.FieldLevel) bool {
		return models.PeriodIndex(models.BillingPeriod(fl.Field().String())) >= 0
	})
}
