package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-fees-api/internal/middleware"
	"github.com/noah-isme/coaching-fees-api/internal/models"
	"github.com/noah-isme/coaching-fees-api/internal/service"
	appErrors "github.com/noah-isme/coaching-fees-api/pkg/errors"
)

type feeServiceMock struct {
	coursesResp []models.Course
	coursesErr  error
	statusResp  *service.CourseFeeStatus
	statusErr   error
	actionResp  *models.PaymentAction
	actionErr   error
	submitResp  *models.PaymentAttempt
	submitErr   error
	lastUser    string
	lastCourse  string
}

func (m *feeServiceMock) Courses(ctx context.Context) ([]models.Course, error) {
	return m.coursesResp, m.coursesErr
}

func (m *feeServiceMock) StatusMap(ctx context.Context, userID, courseID string) (*service.CourseFeeStatus, error) {
	m.lastUser = userID
	m.lastCourse = courseID
	return m.statusResp, m.statusErr
}

func (m *feeServiceMock) Action(ctx context.Context, userID, courseID string) (*models.PaymentAction, error) {
	m.lastUser = userID
	m.lastCourse = courseID
	return m.actionResp, m.actionErr
}

func (m *feeServiceMock) SubmitPayment(ctx context.Context, userID, courseID string, req service.SubmitPaymentRequest) (*models.PaymentAttempt, error) {
	m.lastUser = userID
	m.lastCourse = courseID
	return m.submitResp, m.submitErr
}

func studentContext(w *httptest.ResponseRecorder, method, target string, body []byte) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})
	return c, r
}

func TestFeeHandlerListCourses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feeServiceMock{coursesResp: []models.Course{
		{ID: "course-math", Name: "Mathematics", Type: models.CourseTypeCore, FeesMonthly: 2000, Active: true},
	}}
	handler := NewFeeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodGet, "/courses", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mathematics")
}

func TestFeeHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feeServiceMock{statusResp: &service.CourseFeeStatus{CourseID: "course-1"}}
	handler := NewFeeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodGet, "/courses/course-1/fees/status", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mockSvc.lastUser)
	assert.Equal(t, "course-1", mockSvc.lastCourse)
}

func TestFeeHandlerStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feeServiceMock{statusErr: appErrors.ErrNotFound}
	handler := NewFeeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodGet, "/courses/missing/fees/status", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "missing"}}

	handler.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeeHandlerStatusMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFeeHandler(&feeServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/course-1/fees/status", nil)
	c.Request = req

	handler.Status(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeeHandlerAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feeServiceMock{actionResp: &models.PaymentAction{
		Label:        "Pay fees for March 2026",
		TargetPeriod: models.PeriodMarch,
		TargetYear:   2026,
		Enabled:      true,
		Severity:     models.SeverityOverdue,
	}}
	handler := NewFeeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodGet, "/courses/course-1/fees/action", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.Action(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pay fees for March 2026")
}

func TestFeeHandlerSubmitPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feeServiceMock{submitResp: &models.PaymentAttempt{ID: "p1", Status: models.PaymentStatusPending}}
	handler := NewFeeHandler(mockSvc)

	payload, _ := json.Marshal(service.SubmitPaymentRequest{
		Period:        "March",
		Year:          2026,
		Amount:        2000,
		TransactionID: "txn-1",
	})
	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodPost, "/courses/course-1/payments", payload)
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.SubmitPayment(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "PENDING")
}

func TestFeeHandlerSubmitPaymentInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFeeHandler(&feeServiceMock{})

	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodPost, "/courses/course-1/payments", []byte(`{"period":`))
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.SubmitPayment(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeeHandlerSubmitPaymentConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feeServiceMock{submitErr: appErrors.ErrConflict}
	handler := NewFeeHandler(mockSvc)

	payload, _ := json.Marshal(service.SubmitPaymentRequest{
		Period:        "March",
		Year:          2026,
		Amount:        2000,
		TransactionID: "txn-1",
	})
	w := httptest.NewRecorder()
	c, _ := studentContext(w, http.MethodPost, "/courses/course-1/payments", payload)
	c.Params = gin.Params{{Key: "courseId", Value: "course-1"}}

	handler.SubmitPayment(c)
	require.Equal(t, http.StatusConflict, w.Code)
}
