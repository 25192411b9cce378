package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlms/facetoface-api/internal/models"
	"github.com/openlms/facetoface-api/internal/service"
	"github.com/openlms/facetoface-api/pkg/response"
	"github.com/openlms/facetoface-api/pkg/storage"
)

type stubFacetofaces struct{}

func (stubFacetofaces) FindByID(ctx context.Context, id int64) (*models.Facetoface, error) {
	if id != 1 {
		return nil, sql.ErrNoRows
	}
	return &models.Facetoface{ID: 1, CourseID: 2, Name: "Induction"}, nil
}

func (stubFacetofaces) FindCourse(ctx context.Context, id int64) (*models.Course, error) {
	return &models.Course{ID: 2, ShortName: "IND101"}, nil
}

type stubUsers struct{}

func (stubUsers) FindAllByEmail(ctx context.Context, email string, caseSensitive bool) ([]models.User, error) {
	if email == "alice@example.com" {
		return []models.User{{ID: 11, Email: email}}, nil
	}
	return nil, nil
}

type stubSessions struct{}

func (stubSessions) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	if id != 5 {
		return nil, sql.ErrNoRows
	}
	return &models.Session{
		ID: 5, FacetofaceID: 1, Capacity: 10, DatetimeKnown: true,
		Dates: []models.SessionDate{{
			SessionID:  5,
			TimeStart:  time.Now().Add(24 * time.Hour),
			TimeFinish: time.Now().Add(26 * time.Hour),
		}},
	}, nil
}

type stubEnrollments struct{}

func (stubEnrollments) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	return true, nil
}

type stubSignups struct{}

func (stubSignups) CountAttendees(ctx context.Context, sessionID int64, minStatus models.SignupStatus) (int, error) {
	return 0, nil
}
func (stubSignups) Upsert(ctx context.Context, req models.SignupRequest) error { return nil }
func (stubSignups) Cancel(ctx context.Context, sessionID, userID int64) error  { return nil }

type stubNotifier struct{}

func (stubNotifier) SendBookingConfirmation(facetofaceID, sessionID, userID int64, channel models.NotificationType) {
}
func (stubNotifier) SendCancellationNotice(facetofaceID, sessionID, userID int64) {}

func newBookingHandler(t *testing.T) *BookingHandler {
	t.Helper()
	bookings := service.NewBookingService(
		stubFacetofaces{}, stubUsers{}, stubSessions{}, stubEnrollments{}, stubSignups{}, stubNotifier{},
		service.BookingDefaults{CaseSensitiveEmail: true},
		nil,
	)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploads := service.NewUploadService(store, bookings, 1024, nil)
	return NewBookingHandler(bookings, uploads, service.NewMetricsService())
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestBookingHandlerTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newBookingHandler(t)

	c, w := newGinContext(http.MethodGet, "/facetoface/1/bookings/template", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Template(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notificationtype")
}

func TestBookingHandlerValidateClean(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newBookingHandler(t)

	payload, _ := json.Marshal(map[string]interface{}{
		"records": []models.BookingRecord{{Email: "alice@example.com", Session: "5"}},
	})
	c, w := newGinContext(http.MethodPost, "/facetoface/1/bookings/validate", payload)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Validate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data := env.Data.(map[string]interface{})
	assert.Equal(t, true, data["can_process"])
}

func TestBookingHandlerValidateReportsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newBookingHandler(t)

	payload, _ := json.Marshal(map[string]interface{}{
		"records": []models.BookingRecord{{Email: "ghost@example.com", Session: "99"}},
	})
	c, w := newGinContext(http.MethodPost, "/facetoface/1/bookings/validate", payload)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Validate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data := env.Data.(map[string]interface{})
	assert.Equal(t, false, data["can_process"])
	assert.Len(t, data["errors"], 2)
}

func TestBookingHandlerValidateUnknownActivity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newBookingHandler(t)

	payload, _ := json.Marshal(map[string]interface{}{
		"records": []models.BookingRecord{{Email: "alice@example.com", Session: "5"}},
	})
	c, w := newGinContext(http.MethodPost, "/facetoface/42/bookings/validate", payload)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	h.Validate(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandlerProcessRejectsBadUploadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newBookingHandler(t)

	c, w := newGinContext(http.MethodPost, "/facetoface/1/bookings/uploads/nope/process", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}, {Key: "uploadId", Value: "nope"}}

	h.ProcessUpload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
