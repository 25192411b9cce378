package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type mockAttendeeReader struct {
	attendees map[int64][]models.Attendee
}

func (m *mockAttendeeReader) ListAttendees(ctx context.Context, sessionID int64) ([]models.Attendee, error) {
	return m.attendees[sessionID], nil
}

func newAttendanceFixture() (*AttendanceService, *mockSessionFinder) {
	sessions := &mockSessionFinder{sessions: map[int64]*models.Session{
		5: futureSession(5, 10),
	}}
	signups := &mockAttendeeReader{attendees: map[int64][]models.Attendee{
		5: {
			{UserID: 11, Email: "alice@example.com", FirstName: "Alice", LastName: "Aalto", Status: models.StatusBooked},
			{UserID: 12, Email: "bob@example.com", FirstName: "Bob", LastName: "Berg", Status: models.StatusWaitlisted},
		},
	}}
	return NewAttendanceService(sessions, signups, nil), sessions
}

func TestAttendanceSheet(t *testing.T) {
	svc, _ := newAttendanceFixture()

	sheet, err := svc.Sheet(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sheet.Session.ID)
	require.Len(t, sheet.Attendees, 2)
	assert.Equal(t, "Alice Aalto", sheet.Attendees[0].Name)
	assert.Equal(t, "booked", sheet.Attendees[0].Status)
	assert.Equal(t, "waitlisted", sheet.Attendees[1].Status)
}

func TestAttendanceSheetUnknownSession(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Sheet(context.Background(), 99)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttendanceExportCSV(t *testing.T) {
	svc, _ := newAttendanceFixture()

	payload, err := svc.ExportCSV(context.Background(), 5)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,email,status", lines[0])
	assert.Contains(t, lines[1], "alice@example.com")
	assert.Contains(t, lines[2], "waitlisted")
}

func TestAttendanceExportPDF(t *testing.T) {
	svc, _ := newAttendanceFixture()

	payload, err := svc.ExportPDF(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
