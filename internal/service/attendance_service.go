package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
	"github.com/openlms/facetoface-api/pkg/export"
)

type attendanceSessionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

type attendanceSignupReader interface {
	ListAttendees(ctx context.Context, sessionID int64) ([]models.Attendee, error)
}

// AttendanceRow is one attendee line of the sheet.
type AttendanceRow struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// AttendanceSheet is the attendance data for one session.
type AttendanceSheet struct {
	Session   models.Session  `json:"session"`
	Attendees []AttendanceRow `json:"attendees"`
}

// AttendanceService assembles session attendance data and its exports.
type AttendanceService struct {
	sessions attendanceSessionFinder
	signups  attendanceSignupReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(sessions attendanceSessionFinder, signups attendanceSignupReader, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		sessions: sessions,
		signups:  signups,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Sheet returns the session and its attendees with status labels resolved.
func (s *AttendanceService) Sheet(ctx context.Context, sessionID int64) (*AttendanceSheet, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	attendees, err := s.signups.ListAttendees(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendees")
	}

	sheet := &AttendanceSheet{Session: *session, Attendees: make([]AttendanceRow, 0, len(attendees))}
	for _, a := range attendees {
		user := models.User{FirstName: a.FirstName, LastName: a.LastName}
		sheet.Attendees = append(sheet.Attendees, AttendanceRow{
			UserID: a.UserID,
			Name:   user.FullName(),
			Email:  a.Email,
			Status: a.StatusLabel(),
		})
	}
	return sheet, nil
}

// ExportCSV renders the attendance sheet as CSV bytes.
func (s *AttendanceService) ExportCSV(ctx context.Context, sessionID int64) ([]byte, error) {
	dataset, _, err := s.dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance csv")
	}
	return payload, nil
}

// ExportPDF renders the attendance sheet as PDF bytes.
func (s *AttendanceService) ExportPDF(ctx context.Context, sessionID int64) ([]byte, error) {
	dataset, session, err := s.dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Attendance - session %d", session.ID)
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance pdf")
	}
	return payload, nil
}

func (s *AttendanceService) dataset(ctx context.Context, sessionID int64) (*export.Dataset, *models.Session, error) {
	sheet, err := s.Sheet(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"name", "email", "status"},
		Rows:    make([]map[string]string, 0, len(sheet.Attendees)),
	}
	for _, row := range sheet.Attendees {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"name":   row.Name,
			"email":  row.Email,
			"status": row.Status,
		})
	}
	return &dataset, &sheet.Session, nil
}
