package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type bookingUserFinder interface {
	FindAllByEmail(ctx context.Context, email string, caseSensitive bool) ([]models.User, error)
}

type bookingSessionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

type bookingEnrollmentChecker interface {
	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
}

type bookingSignupStore interface {
	CountAttendees(ctx context.Context, sessionID int64, minStatus models.SignupStatus) (int, error)
	Upsert(ctx context.Context, req models.SignupRequest) error
	Cancel(ctx context.Context, sessionID, userID int64) error
}

type bookingNotifier interface {
	SendBookingConfirmation(facetofaceID, sessionID, userID int64, channel models.NotificationType)
	SendCancellationNotice(facetofaceID, sessionID, userID int64)
}

// CancellationError reports a cancellation the booking store rejected. It
// aborts the remaining batch; rows before it stay committed.
type CancellationError struct {
	Row   int
	Email string
	Err   error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("row %d: cancel booking for %s: %v", e.Row, e.Email, e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }

// cancelledToken is the external status requesting a cancellation; it is an
// alias accepted alongside the vocabulary's user_cancelled.
const cancelledToken = "cancelled"

// BookingManager validates and processes one batch of bulk bookings for a
// face-to-face activity. A manager owns its record source and is built per
// request; it is not safe for concurrent use.
type BookingManager struct {
	facetoface *models.Facetoface
	course     *models.Course
	source     RecordSource

	users       bookingUserFinder
	sessions    bookingSessionFinder
	enrollments bookingEnrollmentChecker
	signups     bookingSignupStore
	notifier    bookingNotifier

	caseSensitive bool
	suppressEmail bool
	now           func() time.Time
	logger        *zap.Logger
}

// LoadFromRecords replaces the manager's source with an in-memory list.
func (m *BookingManager) LoadFromRecords(records []models.BookingRecord) *BookingManager {
	m.source = NewListSource(records)
	return m
}

// LoadFromSource replaces the manager's record source.
func (m *BookingManager) LoadFromSource(src RecordSource) *BookingManager {
	m.source = src
	return m
}

// SetCaseInsensitive toggles case folding for email matching.
func (m *BookingManager) SetCaseInsensitive(insensitive bool) {
	m.caseSensitive = !insensitive
}

// SuppressEmail disables booking confirmation notices while processing.
func (m *BookingManager) SuppressEmail() {
	m.suppressEmail = true
}

// normalize trims the row's fields and folds the status token; tokens are
// validated against the vocabulary separately.
func normalize(rec *models.BookingRecord) models.BookingRecord {
	out := *rec
	out.Email = strings.TrimSpace(out.Email)
	out.Session = strings.TrimSpace(out.Session)
	out.Status = strings.ToLower(strings.TrimSpace(out.Status))
	out.NotificationType = strings.TrimSpace(out.NotificationType)
	return out
}

type capacityLedger struct {
	remaining int
	rows      []int
}

// Validate scans the batch once and returns every row-addressed problem.
// Validation never stops early: all rows are checked and a row can carry
// several errors. Session overbooking is reported after the scan, one error
// per session addressed to all contributing rows. Row numbers are 1-based
// over the data rows. Format errors from the source are fatal and returned
// as the second value.
func (m *BookingManager) Validate(ctx context.Context, asOf time.Time) ([]models.RowError, error) {
	reader, err := m.source.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close() //nolint:errcheck

	var rowErrs []models.RowError
	ledger := make(map[int64]*capacityLedger)
	var ledgerOrder []int64

	row := 0
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		entry := normalize(rec)

		addErr := func(msg string) {
			rowErrs = append(rowErrs, models.RowError{Rows: strconv.Itoa(row), Message: msg})
		}

		var userID int64
		userFound := false
		matches, err := m.users.FindAllByEmail(ctx, entry.Email, m.caseSensitive)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
		}
		if len(matches) > 1 {
			addErr(fmt.Sprintf("more than one user matches email %s", entry.Email))
		}
		if len(matches) == 0 {
			addErr(fmt.Sprintf("user with email %s does not exist", entry.Email))
		} else {
			userID = matches[0].ID
			userFound = true
		}

		session, err := m.findSession(ctx, entry.Session)
		if err != nil {
			return nil, err
		}
		if session == nil {
			addErr(fmt.Sprintf("session %s does not exist", entry.Session))
		} else {
			// A session that already ran cannot be cancelled from a batch.
			if entry.Status == cancelledToken && session.HasStarted(asOf) {
				addErr(fmt.Sprintf("session %d has already started", session.ID))
			}

			if session.DatetimeKnown && entry.Status != cancelledToken && session.HasStarted(asOf) {
				if session.InProgress(asOf) {
					addErr("cannot sign up for a session in progress")
				} else {
					addErr("cannot sign up for a session that is over")
				}
			}

			if !session.AllowOverbook {
				led, ok := ledger[session.ID]
				if !ok {
					approved, err := m.signups.CountAttendees(ctx, session.ID, models.StatusApproved)
					if err != nil {
						return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendees")
					}
					led = &capacityLedger{remaining: session.Capacity - approved}
					ledger[session.ID] = led
					ledgerOrder = append(ledgerOrder, session.ID)
				}
				// Every non-cancellation row is a new booking against the
				// session; cancellations never consume capacity.
				if entry.Status != cancelledToken {
					led.remaining--
					led.rows = append(led.rows, row)
				}
			}
		}

		if userFound {
			enrolled, err := m.enrollments.IsEnrolled(ctx, m.course.ID, userID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
			}
			if !enrolled {
				addErr(fmt.Sprintf("user %s is not enrolled in course %s", entry.Email, m.course.ShortName))
			}
		}

		if _, ok := models.NotificationTypeFromToken(entry.NotificationType); !ok {
			addErr(fmt.Sprintf("invalid notification type %s", entry.NotificationType))
		}

		if !validStatusToken(entry.Status) {
			addErr(fmt.Sprintf("invalid status %s", entry.Status))
		}
	}

	for _, sessionID := range ledgerOrder {
		led := ledger[sessionID]
		if led.remaining >= 0 {
			continue
		}
		rowErrs = append(rowErrs, models.RowError{
			Rows:    joinRows(led.rows),
			Message: fmt.Sprintf("session %d is overbooked by %d", sessionID, -led.remaining),
		})
	}

	return rowErrs, nil
}

// Process re-scans the batch and applies every row's booking or cancellation.
// Callers must have validated the same batch immediately before; Process does
// not re-validate and will act on invalid rows if misused. The first failing
// row aborts the batch, leaving earlier rows committed.
func (m *BookingManager) Process(ctx context.Context) error {
	reader, err := m.source.Open()
	if err != nil {
		return err
	}
	defer reader.Close() //nolint:errcheck

	row := 0
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		row++
		entry := normalize(rec)

		matches, err := m.users.FindAllByEmail(ctx, entry.Email, m.caseSensitive)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
		}
		if len(matches) == 0 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("row %d: user %s not found", row, entry.Email))
		}
		user := matches[0]

		session, err := m.findSession(ctx, entry.Session)
		if err != nil {
			return err
		}
		if session == nil {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("row %d: session %s not found", row, entry.Session))
		}

		if entry.Status == cancelledToken {
			if err := m.signups.Cancel(ctx, session.ID, user.ID); err != nil {
				return &CancellationError{Row: row, Email: entry.Email, Err: err}
			}
			if !session.HasStarted(m.now()) {
				m.notifier.SendCancellationNotice(m.facetoface.ID, session.ID, user.ID)
			}
			continue
		}

		status, ok := models.StatusFromLabel(entry.Status)
		if !ok {
			status = models.StatusBooked
		}
		if status == models.StatusBooked && !session.DatetimeKnown {
			// Nothing to book into yet; hold the seat on the waitlist.
			status = models.StatusWaitlisted
		}

		channel, ok := models.NotificationTypeFromToken(entry.NotificationType)
		if !ok {
			channel = models.NotifyBoth
		}

		req := models.SignupRequest{
			SessionID:        session.ID,
			FacetofaceID:     m.facetoface.ID,
			CourseID:         m.course.ID,
			UserID:           user.ID,
			DiscountCode:     entry.DiscountCode,
			NotificationType: channel,
			Status:           status,
			SuppressEmail:    m.suppressEmail,
		}
		if err := m.signups.Upsert(ctx, req); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("row %d: failed to sign up %s", row, entry.Email))
		}
		if !m.suppressEmail {
			m.notifier.SendBookingConfirmation(m.facetoface.ID, session.ID, user.ID, channel)
		}

		m.logger.Debug("booking processed",
			zap.Int("row", row),
			zap.Int64("session_id", session.ID),
			zap.Int64("user_id", user.ID),
			zap.Int("status", int(status)),
		)
	}

	return nil
}

// findSession resolves the raw session key; an unparsable or unknown key
// yields a nil session without error.
func (m *BookingManager) findSession(ctx context.Context, key string) (*models.Session, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return nil, nil
	}
	session, err := m.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up session")
	}
	return session, nil
}

// validStatusToken accepts the empty default, the cancellation alias, and
// every vocabulary label.
func validStatusToken(status string) bool {
	if status == "" || status == cancelledToken {
		return true
	}
	_, ok := models.StatusFromLabel(status)
	return ok
}

func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}
