package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type facetofaceFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Facetoface, error)
	FindCourse(ctx context.Context, id int64) (*models.Course, error)
}

// BookingDefaults seeds per-batch flags from configuration.
type BookingDefaults struct {
	CaseSensitiveEmail bool
	SuppressEmails     bool
}

// BookingService builds booking batches bound to a face-to-face activity.
type BookingService struct {
	facetofaces facetofaceFinder
	users       bookingUserFinder
	sessions    bookingSessionFinder
	enrollments bookingEnrollmentChecker
	signups     bookingSignupStore
	notifier    bookingNotifier
	defaults    BookingDefaults
	logger      *zap.Logger
}

// NewBookingService constructs BookingService.
func NewBookingService(
	facetofaces facetofaceFinder,
	users bookingUserFinder,
	sessions bookingSessionFinder,
	enrollments bookingEnrollmentChecker,
	signups bookingSignupStore,
	notifier bookingNotifier,
	defaults BookingDefaults,
	logger *zap.Logger,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		facetofaces: facetofaces,
		users:       users,
		sessions:    sessions,
		enrollments: enrollments,
		signups:     signups,
		notifier:    notifier,
		defaults:    defaults,
		logger:      logger,
	}
}

// NewBatch resolves the activity and its course and returns a manager ready
// to load records. The batch lives for one request only.
func (s *BookingService) NewBatch(ctx context.Context, facetofaceID int64) (*BookingManager, error) {
	facetoface, err := s.facetofaces.FindByID(ctx, facetofaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "face-to-face activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	course, err := s.facetofaces.FindCourse(ctx, facetoface.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInternal, "course is misconfigured for activity")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	manager := &BookingManager{
		facetoface:    facetoface,
		course:        course,
		source:        NewListSource(nil),
		users:         s.users,
		sessions:      s.sessions,
		enrollments:   s.enrollments,
		signups:       s.signups,
		notifier:      s.notifier,
		caseSensitive: s.defaults.CaseSensitiveEmail,
		now:           time.Now,
		logger:        s.logger,
	}
	if s.defaults.SuppressEmails {
		manager.SuppressEmail()
	}
	return manager, nil
}
