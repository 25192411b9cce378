package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	ListByFacetoface(ctx context.Context, facetofaceID int64) ([]models.Session, error)
}

// SessionService provides read access to face-to-face sessions.
type SessionService struct {
	sessions sessionRepository
	logger   *zap.Logger
}

// NewSessionService constructs SessionService.
func NewSessionService(sessions sessionRepository, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{sessions: sessions, logger: logger}
}

// Get returns one session with its dates.
func (s *SessionService) Get(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}
	return session, nil
}

// ListByActivity returns all sessions of a face-to-face activity.
func (s *SessionService) ListByActivity(ctx context.Context, facetofaceID int64) ([]models.Session, error) {
	sessions, err := s.sessions.ListByFacetoface(ctx, facetofaceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}
