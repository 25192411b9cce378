package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

// ActivityDetail is an activity together with its course and the effective
// approval requirement for new signups.
type ActivityDetail struct {
	Activity      *models.Facetoface `json:"activity"`
	Course        *models.Course     `json:"course"`
	NeedsApproval bool               `json:"needs_approval"`
}

// FacetofaceService provides read access to face-to-face activities.
type FacetofaceService struct {
	facetofaces     facetofaceFinder
	approvalEnabled bool
	logger          *zap.Logger
}

// NewFacetofaceService constructs FacetofaceService. approvalEnabled is the
// site-level switch; an activity needs approval only when both it and the
// site flag are set.
func NewFacetofaceService(facetofaces facetofaceFinder, approvalEnabled bool, logger *zap.Logger) *FacetofaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacetofaceService{facetofaces: facetofaces, approvalEnabled: approvalEnabled, logger: logger}
}

// Get returns one activity with its course and resolved approval flag.
func (s *FacetofaceService) Get(ctx context.Context, id int64) (*ActivityDetail, error) {
	facetoface, err := s.facetofaces.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facetoface activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch activity")
	}

	course, err := s.facetofaces.FindCourse(ctx, facetoface.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	return &ActivityDetail{
		Activity:      facetoface,
		Course:        course,
		NeedsApproval: facetoface.NeedsApproval(s.approvalEnabled),
	}, nil
}
