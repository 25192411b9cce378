package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

func TestFacetofaceServiceGet(t *testing.T) {
	finder := &mockFacetofaceFinder{
		activities: map[int64]*models.Facetoface{
			1: {ID: 1, CourseID: 2, Name: "Safety Training", ApprovalRequired: true},
			3: {ID: 3, CourseID: 2, Name: "Onboarding", ApprovalRequired: false},
		},
		courses: map[int64]*models.Course{2: {ID: 2, FullName: "Induction 101", ShortName: "IND101"}},
	}

	svc := NewFacetofaceService(finder, true, nil)

	detail, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Safety Training", detail.Activity.Name)
	assert.Equal(t, "IND101", detail.Course.ShortName)
	assert.True(t, detail.NeedsApproval)

	detail, err = svc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, detail.NeedsApproval)
}

func TestFacetofaceServiceGetSiteApprovalsDisabled(t *testing.T) {
	finder := &mockFacetofaceFinder{
		activities: map[int64]*models.Facetoface{1: {ID: 1, CourseID: 2, ApprovalRequired: true}},
		courses:    map[int64]*models.Course{2: {ID: 2}},
	}

	svc := NewFacetofaceService(finder, false, nil)

	detail, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, detail.NeedsApproval)
}

func TestFacetofaceServiceGetNotFound(t *testing.T) {
	svc := NewFacetofaceService(&mockFacetofaceFinder{}, true, nil)

	_, err := svc.Get(context.Background(), 99)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
