package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type uploadStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// BatchOptions are per-request overrides for a booking batch.
type BatchOptions struct {
	CaseInsensitive bool `json:"case_insensitive"`
	SuppressEmail   bool `json:"suppress_email"`
}

// UploadResult reports the stored upload and its validation outcome.
type UploadResult struct {
	UploadID   string            `json:"upload_id"`
	Errors     []models.RowError `json:"errors"`
	CanProcess bool              `json:"can_process"`
}

// UploadService owns the bulk booking upload workflow: stash the CSV in the
// upload area, validate it, and process it on confirmation. The stored file
// is what makes the two scans possible between requests.
type UploadService struct {
	store    uploadStore
	bookings *BookingService
	maxSize  int64
	logger   *zap.Logger
}

// NewUploadService constructs UploadService.
func NewUploadService(store uploadStore, bookings *BookingService, maxSize int64, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{store: store, bookings: bookings, maxSize: maxSize, logger: logger}
}

// Stash stores the uploaded CSV and runs a validation pass over it. Format
// errors abort the stash and remove the file; row errors are returned as
// data for the caller to render.
func (s *UploadService) Stash(ctx context.Context, facetofaceID int64, size int64, r io.Reader, opts BatchOptions) (*UploadResult, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("upload exceeds the %d byte limit", s.maxSize))
	}

	uploadID := uuid.NewString()
	filename := uploadFilename(uploadID)
	if _, err := s.store.SaveStream(filename, r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	rowErrs, err := s.validateStored(ctx, facetofaceID, filename, opts)
	if err != nil {
		if delErr := s.store.Delete(filename); delErr != nil {
			s.logger.Warn("failed to remove rejected upload", zap.String("upload_id", uploadID), zap.Error(delErr))
		}
		return nil, err
	}

	return &UploadResult{UploadID: uploadID, Errors: rowErrs, CanProcess: len(rowErrs) == 0}, nil
}

// Process re-validates the stored upload and, when clean, applies every row.
// The stored file is removed once processing completes.
func (s *UploadService) Process(ctx context.Context, facetofaceID int64, uploadID string, opts BatchOptions) ([]models.RowError, error) {
	if _, err := uuid.Parse(uploadID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid upload id")
	}
	filename := uploadFilename(uploadID)

	batch, err := s.newStoredBatch(ctx, facetofaceID, filename, opts)
	if err != nil {
		return nil, err
	}

	rowErrs, err := batch.Validate(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 {
		return rowErrs, appErrors.Clone(appErrors.ErrBookingsInvalid, "cannot process bookings while validation errors exist")
	}

	if err := batch.Process(ctx); err != nil {
		return nil, err
	}

	if err := s.store.Delete(filename); err != nil {
		s.logger.Warn("failed to remove processed upload", zap.String("upload_id", uploadID), zap.Error(err))
	}
	return nil, nil
}

func (s *UploadService) validateStored(ctx context.Context, facetofaceID int64, filename string, opts BatchOptions) ([]models.RowError, error) {
	batch, err := s.newStoredBatch(ctx, facetofaceID, filename, opts)
	if err != nil {
		return nil, err
	}
	return batch.Validate(ctx, time.Now())
}

func (s *UploadService) newStoredBatch(ctx context.Context, facetofaceID int64, filename string, opts BatchOptions) (*BookingManager, error) {
	batch, err := s.bookings.NewBatch(ctx, facetofaceID)
	if err != nil {
		return nil, err
	}
	if opts.CaseInsensitive {
		batch.SetCaseInsensitive(true)
	}
	if opts.SuppressEmail {
		batch.SuppressEmail()
	}
	batch.LoadFromSource(NewCSVSource(func() (io.ReadCloser, error) {
		return s.store.Open(filename)
	}))
	return batch, nil
}

func uploadFilename(uploadID string) string {
	return uploadID + ".csv"
}
