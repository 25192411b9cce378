package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/openlms/facetoface-api/internal/models"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

// RecordSource yields booking records in a stable order. Open may be called
// more than once; every reader starts again at the first data row, so
// validation and processing can scan the same rows independently.
type RecordSource interface {
	Open() (RecordReader, error)
}

// RecordReader iterates raw booking records. Next returns io.EOF after the
// last record.
type RecordReader interface {
	Next() (*models.BookingRecord, error)
	Close() error
}

// ListSource serves records from an in-memory slice.
type ListSource struct {
	records []models.BookingRecord
}

// NewListSource wraps pre-supplied records.
func NewListSource(records []models.BookingRecord) *ListSource {
	return &ListSource{records: records}
}

// Open returns a reader positioned at the first record.
func (s *ListSource) Open() (RecordReader, error) {
	return &listReader{records: s.records}, nil
}

type listReader struct {
	records []models.BookingRecord
	pos     int
}

func (r *listReader) Next() (*models.BookingRecord, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return &rec, nil
}

func (r *listReader) Close() error { return nil }

// CSVSource streams records from a comma-delimited resource. The first line
// is discarded as a header; every data row must carry exactly the booking
// header arity or the scan fails with an upload format error.
type CSVSource struct {
	open func() (io.ReadCloser, error)
}

// NewCSVSource builds a source from an opener so the stream can be re-read
// for each scan.
func NewCSVSource(open func() (io.ReadCloser, error)) *CSVSource {
	return &CSVSource{open: open}
}

// Open starts a fresh scan, skipping the header line.
func (s *CSVSource) Open() (RecordReader, error) {
	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open booking upload: %w", err)
	}

	cr := csv.NewReader(rc)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	// Header contents are ignored, the line only positions the reader.
	if _, err := cr.Read(); err != nil {
		_ = rc.Close()
		if errors.Is(err, io.EOF) {
			return &csvReader{cr: cr, done: true}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFormat.Code, appErrors.ErrUploadFormat.Status, "cannot read upload header")
	}
	cr.FieldsPerRecord = len(models.BookingHeaders())

	return &csvReader{rc: rc, cr: cr}, nil
}

type csvReader struct {
	rc   io.ReadCloser
	cr   *csv.Reader
	row  int
	done bool
}

func (r *csvReader) Next() (*models.BookingRecord, error) {
	if r.done {
		return nil, io.EOF
	}
	fields, err := r.cr.Read()
	if err != nil {
		r.done = true
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		_ = r.Close()
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, appErrors.Wrap(err, appErrors.ErrUploadFormat.Code, appErrors.ErrUploadFormat.Status,
				fmt.Sprintf("row %d does not match the expected %d columns", r.row+1, len(models.BookingHeaders())))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFormat.Code, appErrors.ErrUploadFormat.Status, "cannot parse upload row")
	}
	r.row++
	return &models.BookingRecord{
		Email:            fields[0],
		Session:          fields[1],
		Status:           fields[2],
		DiscountCode:     fields[3],
		NotificationType: fields[4],
	}, nil
}

func (r *csvReader) Close() error {
	if r.rc == nil {
		return nil
	}
	err := r.rc.Close()
	r.rc = nil
	return err
}
