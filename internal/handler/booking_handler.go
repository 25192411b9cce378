package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlms/facetoface-api/internal/models"
	"github.com/openlms/facetoface-api/internal/service"
	appErrors "github.com/openlms/facetoface-api/pkg/errors"
	"github.com/openlms/facetoface-api/pkg/response"
)

// BookingHandler exposes the bulk booking endpoints: direct validation of
// inline records, and the stash-validate-process upload workflow.
type BookingHandler struct {
	bookings *service.BookingService
	uploads  *service.UploadService
	metrics  *service.MetricsService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(bookings *service.BookingService, uploads *service.UploadService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, uploads: uploads, metrics: metrics}
}

type validateBookingsRequest struct {
	Records []models.BookingRecord `json:"records" binding:"required"`
	Options service.BatchOptions   `json:"options"`
}

// Template returns the expected upload column layout.
func (h *BookingHandler) Template(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"headers":  models.BookingHeaders(),
		"statuses": models.StatusLabels(),
	})
}

// Validate runs the validation pass over inline booking records.
func (h *BookingHandler) Validate(c *gin.Context) {
	facetofaceID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req validateBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	batch, err := h.bookings.NewBatch(c.Request.Context(), facetofaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch.LoadFromRecords(req.Records)
	applyBatchOptions(batch, req.Options)

	start := time.Now()
	rowErrs, err := batch.Validate(c.Request.Context(), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveBookingBatch("validate", len(rowErrs) == 0, time.Since(start))

	response.JSON(c, http.StatusOK, gin.H{
		"errors":      rowErrs,
		"can_process": len(rowErrs) == 0,
	})
}

// Upload stashes a CSV in the upload area and validates it.
func (h *BookingHandler) Upload(c *gin.Context) {
	facetofaceID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing upload file"))
		return
	}
	opts := batchOptionsFromForm(c)

	src, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close()

	start := time.Now()
	result, err := h.uploads.Stash(c.Request.Context(), facetofaceID, file.Size, src, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveBookingBatch("validate", result.CanProcess, time.Since(start))

	response.JSON(c, http.StatusOK, result)
}

// ProcessUpload applies a previously stashed upload.
func (h *BookingHandler) ProcessUpload(c *gin.Context) {
	facetofaceID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	uploadID := c.Param("uploadId")
	opts := batchOptionsFromForm(c)

	start := time.Now()
	rowErrs, err := h.uploads.Process(c.Request.Context(), facetofaceID, uploadID, opts)
	if err != nil {
		h.metrics.ObserveBookingBatch("process", false, time.Since(start))
		if len(rowErrs) > 0 {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{
				Data:  gin.H{"errors": rowErrs},
				Error: appErr,
			})
			return
		}
		response.Error(c, err)
		return
	}
	h.metrics.ObserveBookingBatch("process", true, time.Since(start))

	response.JSON(c, http.StatusOK, gin.H{"processed": true})
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}

func applyBatchOptions(batch *service.BookingManager, opts service.BatchOptions) {
	if opts.CaseInsensitive {
		batch.SetCaseInsensitive(true)
	}
	if opts.SuppressEmail {
		batch.SuppressEmail()
	}
}

func batchOptionsFromForm(c *gin.Context) service.BatchOptions {
	return service.BatchOptions{
		CaseInsensitive: c.PostForm("case_insensitive") == "1" || c.PostForm("case_insensitive") == "true",
		SuppressEmail:   c.PostForm("suppress_email") == "1" || c.PostForm("suppress_email") == "true",
	}
}
