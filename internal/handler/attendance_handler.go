package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlms/facetoface-api/internal/service"
	"github.com/openlms/facetoface-api/pkg/response"
)

// AttendanceHandler exposes attendance sheet endpoints for a session.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Sheet returns the attendee list with their signup statuses.
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	sessionID, err := pathID(c, "sessionId")
	if err != nil {
		response.Error(c, err)
		return
	}

	sheet, err := h.attendance.Sheet(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// ExportCSV streams the attendance sheet as a CSV download.
func (h *AttendanceHandler) ExportCSV(c *gin.Context) {
	sessionID, err := pathID(c, "sessionId")
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.attendance.ExportCSV(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance-%d.csv\"", sessionID))
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF streams the attendance sheet as a PDF download.
func (h *AttendanceHandler) ExportPDF(c *gin.Context) {
	sessionID, err := pathID(c, "sessionId")
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.attendance.ExportPDF(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance-%d.pdf\"", sessionID))
	c.Data(http.StatusOK, "application/pdf", data)
}
