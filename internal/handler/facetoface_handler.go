package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlms/facetoface-api/internal/service"
	"github.com/openlms/facetoface-api/pkg/response"
)

// FacetofaceHandler exposes activity read endpoints.
type FacetofaceHandler struct {
	facetofaces *service.FacetofaceService
}

// NewFacetofaceHandler constructs handler.
func NewFacetofaceHandler(facetofaces *service.FacetofaceService) *FacetofaceHandler {
	return &FacetofaceHandler{facetofaces: facetofaces}
}

// Get returns one activity with its course and approval flag.
func (h *FacetofaceHandler) Get(c *gin.Context) {
	facetofaceID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.facetofaces.Get(c.Request.Context(), facetofaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
