package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlms/facetoface-api/internal/service"
	"github.com/openlms/facetoface-api/pkg/response"
)

// SessionHandler exposes session read endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ListByActivity returns the sessions of one face-to-face activity.
func (h *SessionHandler) ListByActivity(c *gin.Context) {
	facetofaceID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	sessions, err := h.sessions.ListByActivity(c.Request.Context(), facetofaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Get returns a single session with its dates.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, err := pathID(c, "sessionId")
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}
