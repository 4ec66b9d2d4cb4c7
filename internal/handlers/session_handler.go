package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	sessionService services.SessionService
	log            logrus.FieldLogger
}

func NewSessionHandler(sessionService services.SessionService, log logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, log: log}
}

// CreateSession handles the POS PIN login.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		StaffID string `json:"staff_id" binding:"required"`
		PIN     string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := h.sessionService.Open(c.Request.Context(), req.StaffID, req.PIN)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.Close(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
