package controllers

import (
	"net/http"

	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
)

func (h *Controller) ProposeMotion(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	var request struct {
		Type        models.MotionType `json:"type" binding:"required"`
		Description string            `json:"description"`
		Duration    int               `json:"duration"`
		SpeakerTime int               `json:"speakerTime"`
	}
	if !bind(c, &request) {
		return
	}
	m, err := h.svc.Motions.Propose(c.Request.Context(), caller(c), services.ProposeInput{
		SessionID:   sessionID,
		Type:        request.Type,
		Description: request.Description,
		Duration:    request.Duration,
		SpeakerTime: request.SpeakerTime,
	})
	h.respond(c, http.StatusCreated, m, err)
}

func (h *Controller) ListMotions(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	motions, err := h.svc.Motions.ListBySession(c.Request.Context(), caller(c), sessionID)
	h.respond(c, http.StatusOK, motions, err)
}

func (h *Controller) PendingMotions(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	motions, err := h.svc.Motions.Pending(c.Request.Context(), caller(c), sessionID)
	h.respond(c, http.StatusOK, motions, err)
}

func (h *Controller) GetMotion(c *gin.Context) {
	id, ok := idParam(c, "id", "motion")
	if !ok {
		return
	}
	m, err := h.svc.Motions.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, m, err)
}

func (h *Controller) SecondMotion(c *gin.Context) {
	id, ok := idParam(c, "id", "motion")
	if !ok {
		return
	}
	m, err := h.svc.Motions.Second(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, m, err)
}

func (h *Controller) UpdateMotionStatus(c *gin.Context) {
	id, ok := idParam(c, "id", "motion")
	if !ok {
		return
	}
	var request struct {
		Status        models.MotionStatus `json:"status" binding:"required"`
		VotingResults *models.VoteCounts  `json:"votingResults"`
	}
	if !bind(c, &request) {
		return
	}
	m, err := h.svc.Motions.UpdateStatus(c.Request.Context(), caller(c), id, request.Status, request.VotingResults)
	h.respond(c, http.StatusOK, m, err)
}
