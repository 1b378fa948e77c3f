package controllers

import (
	"net/http"

	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Controller) CountryStatistics(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	stats, err := h.svc.Statistics.CountryStats(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, stats, err)
}

func (h *Controller) ActivityBreakdown(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	counts, err := h.svc.Statistics.Breakdown(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, counts, err)
}

func (h *Controller) DelegateStatistics(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	report, err := h.svc.Statistics.Delegate(c.Request.Context(), caller(c), committeeID, c.Param("country"))
	h.respond(c, http.StatusOK, report, err)
}

func (h *Controller) CommitteeSummary(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	summary, err := h.svc.Statistics.Summary(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, summary, err)
}

func (h *Controller) RecordActivity(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request struct {
		SessionID   primitive.ObjectID  `json:"sessionId"`
		CountryName string              `json:"countryName" binding:"required"`
		Type        models.ActivityKind `json:"type" binding:"required"`
		Duration    int                 `json:"duration"`
		Details     map[string]any      `json:"details"`
	}
	if !bind(c, &request) {
		return
	}
	a, err := h.svc.Statistics.Record(c.Request.Context(), caller(c), services.RecordInput{
		CommitteeID: committeeID,
		SessionID:   request.SessionID,
		CountryName: request.CountryName,
		Kind:        request.Type,
		Duration:    request.Duration,
		Details:     request.Details,
	})
	h.respond(c, http.StatusCreated, a, err)
}
