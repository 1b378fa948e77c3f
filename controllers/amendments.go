package controllers

import (
	"net/http"

	"munhub/internal/document"
	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
)

func (h *Controller) CreateAmendment(c *gin.Context) {
	resolutionID, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	var request struct {
		Authors       []string        `json:"authors"`
		Part          document.Part   `json:"resolutionPart" binding:"required"`
		Action        document.Action `json:"actionType" binding:"required"`
		PointNumber   *int            `json:"pointNumber"`
		NewPointAfter *int            `json:"newPointAfter"`
		Content       string          `json:"content"`
	}
	if !bind(c, &request) {
		return
	}
	a, err := h.svc.Amendments.Create(c.Request.Context(), caller(c), services.CreateAmendmentInput{
		ResolutionID:  resolutionID,
		Authors:       request.Authors,
		Part:          request.Part,
		Action:        request.Action,
		PointNumber:   request.PointNumber,
		NewPointAfter: request.NewPointAfter,
		Content:       request.Content,
	})
	h.respond(c, http.StatusCreated, a, err)
}

func (h *Controller) ListAmendments(c *gin.Context) {
	resolutionID, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	list, err := h.svc.Amendments.ListByResolution(c.Request.Context(), caller(c), resolutionID)
	h.respond(c, http.StatusOK, list, err)
}

func (h *Controller) GetAmendment(c *gin.Context) {
	id, ok := idParam(c, "id", "amendment")
	if !ok {
		return
	}
	a, err := h.svc.Amendments.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, a, err)
}

func (h *Controller) ReviewAmendment(c *gin.Context) {
	id, ok := idParam(c, "id", "amendment")
	if !ok {
		return
	}
	var request struct {
		Status models.AmendmentStatus `json:"status" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	a, err := h.svc.Amendments.Review(c.Request.Context(), caller(c), id, request.Status)
	h.respond(c, http.StatusOK, a, err)
}

func (h *Controller) ApplyAmendment(c *gin.Context) {
	resolutionID, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	amendmentID, ok := idParam(c, "amendmentId", "amendment")
	if !ok {
		return
	}
	r, err := h.svc.Amendments.Apply(c.Request.Context(), caller(c), resolutionID, amendmentID)
	h.respond(c, http.StatusOK, r, err)
}
