package controllers

import (
	"net/http"

	"munhub/internal/document"
	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
)

// CreateResolution accepts structured clauses, or flat text in content
// which is parsed into clauses.
func (h *Controller) CreateResolution(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request struct {
		Title            string                     `json:"title" binding:"required"`
		Authors          []string                   `json:"authors"`
		PreambleClauses  []document.PreambleClause  `json:"preambleClauses"`
		OperativeClauses []document.OperativeClause `json:"operativeClauses"`
		Content          string                     `json:"content"`
	}
	if !bind(c, &request) {
		return
	}
	r, err := h.svc.Resolutions.Create(c.Request.Context(), caller(c), services.CreateResolutionInput{
		CommitteeID: committeeID,
		Title:       request.Title,
		Authors:     request.Authors,
		Preamble:    request.PreambleClauses,
		Operative:   request.OperativeClauses,
		Content:     request.Content,
	})
	h.respond(c, http.StatusCreated, r, err)
}

func (h *Controller) ListResolutions(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	list, err := h.svc.Resolutions.List(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, list, err)
}

func (h *Controller) MyResolutions(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	list, err := h.svc.Resolutions.Mine(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, list, err)
}

func (h *Controller) WorkingDraft(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	r, err := h.svc.Resolutions.WorkingDraft(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, r, err)
}

func (h *Controller) GetResolution(c *gin.Context) {
	id, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	r, err := h.svc.Resolutions.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, r, err)
}

func (h *Controller) ConfirmCoAuthor(c *gin.Context) {
	id, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	r, err := h.svc.Resolutions.ConfirmCoAuthor(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, r, err)
}

func (h *Controller) DeclineCoAuthor(c *gin.Context) {
	id, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	r, err := h.svc.Resolutions.DeclineCoAuthor(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, r, err)
}

func (h *Controller) ReviewResolution(c *gin.Context) {
	id, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	var request struct {
		Status   models.ResolutionStatus `json:"status" binding:"required"`
		Comments string                  `json:"comments"`
	}
	if !bind(c, &request) {
		return
	}
	r, err := h.svc.Resolutions.Review(c.Request.Context(), caller(c), id, request.Status, request.Comments)
	h.respond(c, http.StatusOK, r, err)
}

func (h *Controller) SetWorkingDraft(c *gin.Context) {
	id, ok := idParam(c, "id", "resolution")
	if !ok {
		return
	}
	r, err := h.svc.Resolutions.SetWorkingDraft(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, r, err)
}
