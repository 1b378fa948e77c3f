package controllers

import (
	"net/http"

	"munhub/models"

	"github.com/gin-gonic/gin"
)

func (h *Controller) CreateSession(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	s, err := h.svc.Sessions.Create(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusCreated, s, err)
}

func (h *Controller) ListSessions(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	sessions, err := h.svc.Sessions.List(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, sessions, err)
}

func (h *Controller) ActiveSession(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	s, err := h.svc.Sessions.Active(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, s, err)
}

func (h *Controller) GetSession(c *gin.Context) {
	id, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	s, err := h.svc.Sessions.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, s, err)
}

func (h *Controller) SetSessionMode(c *gin.Context) {
	id, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	var request struct {
		Mode models.SessionMode `json:"mode" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	s, err := h.svc.Sessions.SetMode(c.Request.Context(), caller(c), id, request.Mode)
	h.respond(c, http.StatusOK, s, err)
}

func (h *Controller) UpdateRollCall(c *gin.Context) {
	id, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	var request struct {
		PresentCountries []string `json:"presentCountries"`
	}
	if !bind(c, &request) {
		return
	}
	s, err := h.svc.Sessions.UpdateRollCall(c.Request.Context(), caller(c), id, request.PresentCountries)
	h.respond(c, http.StatusOK, s, err)
}

func (h *Controller) CompleteSession(c *gin.Context) {
	id, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	s, err := h.svc.Sessions.Complete(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, s, err)
}
