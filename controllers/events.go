package controllers

import (
	"net/http"
	"time"

	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
)

type eventRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     time.Time          `json:"endDate"`
	Status      models.EventStatus `json:"status"`
}

func (r eventRequest) input() services.EventInput {
	return services.EventInput{
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      r.Status,
	}
}

func (h *Controller) ListEvents(c *gin.Context) {
	events, err := h.svc.Events.List(c.Request.Context(), models.EventStatus(c.Query("status")))
	h.respond(c, http.StatusOK, events, err)
}

func (h *Controller) GetEvent(c *gin.Context) {
	id, ok := idParam(c, "id", "event")
	if !ok {
		return
	}
	e, err := h.svc.Events.Get(c.Request.Context(), id)
	h.respond(c, http.StatusOK, e, err)
}

func (h *Controller) CreateEvent(c *gin.Context) {
	var request eventRequest
	if !bind(c, &request) {
		return
	}
	e, err := h.svc.Events.Create(c.Request.Context(), caller(c), request.input())
	h.respond(c, http.StatusCreated, e, err)
}

func (h *Controller) UpdateEvent(c *gin.Context) {
	id, ok := idParam(c, "id", "event")
	if !ok {
		return
	}
	var request eventRequest
	if !bind(c, &request) {
		return
	}
	e, err := h.svc.Events.Update(c.Request.Context(), caller(c), id, request.input())
	h.respond(c, http.StatusOK, e, err)
}

func (h *Controller) DeleteEvent(c *gin.Context) {
	id, ok := idParam(c, "id", "event")
	if !ok {
		return
	}
	if err := h.svc.Events.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
