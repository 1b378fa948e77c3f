package controllers

import (
	"context"
	"net/http"

	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Controller) CreateTimer(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	var request struct {
		Type          models.TimerKind `json:"type" binding:"required"`
		Duration      int              `json:"duration"`
		Label         string           `json:"label"`
		TargetCountry string           `json:"targetCountry"`
	}
	if !bind(c, &request) {
		return
	}
	t, err := h.svc.Timers.Create(c.Request.Context(), caller(c), services.CreateTimerInput{
		SessionID:     sessionID,
		Kind:          request.Type,
		Duration:      request.Duration,
		Label:         request.Label,
		TargetCountry: request.TargetCountry,
	})
	h.respond(c, http.StatusCreated, t, err)
}

func (h *Controller) ListTimers(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	timers, err := h.svc.Timers.List(c.Request.Context(), caller(c), sessionID)
	h.respond(c, http.StatusOK, timers, err)
}

func (h *Controller) GetTimer(c *gin.Context) {
	id, ok := idParam(c, "id", "timer")
	if !ok {
		return
	}
	t, err := h.svc.Timers.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, t, err)
}

func (h *Controller) TimerRemaining(c *gin.Context) {
	id, ok := idParam(c, "id", "timer")
	if !ok {
		return
	}
	left, err := h.svc.Timers.Remaining(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, gin.H{"remaining": left}, err)
}

type timerTransition func(context.Context, models.Principal, primitive.ObjectID) (*models.Timer, error)

// timerAction adapts one of the timer transitions to a handler.
func (h *Controller) timerAction(fn timerTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id", "timer")
		if !ok {
			return
		}
		t, err := fn(c.Request.Context(), caller(c), id)
		h.respond(c, http.StatusOK, t, err)
	}
}

func (h *Controller) StartTimer() gin.HandlerFunc  { return h.timerAction(h.svc.Timers.Start) }
func (h *Controller) PauseTimer() gin.HandlerFunc  { return h.timerAction(h.svc.Timers.Pause) }
func (h *Controller) ResetTimer() gin.HandlerFunc  { return h.timerAction(h.svc.Timers.Reset) }
func (h *Controller) FinishTimer() gin.HandlerFunc { return h.timerAction(h.svc.Timers.Finish) }
