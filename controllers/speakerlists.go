package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type speakerRequest struct {
	Country string `json:"country"`
}

// speakerCountry reads the optional country from the body. Delegates may
// leave it empty to act for their own delegation.
func speakerCountry(c *gin.Context) (string, bool) {
	var request speakerRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if !bind(c, &request) {
		return "", false
	}
	return request.Country, true
}

func (h *Controller) GetSpeakerList(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	l, err := h.svc.SpeakerLists.Get(c.Request.Context(), caller(c), sessionID)
	h.respond(c, http.StatusOK, l, err)
}

func (h *Controller) AddSpeaker(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	country, ok := speakerCountry(c)
	if !ok {
		return
	}
	l, err := h.svc.SpeakerLists.Add(c.Request.Context(), caller(c), sessionID, country)
	h.respond(c, http.StatusOK, l, err)
}

func (h *Controller) RemoveSpeaker(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	l, err := h.svc.SpeakerLists.Remove(c.Request.Context(), caller(c), sessionID, c.Query("country"))
	h.respond(c, http.StatusOK, l, err)
}

func (h *Controller) MoveSpeakerToEnd(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	country, ok := speakerCountry(c)
	if !ok {
		return
	}
	l, err := h.svc.SpeakerLists.MoveToEnd(c.Request.Context(), caller(c), sessionID, country)
	h.respond(c, http.StatusOK, l, err)
}

func (h *Controller) NextSpeaker(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	var request struct {
		SpeakerTime int `json:"speakerTime"`
	}
	if c.Request.ContentLength != 0 && !bind(c, &request) {
		return
	}
	l, err := h.svc.SpeakerLists.Next(c.Request.Context(), caller(c), sessionID, request.SpeakerTime)
	h.respond(c, http.StatusOK, l, err)
}
