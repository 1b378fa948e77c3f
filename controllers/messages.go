package controllers

import (
	"net/http"

	"munhub/services"

	"github.com/gin-gonic/gin"
)

func (h *Controller) SendMessage(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request struct {
		RecipientCountry string `json:"recipientCountry"`
		IsCommitteeWide  bool   `json:"isCommitteeWide"`
		Content          string `json:"content" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	m, err := h.svc.Messages.Send(c.Request.Context(), caller(c), services.SendMessageInput{
		CommitteeID:      committeeID,
		RecipientCountry: request.RecipientCountry,
		IsCommitteeWide:  request.IsCommitteeWide,
		Content:          request.Content,
	})
	h.respond(c, http.StatusCreated, m, err)
}

// Inbox lists the caller's messages. Staff pass ?country= to read one
// delegation's inbox, or nothing for the committee-wide announcements.
func (h *Controller) Inbox(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	list, err := h.svc.Messages.Inbox(c.Request.Context(), caller(c), committeeID, c.Query("country"))
	h.respond(c, http.StatusOK, list, err)
}

func (h *Controller) SentMessages(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	list, err := h.svc.Messages.Sent(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, list, err)
}

func (h *Controller) UnreadCount(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	n, err := h.svc.Messages.UnreadCount(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, gin.H{"count": n}, err)
}

func (h *Controller) MarkMessageRead(c *gin.Context) {
	id, ok := idParam(c, "id", "message")
	if !ok {
		return
	}
	m, err := h.svc.Messages.MarkRead(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, m, err)
}
