package controllers

import (
	"net/http"

	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Controller) CreateVoting(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request struct {
		Type             models.VotingKind   `json:"type"`
		Target           models.VotingTarget `json:"target" binding:"required"`
		TargetID         *primitive.ObjectID `json:"targetId"`
		RequiredMajority models.Majority     `json:"requiredMajority"`
	}
	if !bind(c, &request) {
		return
	}
	v, err := h.svc.Votings.Create(c.Request.Context(), caller(c), services.CreateVotingInput{
		CommitteeID:      committeeID,
		Kind:             request.Type,
		Target:           request.Target,
		TargetID:         request.TargetID,
		RequiredMajority: request.RequiredMajority,
	})
	h.respond(c, http.StatusCreated, v, err)
}

func (h *Controller) ListCommitteeVotings(c *gin.Context) {
	committeeID, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	votings, err := h.svc.Votings.ListByCommittee(c.Request.Context(), caller(c), committeeID)
	h.respond(c, http.StatusOK, votings, err)
}

func (h *Controller) ListSessionVotings(c *gin.Context) {
	sessionID, ok := idParam(c, "id", "session")
	if !ok {
		return
	}
	votings, err := h.svc.Votings.ListBySession(c.Request.Context(), caller(c), sessionID)
	h.respond(c, http.StatusOK, votings, err)
}

func (h *Controller) GetVoting(c *gin.Context) {
	id, ok := idParam(c, "id", "voting")
	if !ok {
		return
	}
	v, err := h.svc.Votings.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, v, err)
}

// SubmitVote casts the caller's vote. A veto finalizes the voting at once.
func (h *Controller) SubmitVote(c *gin.Context) {
	id, ok := idParam(c, "id", "voting")
	if !ok {
		return
	}
	var request struct {
		Vote models.VoteChoice `json:"vote" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	out, err := h.svc.Votings.Submit(c.Request.Context(), caller(c), id, request.Vote)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := gin.H{"voting": out.Voting, "vetoed": out.Vetoed}
	if out.Message != "" {
		body["message"] = out.Message
	}
	c.JSON(http.StatusOK, body)
}

func (h *Controller) FinalizeVoting(c *gin.Context) {
	id, ok := idParam(c, "id", "voting")
	if !ok {
		return
	}
	v, stats, err := h.svc.Votings.Finalize(c.Request.Context(), caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voting": v, "results": stats})
}
