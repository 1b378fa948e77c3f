package controllers

import (
	"net/http"

	"munhub/models"
	"munhub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type countryRequest struct {
	Name              string `json:"name"`
	IsPermanentMember bool   `json:"isPermanentMember"`
	HasVetoRight      bool   `json:"hasVetoRight"`
}

func (r countryRequest) input() services.CountryInput {
	return services.CountryInput{Name: r.Name, IsPermanentMember: r.IsPermanentMember, HasVetoRight: r.HasVetoRight}
}

type committeeRequest struct {
	EventID              primitive.ObjectID     `json:"eventId"`
	Name                 string                 `json:"name"`
	Type                 models.CommitteeType   `json:"type"`
	Status               models.CommitteeStatus `json:"status"`
	MinResolutionAuthors int                    `json:"minResolutionAuthors"`
	Countries            []countryRequest       `json:"countries"`
}

func (r committeeRequest) input() services.CommitteeInput {
	in := services.CommitteeInput{
		EventID:              r.EventID,
		Name:                 r.Name,
		Type:                 r.Type,
		Status:               r.Status,
		MinResolutionAuthors: r.MinResolutionAuthors,
	}
	for _, country := range r.Countries {
		in.Countries = append(in.Countries, country.input())
	}
	return in
}

func (h *Controller) ListCommittees(c *gin.Context) {
	var eventID *primitive.ObjectID
	if raw := c.Query("eventId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			badRequest(c, "Invalid event ID")
			return
		}
		eventID = &id
	}
	committees, err := h.svc.Committees.List(c.Request.Context(), caller(c), eventID)
	h.respond(c, http.StatusOK, committees, err)
}

func (h *Controller) CreateCommittee(c *gin.Context) {
	var request committeeRequest
	if !bind(c, &request) {
		return
	}
	committee, err := h.svc.Committees.Create(c.Request.Context(), caller(c), request.input())
	h.respond(c, http.StatusCreated, committee, err)
}

func (h *Controller) GetCommittee(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	committee, err := h.svc.Committees.Get(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, committee, err)
}

func (h *Controller) UpdateCommittee(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request committeeRequest
	if !bind(c, &request) {
		return
	}
	committee, err := h.svc.Committees.Update(c.Request.Context(), caller(c), id, request.input())
	h.respond(c, http.StatusOK, committee, err)
}

func (h *Controller) DeleteCommittee(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	if err := h.svc.Committees.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Committee deleted"})
}

// CommitteeStatus is public: the delegate login page shows it before sign in.
func (h *Controller) CommitteeStatus(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	status, err := h.svc.Committees.Status(c.Request.Context(), id)
	h.respond(c, http.StatusOK, status, err)
}

func (h *Controller) QRData(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	data, err := h.svc.Committees.QRData(c.Request.Context(), caller(c), id)
	h.respond(c, http.StatusOK, data, err)
}

func (h *Controller) AddCountry(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request countryRequest
	if !bind(c, &request) {
		return
	}
	committee, err := h.svc.Committees.AddCountry(c.Request.Context(), caller(c), id, request.input())
	h.respond(c, http.StatusCreated, committee, err)
}

func (h *Controller) UpdateCountry(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request countryRequest
	if !bind(c, &request) {
		return
	}
	committee, err := h.svc.Committees.UpdateCountry(c.Request.Context(), caller(c), id, c.Param("country"), request.input())
	h.respond(c, http.StatusOK, committee, err)
}

func (h *Controller) RemoveCountry(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	committee, err := h.svc.Committees.RemoveCountry(c.Request.Context(), caller(c), id, c.Param("country"))
	h.respond(c, http.StatusOK, committee, err)
}

func (h *Controller) RegenerateToken(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	committee, err := h.svc.Committees.RegenerateToken(c.Request.Context(), caller(c), id, c.Param("country"))
	h.respond(c, http.StatusOK, committee, err)
}

func (h *Controller) AssignPresidium(c *gin.Context) {
	id, ok := idParam(c, "committeeId", "committee")
	if !ok {
		return
	}
	var request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &request) {
		return
	}
	user, err := h.svc.Committees.AssignPresidium(c.Request.Context(), caller(c), id, request.Username, request.Password)
	h.respond(c, http.StatusCreated, user, err)
}
