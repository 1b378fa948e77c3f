package models

import (
	"time"

	"munhub/internal/apperr"
	"munhub/internal/document"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AmendmentStatus string

const (
	AmendmentPending  AmendmentStatus = "pending"
	AmendmentAccepted AmendmentStatus = "accepted"
	AmendmentRejected AmendmentStatus = "rejected"
)

var amendmentTransitions = transitions[AmendmentStatus]{
	AmendmentPending: {AmendmentAccepted, AmendmentRejected},
}

// Amendment proposes a single structural change to the working draft.
// PointNumber addresses the clause for delete and modify; NewPointAfter is
// where an added clause goes.
type Amendment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID   primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	ResolutionID  primitive.ObjectID `bson:"resolutionId" json:"resolutionId"`
	Authors       []string           `bson:"authors" json:"authors"`
	Part          document.Part      `bson:"resolutionPart" json:"resolutionPart"`
	Action        document.Action    `bson:"actionType" json:"actionType"`
	PointNumber   *int               `bson:"pointNumber,omitempty" json:"pointNumber,omitempty"`
	NewPointAfter *int               `bson:"newPointAfter,omitempty" json:"newPointAfter,omitempty"`
	Content       string             `bson:"content,omitempty" json:"content,omitempty"`
	Status        AmendmentStatus    `bson:"status" json:"status"`
	AppliedAt     *time.Time         `bson:"appliedAt,omitempty" json:"appliedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Edit translates the amendment into a document edit.
func (a *Amendment) Edit() document.Edit {
	e := document.Edit{Part: a.Part, Action: a.Action, Content: a.Content}
	if a.PointNumber != nil {
		e.Point = *a.PointNumber
	}
	if a.NewPointAfter != nil {
		e.After = *a.NewPointAfter
	} else if a.Action == document.ActionAdd {
		e.After = -1
	}
	return e
}

// Validate checks the shape: add needs content and an insertion point,
// delete and modify need a point number.
func (a *Amendment) Validate() error {
	return a.Edit().Check()
}

func (a *Amendment) Review(to AmendmentStatus) error {
	if to != AmendmentAccepted && to != AmendmentRejected {
		return apperr.Validation("Review outcome must be accepted or rejected")
	}
	if err := amendmentTransitions.check("amendment", a.Status, to); err != nil {
		return err
	}
	a.Status = to
	return nil
}

// MarkApplied records that the amendment has been written into the draft.
func (a *Amendment) MarkApplied(now time.Time) error {
	if a.Status != AmendmentAccepted {
		return apperr.InvalidState("Only accepted amendments can be applied")
	}
	if a.AppliedAt != nil {
		return apperr.InvalidState("Amendment has already been applied")
	}
	a.AppliedAt = &now
	return nil
}
