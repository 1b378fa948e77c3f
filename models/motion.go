package models

import (
	"time"

	"munhub/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MotionType string

const (
	MotionAdjournment                   MotionType = "adjournment"
	MotionSuspension                    MotionType = "suspension"
	MotionClosureOfDebate               MotionType = "closure_of_debate"
	MotionRollCallVote                  MotionType = "roll_call_vote"
	MotionDivisionOfTheQuestion         MotionType = "division_of_the_question"
	MotionUnmoderatedCaucus             MotionType = "unmoderated_caucus"
	MotionModeratedCaucus               MotionType = "moderated_caucus"
	MotionConsultationOfTheWhole        MotionType = "consultation_of_the_whole"
	MotionIntroductionOfDraftResolution MotionType = "introduction_of_draft_resolution"
	MotionIntroductionOfAmendment       MotionType = "introduction_of_amendment"
	MotionOther                         MotionType = "other"
)

// motionPriorities ranks motions for presidium review; higher goes first.
var motionPriorities = map[MotionType]int{
	MotionAdjournment:                   100,
	MotionSuspension:                    90,
	MotionClosureOfDebate:               80,
	MotionRollCallVote:                  70,
	MotionDivisionOfTheQuestion:         60,
	MotionUnmoderatedCaucus:             50,
	MotionModeratedCaucus:               40,
	MotionConsultationOfTheWhole:        30,
	MotionIntroductionOfDraftResolution: 20,
	MotionIntroductionOfAmendment:       10,
	MotionOther:                         0,
}

func (t MotionType) Valid() bool {
	_, ok := motionPriorities[t]
	return ok
}

// Priority returns the fixed precedence weight of the motion type.
func (t MotionType) Priority() int {
	return motionPriorities[t]
}

// CaucusMode returns the session mode an accepted motion of this type puts
// the session in.
func (t MotionType) CaucusMode() (SessionMode, bool) {
	switch t {
	case MotionModeratedCaucus:
		return ModeInformalModerated, true
	case MotionUnmoderatedCaucus:
		return ModeInformalUnmoderated, true
	case MotionConsultationOfTheWhole:
		return ModeInformalConsultation, true
	}
	return "", false
}

type MotionStatus string

const (
	MotionPending  MotionStatus = "pending"
	MotionAccepted MotionStatus = "accepted"
	MotionRejected MotionStatus = "rejected"
	MotionExpired  MotionStatus = "expired"
)

var motionTransitions = transitions[MotionStatus]{
	MotionPending: {MotionAccepted, MotionRejected, MotionExpired},
}

func (s MotionStatus) Valid() bool {
	switch s {
	case MotionPending, MotionAccepted, MotionRejected, MotionExpired:
		return true
	}
	return false
}

// VoteCounts records a show-of-hands result on a motion.
type VoteCounts struct {
	Yes     int `bson:"yes" json:"yes"`
	No      int `bson:"no" json:"no"`
	Abstain int `bson:"abstain" json:"abstain"`
}

// PresidiumProposer is recorded as proposer when the chair raises a motion.
const PresidiumProposer = "Presidium"

type Motion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID   primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	SessionID     primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Type          MotionType         `bson:"type" json:"type"`
	ProposedBy    string             `bson:"proposedBy" json:"proposedBy"`
	SecondedBy    string             `bson:"secondedBy,omitempty" json:"secondedBy,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Duration      int                `bson:"duration,omitempty" json:"duration,omitempty"`       // seconds, for caucuses
	SpeakerTime   int                `bson:"speakerTime,omitempty" json:"speakerTime,omitempty"` // seconds per speaker
	Status        MotionStatus       `bson:"status" json:"status"`
	VotingResults VoteCounts         `bson:"votingResults" json:"votingResults"`
	Priority      int                `bson:"priority" json:"priority"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Second records the seconding country.
func (m *Motion) Second(country string) error {
	if m.SecondedBy != "" {
		return apperr.InvalidState("Motion already has a seconder")
	}
	if country == m.ProposedBy {
		return apperr.Validation("You cannot second your own motion")
	}
	m.SecondedBy = country
	return nil
}

// SetStatus resolves a pending motion.
func (m *Motion) SetStatus(to MotionStatus, results *VoteCounts) error {
	if !to.Valid() {
		return apperr.Validation("Unknown motion status %q", to)
	}
	if err := motionTransitions.check("motion", m.Status, to); err != nil {
		return err
	}
	m.Status = to
	if results != nil {
		m.VotingResults = *results
	}
	return nil
}
