package models

import (
	"time"

	"munhub/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

var sessionTransitions = transitions[SessionStatus]{
	SessionActive: {SessionCompleted},
}

// SessionMode is the debate mode of an active session.
type SessionMode string

const (
	ModeFormal               SessionMode = "formal"
	ModeInformalModerated    SessionMode = "informal_moderated"
	ModeInformalUnmoderated  SessionMode = "informal_unmoderated"
	ModeInformalConsultation SessionMode = "informal_consultation"
)

func (m SessionMode) Valid() bool {
	switch m {
	case ModeFormal, ModeInformalModerated, ModeInformalUnmoderated, ModeInformalConsultation:
		return true
	}
	return false
}

// QuorumPolicy decides quorum from the number of present countries and the
// number of seats in the committee.
type QuorumPolicy func(present, seats int) bool

// AnyCountryPresent grants quorum as soon as one country is present. This is
// the behaviour delegates have always seen; swap it for MajorityPresent once
// the rules committee decides.
var AnyCountryPresent QuorumPolicy = func(present, _ int) bool {
	return present > 0
}

// MajorityPresent grants quorum when more than half the seats are present.
var MajorityPresent QuorumPolicy = func(present, seats int) bool {
	return seats > 0 && present*2 > seats
}

type Session struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID      primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	Number           int                `bson:"number" json:"number"`
	Status           SessionStatus      `bson:"status" json:"status"`
	Mode             SessionMode        `bson:"mode" json:"mode"`
	Quorum           bool               `bson:"quorum" json:"quorum"`
	PresentCountries []string           `bson:"presentCountries" json:"presentCountries"`
	StartTime        time.Time          `bson:"startTime" json:"startTime"`
	EndTime          *time.Time         `bson:"endTime,omitempty" json:"endTime,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewSession returns the next active session of a committee in formal mode
// with an empty roll call.
func NewSession(committeeID primitive.ObjectID, number int, now time.Time) *Session {
	return &Session{
		ID:               primitive.NewObjectID(),
		CommitteeID:      committeeID,
		Number:           number,
		Status:           SessionActive,
		Mode:             ModeFormal,
		PresentCountries: []string{},
		StartTime:        now,
	}
}

func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}

// IsPresent reports whether country answered the roll call.
func (s *Session) IsPresent(country string) bool {
	for _, name := range s.PresentCountries {
		if name == country {
			return true
		}
	}
	return false
}

func (s *Session) requireActive() error {
	if !s.IsActive() {
		return apperr.InvalidState("Session is not active")
	}
	return nil
}

// SetMode switches the debate mode of an active session.
func (s *Session) SetMode(mode SessionMode) error {
	if !mode.Valid() {
		return apperr.Validation("Unknown session mode %q", mode)
	}
	if err := s.requireActive(); err != nil {
		return err
	}
	s.Mode = mode
	return nil
}

// UpdateRollCall replaces the present set and recomputes quorum.
func (s *Session) UpdateRollCall(present []string, seats int, policy QuorumPolicy) error {
	if err := s.requireActive(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(present))
	cleaned := make([]string, 0, len(present))
	for _, name := range present {
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		cleaned = append(cleaned, name)
	}
	s.PresentCountries = cleaned
	s.Quorum = policy(len(cleaned), seats)
	return nil
}

// Complete ends the session. Completed is terminal.
func (s *Session) Complete(now time.Time) error {
	if s.Status == SessionCompleted {
		return apperr.InvalidState("Session is already completed")
	}
	if err := sessionTransitions.check("session", s.Status, SessionCompleted); err != nil {
		return err
	}
	s.Status = SessionCompleted
	s.EndTime = &now
	return nil
}
