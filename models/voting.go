package models

import (
	"time"

	"munhub/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VotingKind string

const (
	VotingSimple   VotingKind = "simple"
	VotingRollCall VotingKind = "roll-call"
)

func (k VotingKind) Valid() bool {
	return k == VotingSimple || k == VotingRollCall
}

type VotingTarget string

const (
	TargetResolution VotingTarget = "resolution"
	TargetAmendment  VotingTarget = "amendment"
	TargetProcedure  VotingTarget = "procedure"
)

func (t VotingTarget) Valid() bool {
	switch t {
	case TargetResolution, TargetAmendment, TargetProcedure:
		return true
	}
	return false
}

// Majority is the threshold a voting must clear.
type Majority string

const (
	MajoritySimple    Majority = "simple"
	MajorityQualified Majority = "qualified" // at least 2/3 of non-abstaining votes
)

func (m Majority) Valid() bool {
	return m == MajoritySimple || m == MajorityQualified
}

type VoteChoice string

const (
	VoteYes     VoteChoice = "yes"
	VoteNo      VoteChoice = "no"
	VoteAbstain VoteChoice = "abstain"
)

func (c VoteChoice) Valid() bool {
	switch c {
	case VoteYes, VoteNo, VoteAbstain:
		return true
	}
	return false
}

type VotingResult string

const (
	ResultAccepted VotingResult = "accepted"
	ResultRejected VotingResult = "rejected"
)

type Vote struct {
	CountryName string     `bson:"countryName" json:"countryName"`
	Choice      VoteChoice `bson:"vote" json:"vote"`
	Timestamp   time.Time  `bson:"timestamp" json:"timestamp"`
}

// Voting is a single ballot. Result is nil while the voting is open; the
// field is always written so open votings can be matched on a null result.
type Voting struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CommitteeID      primitive.ObjectID  `bson:"committeeId" json:"committeeId"`
	SessionID        primitive.ObjectID  `bson:"sessionId" json:"sessionId"`
	Kind             VotingKind          `bson:"type" json:"type"`
	Target           VotingTarget        `bson:"target" json:"target"`
	TargetID         *primitive.ObjectID `bson:"targetId,omitempty" json:"targetId,omitempty"`
	RequiredMajority Majority            `bson:"requiredMajority" json:"requiredMajority"`
	Votes            []Vote              `bson:"votes" json:"votes"`
	Result           *VotingResult       `bson:"result" json:"result"`
	VetoedBy         string              `bson:"vetoedBy,omitempty" json:"vetoedBy,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (v *Voting) IsOpen() bool {
	return v.Result == nil
}

// CastVote records country's choice, overwriting an earlier one.
func (v *Voting) CastVote(country string, choice VoteChoice, now time.Time) error {
	if !choice.Valid() {
		return apperr.Validation("Unknown vote %q", choice)
	}
	if !v.IsOpen() {
		return apperr.InvalidState("Voting is already closed")
	}
	for i := range v.Votes {
		if v.Votes[i].CountryName == country {
			v.Votes[i].Choice = choice
			v.Votes[i].Timestamp = now
			return nil
		}
	}
	v.Votes = append(v.Votes, Vote{CountryName: country, Choice: choice, Timestamp: now})
	return nil
}

// Close sets the final result. A closed voting never reopens.
func (v *Voting) Close(result VotingResult) error {
	if !v.IsOpen() {
		return apperr.InvalidState("Voting is already closed")
	}
	if result != ResultAccepted && result != ResultRejected {
		return apperr.Validation("Unknown voting result %q", result)
	}
	v.Result = &result
	return nil
}

// VoteOf returns country's current vote.
func (v *Voting) VoteOf(country string) (Vote, bool) {
	for _, vote := range v.Votes {
		if vote.CountryName == country {
			return vote, true
		}
	}
	return Vote{}, false
}
