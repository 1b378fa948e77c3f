package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityKind string

const (
	ActivitySpeech     ActivityKind = "speech"
	ActivityResolution ActivityKind = "resolution"
	ActivityAmendment  ActivityKind = "amendment"
	ActivityVote       ActivityKind = "vote"
	ActivityProposal   ActivityKind = "proposal"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case ActivitySpeech, ActivityResolution, ActivityAmendment, ActivityVote, ActivityProposal:
		return true
	}
	return false
}

// Activity is a write-once log entry used for statistics.
type Activity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	SessionID   primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	CountryName string             `bson:"countryName" json:"countryName"`
	Kind        ActivityKind       `bson:"activityType" json:"activityType"`
	Duration    int                `bson:"duration,omitempty" json:"duration,omitempty"` // seconds, speeches only
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Details     map[string]any     `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CountryStats aggregates a country's activities in one committee.
type CountryStats struct {
	Country         string `bson:"_id" json:"country"`
	Speeches        int    `bson:"speeches" json:"speeches"`
	SpeechDuration  int    `bson:"speechDuration" json:"speechDuration"`
	Resolutions     int    `bson:"resolutions" json:"resolutions"`
	Amendments      int    `bson:"amendments" json:"amendments"`
	Votes           int    `bson:"votes" json:"votes"`
	Proposals       int    `bson:"proposals" json:"proposals"`
	TotalActivities int    `bson:"totalActivities" json:"totalActivities"`
}

// Add folds one activity into the running totals.
func (s *CountryStats) Add(a Activity) {
	switch a.Kind {
	case ActivitySpeech:
		s.Speeches++
		s.SpeechDuration += a.Duration
	case ActivityResolution:
		s.Resolutions++
	case ActivityAmendment:
		s.Amendments++
	case ActivityVote:
		s.Votes++
	case ActivityProposal:
		s.Proposals++
	}
	s.TotalActivities++
}

type ActivityCount struct {
	Kind  ActivityKind `bson:"_id" json:"type"`
	Count int          `bson:"count" json:"count"`
}
