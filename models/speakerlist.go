package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SpeakerStatus string

const (
	SpeakerWaiting  SpeakerStatus = "waiting"
	SpeakerCurrent  SpeakerStatus = "current"
	SpeakerFinished SpeakerStatus = "finished"
)

type Speaker struct {
	CountryName       string        `bson:"countryName" json:"countryName"`
	AddedAt           time.Time     `bson:"addedAt" json:"addedAt"`
	Status            SpeakerStatus `bson:"status" json:"status"`
	SpeakingStartTime *time.Time    `bson:"speakingStartTime,omitempty" json:"speakingStartTime,omitempty"`
	SpeakingEndTime   *time.Time    `bson:"speakingEndTime,omitempty" json:"speakingEndTime,omitempty"`
	Duration          int           `bson:"duration,omitempty" json:"duration,omitempty"`
}

// NoSpeaker is CurrentSpeakerIndex when nobody holds the floor.
const NoSpeaker = -1

// SpeakerList is the queue of countries wishing to speak in one session.
type SpeakerList struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID         primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	SessionID           primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Speakers            []Speaker          `bson:"speakers" json:"speakers"`
	CurrentSpeakerIndex int                `bson:"currentSpeakerIndex" json:"currentSpeakerIndex"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewSpeakerList(committeeID, sessionID primitive.ObjectID) *SpeakerList {
	return &SpeakerList{
		CommitteeID:         committeeID,
		SessionID:           sessionID,
		Speakers:            []Speaker{},
		CurrentSpeakerIndex: NoSpeaker,
		IsActive:            true,
	}
}

func (l *SpeakerList) waitingIndex(country string) int {
	for i, s := range l.Speakers {
		if s.CountryName == country && s.Status == SpeakerWaiting {
			return i
		}
	}
	return -1
}

// Add queues country unless it is already waiting.
func (l *SpeakerList) Add(country string, now time.Time) bool {
	if l.waitingIndex(country) >= 0 {
		return false
	}
	l.Speakers = append(l.Speakers, Speaker{CountryName: country, AddedAt: now, Status: SpeakerWaiting})
	return true
}

// Remove takes a waiting country off the queue.
func (l *SpeakerList) Remove(country string) bool {
	i := l.waitingIndex(country)
	if i < 0 {
		return false
	}
	l.Speakers = append(l.Speakers[:i], l.Speakers[i+1:]...)
	if l.CurrentSpeakerIndex > i {
		l.CurrentSpeakerIndex--
	}
	return true
}

// MoveToEnd sends a waiting country to the back of the queue.
func (l *SpeakerList) MoveToEnd(country string) bool {
	i := l.waitingIndex(country)
	if i < 0 {
		return false
	}
	s := l.Speakers[i]
	l.Speakers = append(l.Speakers[:i], l.Speakers[i+1:]...)
	l.Speakers = append(l.Speakers, s)
	if l.CurrentSpeakerIndex > i {
		l.CurrentSpeakerIndex--
	}
	return true
}

// Next finishes the current speaker and gives the floor to the first waiting
// country. It returns the speaker who just finished, if any.
func (l *SpeakerList) Next(now time.Time) (finished *Speaker) {
	if cur := l.current(); cur != nil {
		cur.Status = SpeakerFinished
		end := now
		cur.SpeakingEndTime = &end
		if cur.SpeakingStartTime != nil {
			cur.Duration = int(end.Sub(*cur.SpeakingStartTime) / time.Second)
		}
		done := *cur
		finished = &done
	}

	l.CurrentSpeakerIndex = NoSpeaker
	for i := range l.Speakers {
		if l.Speakers[i].Status == SpeakerWaiting {
			start := now
			l.Speakers[i].Status = SpeakerCurrent
			l.Speakers[i].SpeakingStartTime = &start
			l.CurrentSpeakerIndex = i
			break
		}
	}
	return finished
}

// Current returns the speaker holding the floor.
func (l *SpeakerList) Current() (Speaker, bool) {
	if cur := l.current(); cur != nil {
		return *cur, true
	}
	return Speaker{}, false
}

func (l *SpeakerList) current() *Speaker {
	if l.CurrentSpeakerIndex < 0 || l.CurrentSpeakerIndex >= len(l.Speakers) {
		return nil
	}
	return &l.Speakers[l.CurrentSpeakerIndex]
}
