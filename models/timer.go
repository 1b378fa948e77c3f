package models

import (
	"time"

	"munhub/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimerKind string

const (
	TimerSession TimerKind = "session"
	TimerSpeaker TimerKind = "speaker"
	TimerCustom  TimerKind = "custom"
)

func (k TimerKind) Valid() bool {
	switch k {
	case TimerSession, TimerSpeaker, TimerCustom:
		return true
	}
	return false
}

type TimerStatus string

const (
	TimerIdle     TimerStatus = "idle"
	TimerRunning  TimerStatus = "running"
	TimerPaused   TimerStatus = "paused"
	TimerFinished TimerStatus = "finished"
)

var timerTransitions = transitions[TimerStatus]{
	TimerIdle:    {TimerRunning, TimerFinished},
	TimerRunning: {TimerPaused, TimerFinished},
	TimerPaused:  {TimerRunning, TimerFinished},
}

// Timer counts down Duration seconds. ElapsedTime is only authoritative while
// paused or finished; a running timer derives it from StartTime.
type Timer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID   primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	SessionID     primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Kind          TimerKind          `bson:"type" json:"type"`
	Label         string             `bson:"label" json:"label"`
	Duration      int                `bson:"duration" json:"duration"`
	StartTime     *time.Time         `bson:"startTime,omitempty" json:"startTime,omitempty"`
	PausedAt      *time.Time         `bson:"pausedAt,omitempty" json:"pausedAt,omitempty"`
	ElapsedTime   int                `bson:"elapsedTime" json:"elapsedTime"`
	Status        TimerStatus        `bson:"status" json:"status"`
	TargetCountry string             `bson:"targetCountry,omitempty" json:"targetCountry,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewTimer(committeeID, sessionID primitive.ObjectID, kind TimerKind, duration int, label string) (*Timer, error) {
	if !kind.Valid() {
		return nil, apperr.Validation("Unknown timer type %q", kind)
	}
	if duration <= 0 {
		return nil, apperr.Validation("Timer duration must be positive")
	}
	return &Timer{
		CommitteeID: committeeID,
		SessionID:   sessionID,
		Kind:        kind,
		Label:       label,
		Duration:    duration,
		Status:      TimerIdle,
	}, nil
}

// Start runs an idle timer or resumes a paused one without losing the
// elapsed time.
func (t *Timer) Start(now time.Time) error {
	if err := timerTransitions.check("timer", t.Status, TimerRunning); err != nil {
		return err
	}
	start := now.Add(-time.Duration(t.ElapsedTime) * time.Second)
	t.StartTime = &start
	t.PausedAt = nil
	t.Status = TimerRunning
	return nil
}

func (t *Timer) Pause(now time.Time) error {
	if err := timerTransitions.check("timer", t.Status, TimerPaused); err != nil {
		return err
	}
	t.ElapsedTime = t.elapsed(now)
	paused := now
	t.PausedAt = &paused
	t.Status = TimerPaused
	return nil
}

// Reset returns the timer to idle from any status.
func (t *Timer) Reset() {
	t.Status = TimerIdle
	t.StartTime = nil
	t.PausedAt = nil
	t.ElapsedTime = 0
}

func (t *Timer) Finish(now time.Time) error {
	if err := timerTransitions.check("timer", t.Status, TimerFinished); err != nil {
		return err
	}
	if t.Status == TimerRunning {
		t.ElapsedTime = t.elapsed(now)
	}
	t.Status = TimerFinished
	return nil
}

// Remaining returns the seconds left at now.
func (t *Timer) Remaining(now time.Time) int {
	switch t.Status {
	case TimerIdle:
		return t.Duration
	case TimerPaused:
		return max(0, t.Duration-t.ElapsedTime)
	case TimerRunning:
		return max(0, t.Duration-t.elapsed(now))
	}
	return 0
}

func (t *Timer) elapsed(now time.Time) int {
	if t.StartTime == nil {
		return t.ElapsedTime
	}
	return int(now.Sub(*t.StartTime) / time.Second)
}
