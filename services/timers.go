package services

import (
	"context"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimerService struct {
	*base
}

type CreateTimerInput struct {
	SessionID     primitive.ObjectID
	Kind          models.TimerKind
	Duration      int
	Label         string
	TargetCountry string
}

func (s *TimerService) Create(ctx context.Context, p models.Principal, in CreateTimerInput) (*models.Timer, error) {
	session, err := s.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, session.CommitteeID, authz.Timer, authz.Manage)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, apperr.InvalidState("Session is not active")
	}
	t, err := models.NewTimer(c.ID, session.ID, in.Kind, in.Duration, cleanText(in.Label))
	if err != nil {
		return nil, err
	}
	if in.TargetCountry != "" {
		if !c.HasCountry(in.TargetCountry) {
			return nil, apperr.Validation("Country %q is not part of this committee", in.TargetCountry)
		}
		t.TargetCountry = in.TargetCountry
	}
	if err := s.Store.Timers.Insert(ctx, t); err != nil {
		return nil, err
	}
	s.Notify.Broadcast(c.ID, websocket.TimerCreated(t))
	return t, nil
}

func (s *TimerService) List(ctx context.Context, p models.Principal, sessionID primitive.ObjectID) ([]models.Timer, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.member(ctx, p, session.CommitteeID); err != nil {
		return nil, err
	}
	return s.Store.Timers.ListBySession(ctx, session.ID)
}

func (s *TimerService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Timer, error) {
	t, err := s.Store.Timers.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Timer")
	}
	if !p.BelongsTo(t.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return t, nil
}

// Remaining returns the seconds left on the timer right now.
func (s *TimerService) Remaining(ctx context.Context, p models.Principal, id primitive.ObjectID) (int, error) {
	t, err := s.Get(ctx, p, id)
	if err != nil {
		return 0, err
	}
	return t.Remaining(s.Now()), nil
}

// mutate applies fn under the timer's lock, then persists and announces it.
func (s *TimerService) mutate(ctx context.Context, p models.Principal, id primitive.ObjectID, fn func(*models.Timer) error) (*models.Timer, error) {
	t, err := s.Store.Timers.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Timer")
	}
	if _, err := s.authorize(ctx, p, t.CommitteeID, authz.Timer, authz.Manage); err != nil {
		return nil, err
	}

	unlock := s.lock("timer", t.ID)
	defer unlock()

	if t, err = s.Store.Timers.Get(ctx, id); err != nil {
		return nil, storeErr(err, "Timer")
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.Store.Timers.Replace(ctx, t); err != nil {
		return nil, storeErr(err, "Timer")
	}
	s.Notify.Broadcast(t.CommitteeID, websocket.TimerUpdated(t))
	return t, nil
}

// Start runs an idle timer or resumes a paused one.
func (s *TimerService) Start(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Timer, error) {
	now := s.Now()
	t, err := s.mutate(ctx, p, id, func(t *models.Timer) error { return t.Start(now) })
	if err != nil {
		return nil, err
	}
	s.Notify.Broadcast(t.CommitteeID, websocket.TimerStarted(t.Kind, t.Remaining(now), t.TargetCountry, now))
	return t, nil
}

func (s *TimerService) Pause(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Timer, error) {
	return s.mutate(ctx, p, id, func(t *models.Timer) error { return t.Pause(s.Now()) })
}

func (s *TimerService) Reset(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Timer, error) {
	return s.mutate(ctx, p, id, func(t *models.Timer) error {
		t.Reset()
		return nil
	})
}

func (s *TimerService) Finish(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Timer, error) {
	t, err := s.mutate(ctx, p, id, func(t *models.Timer) error { return t.Finish(s.Now()) })
	if err != nil {
		return nil, err
	}
	s.Notify.Broadcast(t.CommitteeID, websocket.TimerEnded(t.Kind, t.TargetCountry))
	return t, nil
}
