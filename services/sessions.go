package services

import (
	"context"
	"errors"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"
	"munhub/store"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type SessionService struct {
	*base
}

func activeSessionConflict(id primitive.ObjectID) error {
	return apperr.Conflict("Committee already has an active session").With("activeSessionId", id.Hex())
}

// Create opens the committee's next session. Creation is serialized per
// committee and backed by the store's one-active-session constraint.
func (s *SessionService) Create(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) (*models.Session, error) {
	c, err := s.authorize(ctx, p, committeeID, authz.Session, authz.Create)
	if err != nil {
		return nil, err
	}

	unlock := s.lock("session", c.ID)
	defer unlock()

	active, err := s.Store.Sessions.Active(ctx, c.ID)
	switch {
	case err == nil:
		return nil, activeSessionConflict(active.ID)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	count, err := s.Store.Sessions.CountByCommittee(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	session := models.NewSession(c.ID, count+1, s.Now())
	if err := s.Store.Sessions.Insert(ctx, session); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			if active, aerr := s.Store.Sessions.Active(ctx, c.ID); aerr == nil {
				return nil, activeSessionConflict(active.ID)
			}
			return nil, apperr.Conflict("Committee already has an active session")
		}
		return nil, err
	}

	s.Logger.Info("session opened",
		zap.String("committeeId", c.ID.Hex()),
		zap.String("sessionId", session.ID.Hex()),
		zap.Int("number", session.Number),
	)
	s.Notify.Broadcast(c.ID, websocket.SessionCreated(session))
	return session, nil
}

// List returns the committee's sessions by number.
func (s *SessionService) List(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.Session, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	return s.Store.Sessions.ListByCommittee(ctx, c.ID)
}

func (s *SessionService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Session, error) {
	session, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(session.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return session, nil
}

// Active returns the committee's current session.
func (s *SessionService) Active(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) (*models.Session, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	session, err := s.Store.Sessions.Active(ctx, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("No active session found")
	}
	return session, err
}

// mutate loads a session the caller may update and applies fn under the
// committee's session lock, then persists and broadcasts the result.
func (s *SessionService) mutate(ctx context.Context, p models.Principal, id primitive.ObjectID, fn func(*models.Session, *models.Committee) error) (*models.Session, error) {
	session, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, session.CommitteeID, authz.Session, authz.Update)
	if err != nil {
		return nil, err
	}

	unlock := s.lock("session", c.ID)
	defer unlock()

	// reload under the lock
	if session, err = s.session(ctx, id); err != nil {
		return nil, err
	}
	if err := fn(session, c); err != nil {
		return nil, err
	}
	if err := s.Store.Sessions.Replace(ctx, session); err != nil {
		return nil, storeErr(err, "Session")
	}
	return session, nil
}

// SetMode switches the debate mode of an active session.
func (s *SessionService) SetMode(ctx context.Context, p models.Principal, id primitive.ObjectID, mode models.SessionMode) (*models.Session, error) {
	session, err := s.mutate(ctx, p, id, func(session *models.Session, _ *models.Committee) error {
		return session.SetMode(mode)
	})
	if err != nil {
		return nil, err
	}
	s.Notify.Broadcast(session.CommitteeID, websocket.SessionUpdated(session))
	s.Notify.Broadcast(session.CommitteeID, websocket.ModeChanged(session.Mode, 0))
	return session, nil
}

// UpdateRollCall replaces the present countries. Names without a seat in
// the committee are rejected.
func (s *SessionService) UpdateRollCall(ctx context.Context, p models.Principal, id primitive.ObjectID, present []string) (*models.Session, error) {
	session, err := s.mutate(ctx, p, id, func(session *models.Session, c *models.Committee) error {
		for _, name := range present {
			if !c.HasCountry(name) {
				return apperr.Validation("Country %q is not part of this committee", name)
			}
		}
		return session.UpdateRollCall(present, len(c.Countries), s.Quorum)
	})
	if err != nil {
		return nil, err
	}
	s.Notify.Broadcast(session.CommitteeID, websocket.SessionUpdated(session))
	s.Notify.Broadcast(session.CommitteeID, websocket.RollCallUpdated(session.PresentCountries, session.Quorum))
	return session, nil
}

// Complete ends an active session.
func (s *SessionService) Complete(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Session, error) {
	session, err := s.mutate(ctx, p, id, func(session *models.Session, _ *models.Committee) error {
		return session.Complete(s.Now())
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("session completed",
		zap.String("committeeId", session.CommitteeID.Hex()),
		zap.String("sessionId", session.ID.Hex()),
	)
	s.Notify.Broadcast(session.CommitteeID, websocket.SessionCompleted(session))
	return session, nil
}
