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
)

type SpeakerListService struct {
	*base
}

// load returns the session's list, creating an empty one on first use.
// Callers must hold the speakerlist lock.
func (s *SpeakerListService) load(ctx context.Context, session *models.Session) (*models.SpeakerList, error) {
	l, err := s.Store.SpeakerLists.BySession(ctx, session.ID)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	l = models.NewSpeakerList(session.CommitteeID, session.ID)
	if err := s.Store.SpeakerLists.Insert(ctx, l); err != nil {
		return nil, storeErr(err, "Speaker list")
	}
	return l, nil
}

func (s *SpeakerListService) Get(ctx context.Context, p models.Principal, sessionID primitive.ObjectID) (*models.SpeakerList, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.member(ctx, p, session.CommitteeID); err != nil {
		return nil, err
	}
	unlock := s.lock("speakerlist", session.ID)
	defer unlock()
	return s.load(ctx, session)
}

// mutate runs fn on the list of an active session and saves it when fn
// reports a change.
func (s *SpeakerListService) mutate(ctx context.Context, sessionID primitive.ObjectID, fn func(*models.Committee, *models.SpeakerList) (bool, error)) (*models.SpeakerList, bool, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if !session.IsActive() {
		return nil, false, apperr.InvalidState("Session is not active")
	}
	c, err := s.committee(ctx, session.CommitteeID)
	if err != nil {
		return nil, false, err
	}

	unlock := s.lock("speakerlist", session.ID)
	defer unlock()

	l, err := s.load(ctx, session)
	if err != nil {
		return nil, false, err
	}
	changed, err := fn(c, l)
	if err != nil || !changed {
		return l, false, err
	}
	if err := s.Store.SpeakerLists.Replace(ctx, l); err != nil {
		return nil, false, storeErr(err, "Speaker list")
	}
	return l, true, nil
}

// target resolves which country p acts for. Delegates always act for
// themselves; staff name the country.
func (s *SpeakerListService) target(p models.Principal, country string) (string, error) {
	if p.Role == models.RoleDelegate {
		if country != "" && country != p.CountryName {
			return "", apperr.Forbidden("Delegates can only manage their own place in the speaker list")
		}
		return p.CountryName, nil
	}
	return country, nil
}

// permit checks p may act on the session's list. Delegates joining or
// leaving the queue need Join; everything else needs Manage.
func (s *SpeakerListService) permit(ctx context.Context, p models.Principal, sessionID primitive.ObjectID, act authz.Action) error {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}
	_, err = s.authorize(ctx, p, session.CommitteeID, authz.SpeakerList, act)
	return err
}

func queueAction(p models.Principal) authz.Action {
	if p.Role == models.RoleDelegate {
		return authz.Join
	}
	return authz.Manage
}

// Add queues a country. Adding a country that is already waiting is a no-op.
func (s *SpeakerListService) Add(ctx context.Context, p models.Principal, sessionID primitive.ObjectID, country string) (*models.SpeakerList, error) {
	if err := s.permit(ctx, p, sessionID, queueAction(p)); err != nil {
		return nil, err
	}
	country, err := s.target(p, country)
	if err != nil {
		return nil, err
	}
	l, changed, err := s.mutate(ctx, sessionID, func(c *models.Committee, l *models.SpeakerList) (bool, error) {
		if !c.HasCountry(country) {
			return false, apperr.Validation("Country %q is not part of this committee", country)
		}
		return l.Add(country, s.Now()), nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.Notify.Broadcast(l.CommitteeID, websocket.SpeakerAdded(country, waitingPosition(l, country)))
		s.Notify.Broadcast(l.CommitteeID, websocket.SpeakerListUpdated(l))
	}
	return l, nil
}

func (s *SpeakerListService) Remove(ctx context.Context, p models.Principal, sessionID primitive.ObjectID, country string) (*models.SpeakerList, error) {
	if err := s.permit(ctx, p, sessionID, queueAction(p)); err != nil {
		return nil, err
	}
	country, err := s.target(p, country)
	if err != nil {
		return nil, err
	}
	l, _, err := s.mutate(ctx, sessionID, func(_ *models.Committee, l *models.SpeakerList) (bool, error) {
		if !l.Remove(country) {
			return false, apperr.NotFound("Country is not waiting to speak")
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.Notify.Broadcast(l.CommitteeID, websocket.SpeakerRemoved(country))
	s.Notify.Broadcast(l.CommitteeID, websocket.SpeakerListUpdated(l))
	return l, nil
}

func (s *SpeakerListService) MoveToEnd(ctx context.Context, p models.Principal, sessionID primitive.ObjectID, country string) (*models.SpeakerList, error) {
	if err := s.permit(ctx, p, sessionID, authz.Manage); err != nil {
		return nil, err
	}
	l, _, err := s.mutate(ctx, sessionID, func(_ *models.Committee, l *models.SpeakerList) (bool, error) {
		if !l.MoveToEnd(country) {
			return false, apperr.NotFound("Country is not waiting to speak")
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.Notify.Broadcast(l.CommitteeID, websocket.SpeakerListUpdated(l))
	return l, nil
}

// Next closes the current speech, records it for statistics and gives the
// floor to the first waiting country. speakerTime is the allotted time in
// seconds, announced with the new speaker.
func (s *SpeakerListService) Next(ctx context.Context, p models.Principal, sessionID primitive.ObjectID, speakerTime int) (*models.SpeakerList, error) {
	if err := s.permit(ctx, p, sessionID, authz.Manage); err != nil {
		return nil, err
	}
	if speakerTime < 0 {
		return nil, apperr.Validation("Speaker time cannot be negative")
	}

	var finished *models.Speaker
	l, _, err := s.mutate(ctx, sessionID, func(_ *models.Committee, l *models.SpeakerList) (bool, error) {
		finished = l.Next(s.Now())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if finished != nil {
		s.record(ctx, l.CommitteeID, l.SessionID, finished.CountryName, models.ActivitySpeech, finished.Duration, nil)
		s.Notify.Broadcast(l.CommitteeID, websocket.TimerEnded(models.TimerSpeaker, finished.CountryName))
	}
	if cur, ok := l.Current(); ok {
		s.Notify.Broadcast(l.CommitteeID, websocket.CurrentSpeaker(cur.CountryName, speakerTime))
		if speakerTime > 0 {
			s.Notify.Broadcast(l.CommitteeID, websocket.TimerStarted(models.TimerSpeaker, speakerTime, cur.CountryName, *cur.SpeakingStartTime))
		}
	}
	s.Notify.Broadcast(l.CommitteeID, websocket.SpeakerListUpdated(l))
	return l, nil
}

// waitingPosition is country's 1-based place among waiting speakers.
func waitingPosition(l *models.SpeakerList, country string) int {
	pos := 0
	for _, sp := range l.Speakers {
		if sp.Status != models.SpeakerWaiting {
			continue
		}
		pos++
		if sp.CountryName == country {
			return pos
		}
	}
	return 0
}
