package services

import (
	"context"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MotionService struct {
	*base
}

// ProposeInput is the body of a new motion.
type ProposeInput struct {
	SessionID   primitive.ObjectID
	Type        models.MotionType
	Description string
	Duration    int
	SpeakerTime int
}

func (in ProposeInput) validate() error {
	if !in.Type.Valid() {
		return apperr.Validation("Unknown motion type %q", in.Type)
	}
	if in.Duration < 0 || in.SpeakerTime < 0 {
		return apperr.Validation("Durations cannot be negative")
	}
	return nil
}

// Propose raises a motion in an active session. Delegates propose for their
// country; staff proposals are attributed to the presidium.
func (s *MotionService) Propose(ctx context.Context, p models.Principal, in ProposeInput) (*models.Motion, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	session, err := s.session(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, p, session.CommitteeID, authz.Motion, authz.Propose); err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, apperr.InvalidState("Cannot propose motions in an inactive session")
	}

	proposer := models.PresidiumProposer
	if p.Role == models.RoleDelegate {
		proposer = p.CountryName
	}
	motion := &models.Motion{
		CommitteeID: session.CommitteeID,
		SessionID:   session.ID,
		Type:        in.Type,
		ProposedBy:  proposer,
		Description: in.Description,
		Duration:    in.Duration,
		SpeakerTime: in.SpeakerTime,
		Status:      models.MotionPending,
		Priority:    in.Type.Priority(),
	}
	if err := s.Store.Motions.Insert(ctx, motion); err != nil {
		return nil, err
	}

	s.record(ctx, session.CommitteeID, session.ID, proposer, models.ActivityProposal, 0, map[string]any{
		"motionType": string(motion.Type),
		"motionId":   motion.ID.Hex(),
	})
	s.Notify.Broadcast(motion.CommitteeID, websocket.MotionProposed(motion))
	return motion, nil
}

func (s *MotionService) motion(ctx context.Context, id primitive.ObjectID) (*models.Motion, error) {
	m, err := s.Store.Motions.Get(ctx, id)
	return m, storeErr(err, "Motion")
}

func (s *MotionService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Motion, error) {
	m, err := s.motion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(m.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return m, nil
}

// ListBySession returns every motion of a session, newest first.
func (s *MotionService) ListBySession(ctx context.Context, p models.Principal, sessionID primitive.ObjectID) ([]models.Motion, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(session.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return s.Store.Motions.ListBySession(ctx, session.ID)
}

// Pending returns the session's pending motions in review order.
func (s *MotionService) Pending(ctx context.Context, p models.Principal, sessionID primitive.ObjectID) ([]models.Motion, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(session.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return s.Store.Motions.ListPending(ctx, session.ID)
}

// Second records the caller's country as seconder.
func (s *MotionService) Second(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Motion, error) {
	m, err := s.motion(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, p, m.CommitteeID, authz.Motion, authz.Second); err != nil {
		return nil, err
	}

	unlock := s.lock("motion", m.ID)
	defer unlock()

	if m, err = s.motion(ctx, id); err != nil {
		return nil, err
	}
	if m.Status != models.MotionPending {
		return nil, apperr.InvalidState("Only pending motions can be seconded")
	}
	if err := m.Second(p.CountryName); err != nil {
		return nil, err
	}
	if err := s.Store.Motions.Replace(ctx, m); err != nil {
		return nil, storeErr(err, "Motion")
	}
	s.Notify.Broadcast(m.CommitteeID, websocket.MotionSeconded(m))
	return m, nil
}

// UpdateStatus resolves a pending motion. An accepted caucus motion also
// switches the session into the matching informal mode.
func (s *MotionService) UpdateStatus(ctx context.Context, p models.Principal, id primitive.ObjectID, status models.MotionStatus, results *models.VoteCounts) (*models.Motion, error) {
	m, err := s.motion(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, p, m.CommitteeID, authz.Motion, authz.Decide); err != nil {
		return nil, err
	}

	unlock := s.lock("motion", m.ID)
	defer unlock()

	if m, err = s.motion(ctx, id); err != nil {
		return nil, err
	}
	if err := m.SetStatus(status, results); err != nil {
		return nil, err
	}

	mode, caucus := m.Type.CaucusMode()
	var session *models.Session
	if status == models.MotionAccepted && caucus {
		unlockSession := s.lock("session", m.CommitteeID)
		defer unlockSession()
		if session, err = s.session(ctx, m.SessionID); err != nil {
			return nil, err
		}
		if err := session.SetMode(mode); err != nil {
			return nil, err
		}
		if err := s.Store.Sessions.Replace(ctx, session); err != nil {
			return nil, storeErr(err, "Session")
		}
	}
	if err := s.Store.Motions.Replace(ctx, m); err != nil {
		return nil, storeErr(err, "Motion")
	}

	s.Logger.Info("motion resolved",
		zap.String("committeeId", m.CommitteeID.Hex()),
		zap.String("motionId", m.ID.Hex()),
		zap.String("type", string(m.Type)),
		zap.String("status", string(m.Status)),
	)
	if session != nil {
		s.Notify.Broadcast(m.CommitteeID, websocket.SessionUpdated(session))
		s.Notify.Broadcast(m.CommitteeID, websocket.ModeChanged(mode, m.Duration))
		if m.Duration > 0 {
			s.Notify.Broadcast(m.CommitteeID, websocket.TimerStarted(models.TimerSession, m.Duration, "", s.Now()))
		}
	}
	s.Notify.Broadcast(m.CommitteeID, websocket.MotionStatusUpdated(m))
	return m, nil
}
