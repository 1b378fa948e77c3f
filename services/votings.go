package services

import (
	"context"
	"errors"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/internal/tally"
	"munhub/models"
	"munhub/store"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type VotingService struct {
	*base
}

type CreateVotingInput struct {
	CommitteeID      primitive.ObjectID
	Kind             models.VotingKind
	Target           models.VotingTarget
	TargetID         *primitive.ObjectID
	RequiredMajority models.Majority
}

func (in *CreateVotingInput) normalize() error {
	if in.Kind == "" {
		in.Kind = models.VotingSimple
	}
	if in.RequiredMajority == "" {
		in.RequiredMajority = models.MajoritySimple
	}
	if !in.Kind.Valid() {
		return apperr.Validation("Unknown voting type %q", in.Kind)
	}
	if !in.Target.Valid() {
		return apperr.Validation("Unknown voting target %q", in.Target)
	}
	if !in.RequiredMajority.Valid() {
		return apperr.Validation("Unknown majority %q", in.RequiredMajority)
	}
	if in.Target != models.TargetProcedure && (in.TargetID == nil || in.TargetID.IsZero()) {
		return apperr.Validation("A %s voting needs a target id", in.Target)
	}
	if in.Target == models.TargetProcedure {
		in.TargetID = nil
	}
	return nil
}

func openVotingConflict(id primitive.ObjectID) error {
	return apperr.Conflict("Committee already has an active voting").With("activeVotingId", id.Hex())
}

// Create opens a voting in the committee's active session.
func (s *VotingService) Create(ctx context.Context, p models.Principal, in CreateVotingInput) (*models.Voting, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, in.CommitteeID, authz.Voting, authz.Create)
	if err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, c.ID, in.Target, in.TargetID); err != nil {
		return nil, err
	}

	unlock := s.lock("votings", c.ID)
	defer unlock()

	session, err := s.Store.Sessions.Active(ctx, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidState("No active session found for this committee")
	}
	if err != nil {
		return nil, err
	}

	open, err := s.Store.Votings.Open(ctx, c.ID)
	switch {
	case err == nil:
		return nil, openVotingConflict(open.ID)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	voting := &models.Voting{
		CommitteeID:      c.ID,
		SessionID:        session.ID,
		Kind:             in.Kind,
		Target:           in.Target,
		TargetID:         in.TargetID,
		RequiredMajority: in.RequiredMajority,
		Votes:            []models.Vote{},
	}
	if err := s.Store.Votings.Insert(ctx, voting); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Committee already has an active voting")
		}
		return nil, err
	}

	s.Notify.Broadcast(c.ID, websocket.VotingStarted(voting))
	return voting, nil
}

func (s *VotingService) checkTarget(ctx context.Context, committeeID primitive.ObjectID, target models.VotingTarget, id *primitive.ObjectID) error {
	var owner primitive.ObjectID
	switch target {
	case models.TargetResolution:
		r, err := s.Store.Resolutions.Get(ctx, *id)
		if err != nil {
			return storeErr(err, "Resolution")
		}
		owner = r.CommitteeID
	case models.TargetAmendment:
		a, err := s.Store.Amendments.Get(ctx, *id)
		if err != nil {
			return storeErr(err, "Amendment")
		}
		owner = a.CommitteeID
	default:
		return nil
	}
	if owner != committeeID {
		return apperr.Validation("Voting target belongs to another committee")
	}
	return nil
}

func (s *VotingService) voting(ctx context.Context, id primitive.ObjectID) (*models.Voting, error) {
	v, err := s.Store.Votings.Get(ctx, id)
	return v, storeErr(err, "Voting")
}

func (s *VotingService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Voting, error) {
	v, err := s.voting(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(v.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return v, nil
}

func (s *VotingService) ListByCommittee(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.Voting, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	return s.Store.Votings.ListByCommittee(ctx, c.ID)
}

func (s *VotingService) ListBySession(ctx context.Context, p models.Principal, sessionID primitive.ObjectID) ([]models.Voting, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(session.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return s.Store.Votings.ListBySession(ctx, session.ID)
}

// VoteOutcome is the voting after a vote was cast. Vetoed is set when the
// vote closed the voting on its own.
type VoteOutcome struct {
	Voting  *models.Voting
	Vetoed  bool
	Message string
}

// Submit casts or replaces the caller's vote. Submission and finalization
// are serialized per voting.
func (s *VotingService) Submit(ctx context.Context, p models.Principal, id primitive.ObjectID, choice models.VoteChoice) (*VoteOutcome, error) {
	if !choice.Valid() {
		return nil, apperr.Validation("Unknown vote %q", choice)
	}
	v, err := s.voting(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, v.CommitteeID, authz.Voting, authz.Vote)
	if err != nil {
		return nil, err
	}

	unlock := s.lock("voting", v.ID)
	defer unlock()

	if v, err = s.voting(ctx, id); err != nil {
		return nil, err
	}
	if !v.IsOpen() {
		return nil, apperr.InvalidState("Voting is already closed")
	}
	session, err := s.session(ctx, v.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, apperr.InvalidState("Session is not active")
	}
	if !session.IsPresent(p.CountryName) {
		return nil, apperr.InvalidState("Your country is not marked as present in the current session")
	}

	if err := v.CastVote(p.CountryName, choice, s.Now()); err != nil {
		return nil, err
	}
	out := &VoteOutcome{Voting: v}
	if tally.IsVeto(c, v, p.CountryName, choice) {
		if err := v.Close(models.ResultRejected); err != nil {
			return nil, err
		}
		v.VetoedBy = p.CountryName
		out.Vetoed = true
		out.Message = "Resolution rejected due to permanent member veto"
	}
	if err := s.Store.Votings.Replace(ctx, v); err != nil {
		return nil, storeErr(err, "Voting")
	}

	s.record(ctx, v.CommitteeID, v.SessionID, p.CountryName, models.ActivityVote, 0, map[string]any{
		"votingId": v.ID.Hex(),
		"vote":     string(choice),
	})
	s.Notify.Broadcast(v.CommitteeID, websocket.VoteSubmitted(p.CountryName, v.ID))
	if out.Vetoed {
		s.Logger.Info("voting vetoed",
			zap.String("committeeId", v.CommitteeID.Hex()),
			zap.String("votingId", v.ID.Hex()),
			zap.String("country", p.CountryName),
		)
		s.Notify.Broadcast(v.CommitteeID, websocket.VotingResults(v, tally.NewStats(tally.Count(v.Votes), models.ResultRejected)))
	}
	return out, nil
}

// Finalize tallies an open voting and closes it.
func (s *VotingService) Finalize(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Voting, tally.Stats, error) {
	v, err := s.voting(ctx, id)
	if err != nil {
		return nil, tally.Stats{}, err
	}
	if _, err := s.authorize(ctx, p, v.CommitteeID, authz.Voting, authz.Finalize); err != nil {
		return nil, tally.Stats{}, err
	}

	unlock := s.lock("voting", v.ID)
	defer unlock()

	if v, err = s.voting(ctx, id); err != nil {
		return nil, tally.Stats{}, err
	}
	if !v.IsOpen() {
		return nil, tally.Stats{}, apperr.InvalidState("Voting is already closed")
	}

	counts := tally.Count(v.Votes)
	result := tally.Decide(counts, v.RequiredMajority)
	if err := v.Close(result); err != nil {
		return nil, tally.Stats{}, err
	}
	if err := s.Store.Votings.Replace(ctx, v); err != nil {
		return nil, tally.Stats{}, storeErr(err, "Voting")
	}

	stats := tally.NewStats(counts, result)
	s.Logger.Info("voting finalized",
		zap.String("committeeId", v.CommitteeID.Hex()),
		zap.String("votingId", v.ID.Hex()),
		zap.String("result", string(result)),
		zap.Int("yes", counts.Yes),
		zap.Int("no", counts.No),
		zap.Int("abstain", counts.Abstain),
	)
	s.Notify.Broadcast(v.CommitteeID, websocket.VotingResults(v, stats))
	return v, stats, nil
}
