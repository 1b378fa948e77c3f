package services

import (
	"context"
	"errors"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/internal/document"
	"munhub/models"
	"munhub/store"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AmendmentService struct {
	*base
}

type CreateAmendmentInput struct {
	ResolutionID  primitive.ObjectID
	Authors       []string
	Part          document.Part
	Action        document.Action
	PointNumber   *int
	NewPointAfter *int
	Content       string
}

func (s *AmendmentService) resolution(ctx context.Context, id primitive.ObjectID) (*models.Resolution, error) {
	r, err := s.Store.Resolutions.Get(ctx, id)
	return r, storeErr(err, "Resolution")
}

func (s *AmendmentService) amendment(ctx context.Context, id primitive.ObjectID) (*models.Amendment, error) {
	a, err := s.Store.Amendments.Get(ctx, id)
	return a, storeErr(err, "Amendment")
}

// Create proposes a change to the committee's working draft. The caller's
// country is always one of the authors.
func (s *AmendmentService) Create(ctx context.Context, p models.Principal, in CreateAmendmentInput) (*models.Amendment, error) {
	r, err := s.resolution(ctx, in.ResolutionID)
	if err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, r.CommitteeID, authz.Amendment, authz.Create)
	if err != nil {
		return nil, err
	}
	if !r.IsWorkingDraft {
		return nil, apperr.InvalidState("Can only amend working draft resolutions")
	}

	authors := make([]string, 0, len(in.Authors)+1)
	seen := map[string]bool{}
	for _, name := range append(append([]string{}, in.Authors...), p.CountryName) {
		if seen[name] || name == "" {
			continue
		}
		if !c.HasCountry(name) {
			return nil, apperr.Validation("Country %q is not part of this committee", name)
		}
		seen[name] = true
		authors = append(authors, name)
	}

	a := &models.Amendment{
		CommitteeID:   r.CommitteeID,
		ResolutionID:  r.ID,
		Authors:       authors,
		Part:          in.Part,
		Action:        in.Action,
		PointNumber:   in.PointNumber,
		NewPointAfter: in.NewPointAfter,
		Content:       cleanText(in.Content),
		Status:        models.AmendmentPending,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	// the edit has to fit the draft as it stands now
	draft := r.Document()
	if err := draft.Apply(a.Edit()); err != nil {
		return nil, err
	}

	if err := s.Store.Amendments.Insert(ctx, a); err != nil {
		return nil, err
	}

	var sessionID primitive.ObjectID
	if active, err := s.Store.Sessions.Active(ctx, c.ID); err == nil {
		sessionID = active.ID
	}
	s.record(ctx, c.ID, sessionID, p.CountryName, models.ActivityAmendment, 0, map[string]any{
		"amendmentId":  a.ID.Hex(),
		"resolutionId": r.ID.Hex(),
		"actionType":   string(a.Action),
	})
	s.Notify.Broadcast(c.ID, websocket.AmendmentSubmitted(a))
	return a, nil
}

func (s *AmendmentService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Amendment, error) {
	a, err := s.amendment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(a.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return a, nil
}

func (s *AmendmentService) ListByResolution(ctx context.Context, p models.Principal, resolutionID primitive.ObjectID) ([]models.Amendment, error) {
	r, err := s.resolution(ctx, resolutionID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(r.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return s.Store.Amendments.ListByResolution(ctx, r.ID)
}

// Review accepts or rejects a pending amendment.
func (s *AmendmentService) Review(ctx context.Context, p models.Principal, id primitive.ObjectID, status models.AmendmentStatus) (*models.Amendment, error) {
	a, err := s.amendment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, p, a.CommitteeID, authz.Amendment, authz.Review); err != nil {
		return nil, err
	}

	unlock := s.lock("amendment", a.ID)
	defer unlock()

	if a, err = s.amendment(ctx, id); err != nil {
		return nil, err
	}
	if a.Status != models.AmendmentPending {
		return nil, apperr.InvalidState("Amendment is not in pending status")
	}
	if err := a.Review(status); err != nil {
		return nil, err
	}
	if err := s.Store.Amendments.Replace(ctx, a); err != nil {
		return nil, storeErr(err, "Amendment")
	}
	s.Notify.Broadcast(a.CommitteeID, websocket.AmendmentReviewed(a))
	return a, nil
}

// Apply writes an accepted amendment into the working draft, renumbering the
// affected part and regenerating the flat text.
func (s *AmendmentService) Apply(ctx context.Context, p models.Principal, resolutionID, amendmentID primitive.ObjectID) (*models.Resolution, error) {
	r, err := s.resolution(ctx, resolutionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, p, r.CommitteeID, authz.Amendment, authz.Apply); err != nil {
		return nil, err
	}

	// working draft selection first, then resolution workflow edits
	unlockDraft := s.lock("workingdraft", r.CommitteeID)
	defer unlockDraft()
	unlock := s.lock("resolution", r.ID)
	defer unlock()

	if r, err = s.resolution(ctx, resolutionID); err != nil {
		return nil, err
	}
	a, err := s.amendment(ctx, amendmentID)
	if err != nil {
		return nil, err
	}
	if a.ResolutionID != r.ID {
		return nil, apperr.Validation("Amendment does not belong to this resolution")
	}
	if a.Status != models.AmendmentAccepted {
		return nil, apperr.InvalidState("Cannot apply a non-accepted amendment")
	}
	if !r.IsWorkingDraft {
		return nil, apperr.InvalidState("Amendment can only be applied to working draft")
	}
	if err := a.MarkApplied(s.Now()); err != nil {
		return nil, err
	}

	doc := r.Document()
	if err := doc.Apply(a.Edit()); err != nil {
		return nil, err
	}
	r.SetDocument(doc)

	// applied mark first; rolled back if the draft write fails
	if err := s.Store.Amendments.Replace(ctx, a); err != nil {
		return nil, storeErr(err, "Amendment")
	}
	if err := s.Store.Resolutions.Replace(ctx, r); err != nil {
		a.AppliedAt = nil
		if rbErr := s.Store.Amendments.Replace(ctx, a); rbErr != nil {
			s.Logger.Warn("failed to clear applied mark",
				zap.String("amendmentId", a.ID.Hex()),
				zap.Error(rbErr),
			)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Committee already has a working draft")
		}
		return nil, storeErr(err, "Resolution")
	}

	s.Logger.Info("amendment applied",
		zap.String("committeeId", r.CommitteeID.Hex()),
		zap.String("resolutionId", r.ID.Hex()),
		zap.String("amendmentId", a.ID.Hex()),
		zap.String("action", string(a.Action)),
	)
	s.Notify.Broadcast(r.CommitteeID, websocket.ResolutionUpdated(r))
	return r, nil
}
