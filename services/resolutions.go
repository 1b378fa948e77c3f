package services

import (
	"context"
	"errors"
	"strings"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/internal/document"
	"munhub/models"
	"munhub/store"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ResolutionService struct {
	*base
}

// CreateResolutionInput carries either structured clauses or flat text. Flat
// text is parsed into clauses once, at submission.
type CreateResolutionInput struct {
	CommitteeID primitive.ObjectID
	Title       string
	Authors     []string
	Preamble    []document.PreambleClause
	Operative   []document.OperativeClause
	Content     string
}

func (in CreateResolutionInput) document() (document.Document, error) {
	doc := document.Document{Preamble: in.Preamble, Operative: in.Operative}
	if len(doc.Preamble) == 0 && len(doc.Operative) == 0 {
		if strings.TrimSpace(in.Content) == "" {
			return document.Document{}, apperr.Validation("Resolution content is required")
		}
		doc = document.Parse(in.Content)
	}
	return cleanDocument(doc), nil
}

// Create submits a resolution on behalf of the caller's country.
func (s *ResolutionService) Create(ctx context.Context, p models.Principal, in CreateResolutionInput) (*models.Resolution, error) {
	c, err := s.authorize(ctx, p, in.CommitteeID, authz.Resolution, authz.Create)
	if err != nil {
		return nil, err
	}
	for _, name := range in.Authors {
		if !c.HasCountry(name) {
			return nil, apperr.Validation("Country %q is not part of this committee", name)
		}
	}
	doc, err := in.document()
	if err != nil {
		return nil, err
	}
	r, err := models.NewResolution(c.ID, cleanText(in.Title), p.CountryName, in.Authors, doc, c.MinResolutionAuthors, s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Store.Resolutions.Insert(ctx, r); err != nil {
		return nil, err
	}

	var sessionID primitive.ObjectID
	if active, err := s.Store.Sessions.Active(ctx, c.ID); err == nil {
		sessionID = active.ID
	}
	s.record(ctx, c.ID, sessionID, p.CountryName, models.ActivityResolution, 0, map[string]any{
		"resolutionId": r.ID.Hex(),
		"title":        r.Title,
	})
	s.announce(r)
	return r, nil
}

// announce tells staff about drafts and asks pending co-authors to confirm.
func (s *ResolutionService) announce(r *models.Resolution) {
	if r.Status == models.ResolutionDraft {
		s.Notify.Broadcast(r.CommitteeID, websocket.ResolutionSubmitted(r))
		return
	}
	for _, country := range r.PendingCoAuthors {
		s.Notify.SendToCountry(r.CommitteeID, country, websocket.ResolutionSubmitted(r))
	}
}

func (s *ResolutionService) resolution(ctx context.Context, id primitive.ObjectID) (*models.Resolution, error) {
	r, err := s.Store.Resolutions.Get(ctx, id)
	return r, storeErr(err, "Resolution")
}

func (s *ResolutionService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Resolution, error) {
	r, err := s.resolution(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(r.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return r, nil
}

// List returns the committee's resolutions as the caller may see them.
func (s *ResolutionService) List(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.Resolution, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	all, err := s.Store.Resolutions.ListByCommittee(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Resolution, 0, len(all))
	for _, r := range all {
		if r.VisibleTo(p) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// Mine returns the resolutions the calling delegate's country authors.
func (s *ResolutionService) Mine(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.Resolution, error) {
	if p.Role != models.RoleDelegate {
		return nil, apperr.Forbidden("Only delegates can access their resolutions")
	}
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	return s.Store.Resolutions.ListByAuthor(ctx, c.ID, p.CountryName)
}

// WorkingDraft returns the committee's current working draft.
func (s *ResolutionService) WorkingDraft(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) (*models.Resolution, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	r, err := s.Store.Resolutions.WorkingDraft(ctx, c.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("No working draft selected")
	}
	return r, err
}

// coAuthor runs fn on a resolution waiting for the caller's confirmation.
func (s *ResolutionService) coAuthor(ctx context.Context, p models.Principal, id primitive.ObjectID, fn func(*models.Resolution) error) (*models.Resolution, bool, error) {
	r, err := s.resolution(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.authorize(ctx, p, r.CommitteeID, authz.Resolution, authz.CoAuthor); err != nil {
		return nil, false, err
	}

	unlock := s.lock("resolution", r.ID)
	defer unlock()

	if r, err = s.resolution(ctx, id); err != nil {
		return nil, false, err
	}
	if r.Status != models.ResolutionPendingCoAuthors && r.Status != models.ResolutionDraft {
		return nil, false, apperr.InvalidState("Resolution is not waiting for co-authors")
	}
	if !r.HasAuthor(p.CountryName) {
		return nil, false, apperr.Validation("Your country is not a co-author of this resolution")
	}
	if !r.IsPendingCoAuthor(p.CountryName) {
		return r, false, nil
	}

	before := r.Status
	if err := fn(r); err != nil {
		return nil, false, err
	}
	if err := s.Store.Resolutions.Replace(ctx, r); err != nil {
		return nil, false, storeErr(err, "Resolution")
	}
	return r, before != r.Status, nil
}

// ConfirmCoAuthor confirms the caller's country as co-author. Confirming
// again is a no-op.
func (s *ResolutionService) ConfirmCoAuthor(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Resolution, error) {
	r, promoted, err := s.coAuthor(ctx, p, id, func(r *models.Resolution) error {
		return r.ConfirmCoAuthor(p.CountryName)
	})
	if err != nil {
		return nil, err
	}
	if promoted {
		s.announce(r)
	}
	return r, nil
}

// DeclineCoAuthor withdraws the caller's country from the author list.
func (s *ResolutionService) DeclineCoAuthor(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Resolution, error) {
	r, promoted, err := s.coAuthor(ctx, p, id, func(r *models.Resolution) error {
		return r.DeclineCoAuthor(p.CountryName)
	})
	if err != nil {
		return nil, err
	}
	if promoted {
		s.announce(r)
	}
	return r, nil
}

// Review accepts or rejects a draft.
func (s *ResolutionService) Review(ctx context.Context, p models.Principal, id primitive.ObjectID, outcome models.ResolutionStatus, comments string) (*models.Resolution, error) {
	r, err := s.resolution(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, r.CommitteeID, authz.Resolution, authz.Review)
	if err != nil {
		return nil, err
	}

	unlock := s.lock("resolution", r.ID)
	defer unlock()

	if r, err = s.resolution(ctx, id); err != nil {
		return nil, err
	}
	if err := r.Review(outcome, cleanText(comments), c.MinResolutionAuthors, s.Now()); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindValidation && outcome == models.ResolutionAccepted {
			return nil, appErr.With("currentCount", len(r.Authors))
		}
		return nil, err
	}
	if err := s.Store.Resolutions.Replace(ctx, r); err != nil {
		return nil, storeErr(err, "Resolution")
	}

	s.Logger.Info("resolution reviewed",
		zap.String("committeeId", r.CommitteeID.Hex()),
		zap.String("resolutionId", r.ID.Hex()),
		zap.String("status", string(r.Status)),
	)
	s.Notify.Broadcast(r.CommitteeID, websocket.ResolutionReviewed(r))
	return r, nil
}

// SetWorkingDraft makes an accepted resolution the committee's only working
// draft.
func (s *ResolutionService) SetWorkingDraft(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Resolution, error) {
	r, err := s.resolution(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.authorize(ctx, p, r.CommitteeID, authz.Resolution, authz.Select)
	if err != nil {
		return nil, err
	}

	unlock := s.lock("workingdraft", c.ID)
	defer unlock()

	if r, err = s.resolution(ctx, id); err != nil {
		return nil, err
	}
	if err := r.MarkWorkingDraft(); err != nil {
		return nil, err
	}
	if err := s.Store.Resolutions.ClearWorkingDraft(ctx, c.ID); err != nil {
		return nil, err
	}
	if err := s.Store.Resolutions.Replace(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Committee already has a working draft")
		}
		return nil, storeErr(err, "Resolution")
	}

	s.Logger.Info("working draft selected",
		zap.String("committeeId", c.ID.Hex()),
		zap.String("resolutionId", r.ID.Hex()),
	)
	s.Notify.Broadcast(c.ID, websocket.WorkingDraftSelected(r))
	return r, nil
}
