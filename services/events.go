package services

import (
	"context"
	"time"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	*base
}

type EventInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      models.EventStatus
}

func (in *EventInput) validate() error {
	in.Name = cleanText(in.Name)
	in.Description = cleanText(in.Description)
	if in.Name == "" || in.Description == "" {
		return apperr.Validation("Name and description are required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return apperr.Validation("Start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return apperr.Validation("End date cannot be before start date")
	}
	if in.Status == "" {
		in.Status = models.EventDraft
	}
	if !in.Status.Valid() {
		return apperr.Validation("Unknown event status %q", in.Status)
	}
	return nil
}

// List returns events by start date, newest first, optionally filtered by status.
func (s *EventService) List(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	events, err := s.Store.Events.List(ctx)
	if err != nil || status == "" {
		return events, err
	}
	out := events[:0]
	for _, e := range events {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *EventService) Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	e, err := s.Store.Events.Get(ctx, id)
	return e, storeErr(err, "Event")
}

func (s *EventService) Create(ctx context.Context, p models.Principal, in EventInput) (*models.Event, error) {
	if err := s.Authz.Require(p, authz.Event, authz.Create); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &models.Event{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      in.Status,
	}
	if err := s.Store.Events.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EventService) Update(ctx context.Context, p models.Principal, id primitive.ObjectID, in EventInput) (*models.Event, error) {
	if err := s.Authz.Require(p, authz.Event, authz.Update); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Name = in.Name
	e.Description = in.Description
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
	e.Status = in.Status
	if err := s.Store.Events.Replace(ctx, e); err != nil {
		return nil, storeErr(err, "Event")
	}
	return e, nil
}

func (s *EventService) Delete(ctx context.Context, p models.Principal, id primitive.ObjectID) error {
	if err := s.Authz.Require(p, authz.Event, authz.Delete); err != nil {
		return err
	}
	return storeErr(s.Store.Events.Delete(ctx, id), "Event")
}
