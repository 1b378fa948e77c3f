package services

import (
	"context"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// recentActivityLimit caps the activity list of a delegate report.
const recentActivityLimit = 10

type StatisticsService struct {
	*base
}

// CountryStats returns per-country totals, most active first.
func (s *StatisticsService) CountryStats(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.CountryStats, error) {
	c, err := s.authorize(ctx, p, committeeID, authz.Statistics, authz.Read)
	if err != nil {
		return nil, err
	}
	return s.Store.Activities.CountryStats(ctx, c.ID)
}

func (s *StatisticsService) Breakdown(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.ActivityCount, error) {
	c, err := s.authorize(ctx, p, committeeID, authz.Statistics, authz.Read)
	if err != nil {
		return nil, err
	}
	return s.Store.Activities.Breakdown(ctx, c.ID)
}

type DelegateReport struct {
	CountryName      string              `json:"countryName"`
	Summary          models.CountryStats `json:"summary"`
	RecentActivities []models.Activity   `json:"recentActivities"`
}

// Delegate summarizes one country. Delegates may only read their own report.
func (s *StatisticsService) Delegate(ctx context.Context, p models.Principal, committeeID primitive.ObjectID, country string) (*DelegateReport, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	if p.Role == models.RoleDelegate && p.CountryName != country {
		return nil, apperr.Forbidden("You can only view your own statistics")
	}
	if !c.HasCountry(country) {
		return nil, apperr.NotFound("Country not found in this committee")
	}

	activities, err := s.Store.Activities.ListByCountry(ctx, c.ID, country)
	if err != nil {
		return nil, err
	}
	report := &DelegateReport{
		CountryName: country,
		Summary:     models.CountryStats{Country: country},
	}
	for _, a := range activities {
		report.Summary.Add(a)
	}
	if len(activities) > recentActivityLimit {
		activities = activities[:recentActivityLimit]
	}
	report.RecentActivities = activities
	return report, nil
}

type RecordInput struct {
	CommitteeID primitive.ObjectID
	SessionID   primitive.ObjectID
	CountryName string
	Kind        models.ActivityKind
	Duration    int
	Details     map[string]any
}

// Record adds an activity by hand, for speeches held outside the speaker list.
func (s *StatisticsService) Record(ctx context.Context, p models.Principal, in RecordInput) (*models.Activity, error) {
	c, err := s.authorize(ctx, p, in.CommitteeID, authz.Statistics, authz.Manage)
	if err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, apperr.Validation("Unknown activity type %q", in.Kind)
	}
	if !c.HasCountry(in.CountryName) {
		return nil, apperr.Validation("Country %q is not part of this committee", in.CountryName)
	}
	if in.Duration < 0 {
		return nil, apperr.Validation("Duration cannot be negative")
	}
	a := &models.Activity{
		CommitteeID: c.ID,
		SessionID:   in.SessionID,
		CountryName: in.CountryName,
		Kind:        in.Kind,
		Duration:    in.Duration,
		Timestamp:   s.Now(),
		Details:     in.Details,
	}
	if err := s.Store.Activities.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

type CommitteeInfo struct {
	ID           primitive.ObjectID     `json:"id"`
	Name         string                 `json:"name"`
	Type         models.CommitteeType   `json:"type"`
	Status       models.CommitteeStatus `json:"status"`
	CountryCount int                    `json:"countryCount"`
}

type CommitteeSummary struct {
	CommitteeInfo    CommitteeInfo                   `json:"committeeInfo"`
	TotalSessions    int                             `json:"totalSessions"`
	TotalResolutions int                             `json:"totalResolutions"`
	TotalAmendments  int                             `json:"totalAmendments"`
	TotalVotings     int                             `json:"totalVotings"`
	Resolutions      map[models.ResolutionStatus]int `json:"resolutions"`
	Amendments       map[models.AmendmentStatus]int  `json:"amendments"`
	Votings          map[string]int                  `json:"votings"`
	Activities       []models.ActivityCount          `json:"activities"`
}

// Summary counts the committee's documents and votes. The queries run
// concurrently and the first failure cancels the rest.
func (s *StatisticsService) Summary(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) (*CommitteeSummary, error) {
	c, err := s.authorize(ctx, p, committeeID, authz.Statistics, authz.Read)
	if err != nil {
		return nil, err
	}
	sum := &CommitteeSummary{
		CommitteeInfo: CommitteeInfo{
			ID:           c.ID,
			Name:         c.Name,
			Type:         c.Type,
			Status:       c.Status,
			CountryCount: len(c.Countries),
		},
		Resolutions: map[models.ResolutionStatus]int{},
		Amendments:  map[models.AmendmentStatus]int{},
		Votings:     map[string]int{},
	}

	// each goroutine owns its own fields of sum
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Store.Sessions.CountByCommittee(gctx, c.ID)
		sum.TotalSessions = n
		return err
	})
	g.Go(func() error {
		rs, err := s.Store.Resolutions.ListByCommittee(gctx, c.ID)
		for _, r := range rs {
			sum.Resolutions[r.Status]++
		}
		sum.TotalResolutions = len(rs)
		return err
	})
	g.Go(func() error {
		as, err := s.Store.Amendments.ListByCommittee(gctx, c.ID)
		for _, a := range as {
			sum.Amendments[a.Status]++
		}
		sum.TotalAmendments = len(as)
		return err
	})
	g.Go(func() error {
		vs, err := s.Store.Votings.ListByCommittee(gctx, c.ID)
		for _, v := range vs {
			if v.IsOpen() {
				sum.Votings["open"]++
			} else {
				sum.Votings[string(*v.Result)]++
			}
		}
		sum.TotalVotings = len(vs)
		return err
	})
	g.Go(func() error {
		counts, err := s.Store.Activities.Breakdown(gctx, c.ID)
		sum.Activities = counts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sum, nil
}
