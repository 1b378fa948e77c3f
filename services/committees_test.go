package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"munhub/internal/apperr"
	"munhub/internal/ratelimit"
	"munhub/models"
	"munhub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidationAndFilter(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	start := f.clock.Now()

	_, err := f.svc.Events.Create(f.ctx, admin, EventInput{Name: "x", Description: "y", StartDate: start, EndDate: start.Add(-time.Hour)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.Events.Create(f.ctx, f.presidium, EventInput{Name: "x", Description: "y", StartDate: start, EndDate: start})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Events.Create(f.ctx, admin, EventInput{
		Name: "Winter", Description: "Second", StartDate: start.Add(24 * time.Hour), EndDate: start.Add(48 * time.Hour),
		Status: models.EventActive,
	})
	require.NoError(t, err)

	all, err := f.svc.Events.List(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Winter", all[0].Name)

	active, err := f.svc.Events.List(f.ctx, models.EventActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Winter", active[0].Name)
}

func TestCommitteeTokensAndViews(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	seen := map[string]bool{}
	for _, c := range f.committee.Countries {
		assert.Len(t, c.SecretToken, 32)
		assert.False(t, seen[c.SecretToken])
		seen[c.SecretToken] = true
	}

	asDelegate, err := f.svc.Committees.Get(f.ctx, f.delegate("France"), f.committee.ID)
	require.NoError(t, err)
	for _, c := range asDelegate.Countries {
		assert.Empty(t, c.SecretToken)
	}
	asChair, err := f.svc.Committees.Get(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, asChair.Countries[0].SecretToken)

	qr, err := f.svc.Committees.QRData(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	require.Len(t, qr, len(countries))
	assert.Equal(t, f.committee.Name, qr[0].CommitteeName)
	_, err = f.svc.Committees.QRData(f.ctx, f.delegate("France"), f.committee.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	status, err := f.svc.Committees.Status(f.ctx, f.committee.ID)
	require.NoError(t, err)
	assert.Equal(t, len(countries), status.CountryCount)
}

func TestCountryManagement(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	_, err := f.svc.Committees.AddCountry(f.ctx, admin, f.committee.ID, CountryInput{Name: "France"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = f.svc.Committees.AddCountry(f.ctx, f.presidium, f.committee.ID, CountryInput{Name: "Chile"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	c, err := f.svc.Committees.AddCountry(f.ctx, admin, f.committee.ID, CountryInput{Name: "Chile"})
	require.NoError(t, err)
	assert.True(t, c.HasCountry("Chile"))

	before, _ := c.Country("Kenya")
	c, err = f.svc.Committees.RegenerateToken(f.ctx, admin, f.committee.ID, "Kenya")
	require.NoError(t, err)
	after, _ := c.Country("Kenya")
	assert.NotEqual(t, before.SecretToken, after.SecretToken)

	c, err = f.svc.Committees.UpdateCountry(f.ctx, admin, f.committee.ID, "Kenya", CountryInput{IsPermanentMember: true, HasVetoRight: true})
	require.NoError(t, err)
	kenya, _ := c.Country("Kenya")
	assert.True(t, kenya.HasVetoRight)
	assert.Equal(t, after.SecretToken, kenya.SecretToken)

	c, err = f.svc.Committees.RemoveCountry(f.ctx, admin, f.committee.ID, "Chile")
	require.NoError(t, err)
	assert.False(t, c.HasCountry("Chile"))
	_, err = f.svc.Committees.RemoveCountry(f.ctx, admin, f.committee.ID, "Chile")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPasswordLogin(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	u, err := f.svc.Committees.AssignPresidium(f.ctx, admin, f.committee.ID, "chair1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RolePresidium, u.Role)
	_, err = f.svc.Committees.AssignPresidium(f.ctx, admin, f.committee.ID, "chair1", "other")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.Auth.Login(f.ctx, "chair1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Auth.Login(f.ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := f.svc.Auth.Login(f.ctx, "chair1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, f.committee.ID, sess.Principal.CommitteeID)

	p, err := f.svc.Auth.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RolePresidium, p.Role)
	assert.Equal(t, "chair1", p.Username)
}

func TestDelegateLogin(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	kenya, _ := f.committee.Country("Kenya")

	sess, err := f.svc.Auth.DelegateLogin(f.ctx, " "+kenya.SecretToken+" ", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDelegate, sess.Principal.Role)
	assert.Equal(t, "Kenya", sess.Principal.CountryName)
	assert.Equal(t, f.committee.ID, sess.Principal.CommitteeID)

	p, err := f.svc.Auth.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "Kenya", p.CountryName)

	_, err = f.svc.Auth.DelegateLogin(f.ctx, "deadbeef", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestDelegateLoginRateLimit(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	kenya, _ := f.committee.Country("Kenya")

	limited := New(f.svc.Auth.Deps, AuthOptions{
		Tokens:  utils.NewTokenManager("test-secret", time.Hour),
		Limiter: ratelimit.NewMemoryLimiter(ratelimit.Config{Attempts: 2, Window: time.Minute}),
	})
	for i := 0; i < 2; i++ {
		_, err := limited.Auth.DelegateLogin(f.ctx, "wrong", "10.0.0.2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := limited.Auth.DelegateLogin(f.ctx, kenya.SecretToken, "10.0.0.2")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	_, err = limited.Auth.DelegateLogin(f.ctx, kenya.SecretToken, "10.0.0.3")
	assert.NoError(t, err)

	open := New(f.svc.Auth.Deps, AuthOptions{Tokens: utils.NewTokenManager("test-secret", time.Hour), Limiter: failingLimiter{}})
	_, err = open.Auth.DelegateLogin(f.ctx, kenya.SecretToken, "10.0.0.2")
	assert.NoError(t, err)
}

func TestCommitteeSummary(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	f.acceptedResolution("One", "France", "Germany")
	f.newResolution("Two", "Kenya", "Brazil")
	f.openSession("France")
	_, err := f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{CommitteeID: f.committee.ID, Target: models.TargetProcedure})
	require.NoError(t, err)

	sum, err := f.svc.Statistics.Summary(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalSessions)
	assert.Equal(t, 2, sum.TotalResolutions)
	assert.Equal(t, 1, sum.Resolutions[models.ResolutionAccepted])
	assert.Equal(t, 1, sum.Resolutions[models.ResolutionPendingCoAuthors])
	assert.Equal(t, 1, sum.Votings["open"])
	assert.Equal(t, len(countries), sum.CommitteeInfo.CountryCount)

	_, err = f.svc.Statistics.Summary(f.ctx, f.delegate("France"), f.committee.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Statistics.Delegate(f.ctx, f.delegate("France"), f.committee.ID, "Kenya")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	a, err := f.svc.Statistics.Record(f.ctx, f.presidium, RecordInput{
		CommitteeID: f.committee.ID,
		CountryName: "Brazil",
		Kind:        models.ActivitySpeech,
		Duration:    45,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, a.Duration)
	report, err := f.svc.Statistics.Delegate(f.ctx, f.delegate("Brazil"), f.committee.ID, "Brazil")
	require.NoError(t, err)
	assert.Equal(t, 45, report.Summary.SpeechDuration)
	assert.Equal(t, 1, report.Summary.TotalActivities)
}
