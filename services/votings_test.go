package services

import (
	"errors"
	"testing"

	"munhub/internal/apperr"
	"munhub/internal/document"
	"munhub/models"
	"munhub/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var council = []string{"United States", "China", "Kenya", "Brazil"}

func (f *fixture) newResolution(title string, authors ...string) *models.Resolution {
	f.t.Helper()
	r, err := f.svc.Resolutions.Create(f.ctx, f.delegate(authors[0]), CreateResolutionInput{
		CommitteeID: f.committee.ID,
		Title:       title,
		Authors:     authors,
		Preamble:    []document.PreambleClause{{Content: "Recalling the charter"}},
		Operative: []document.OperativeClause{
			{Content: "Calls upon member states"},
			{Content: "Urges cooperation"},
			{Content: "Decides to remain seized"},
		},
	})
	require.NoError(f.t, err)
	return r
}

func TestVotingNeedsActiveSession(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	_, err := f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{
		CommitteeID: f.committee.ID,
		Target:      models.TargetProcedure,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestOnlyOneOpenVoting(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	f.openSession("France")

	in := CreateVotingInput{CommitteeID: f.committee.ID, Target: models.TargetProcedure}
	first, err := f.svc.Votings.Create(f.ctx, f.presidium, in)
	require.NoError(t, err)
	assert.Equal(t, models.VotingSimple, first.Kind)
	assert.Equal(t, models.MajoritySimple, first.RequiredMajority)

	_, err = f.svc.Votings.Create(f.ctx, f.presidium, in)
	require.ErrorIs(t, err, apperr.ErrConflict)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, first.ID.Hex(), appErr.Details["activeVotingId"])

	_, _, err = f.svc.Votings.Finalize(f.ctx, f.presidium, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Votings.Create(f.ctx, f.presidium, in)
	assert.NoError(t, err)
}

func TestVoteRequiresPresence(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	f.openSession("France")
	v, err := f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{CommitteeID: f.committee.ID, Target: models.TargetProcedure})
	require.NoError(t, err)

	_, err = f.svc.Votings.Submit(f.ctx, f.delegate("Kenya"), v.ID, models.VoteYes)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.svc.Votings.Submit(f.ctx, f.delegate("France"), v.ID, "maybe")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Votings.Submit(f.ctx, f.presidium, v.ID, models.VoteYes)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRevoteReplacesAndFinalizeTallies(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	f.openSession("France", "Germany", "Kenya")
	v, err := f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{CommitteeID: f.committee.ID, Target: models.TargetProcedure})
	require.NoError(t, err)

	cast := func(country string, choice models.VoteChoice) {
		t.Helper()
		out, err := f.svc.Votings.Submit(f.ctx, f.delegate(country), v.ID, choice)
		require.NoError(t, err)
		assert.False(t, out.Vetoed)
	}
	cast("France", models.VoteNo)
	cast("Germany", models.VoteYes)
	cast("Kenya", models.VoteYes)
	cast("France", models.VoteYes)

	got, err := f.svc.Votings.Get(f.ctx, f.presidium, v.ID)
	require.NoError(t, err)
	assert.Len(t, got.Votes, 3)

	closed, stats, err := f.svc.Votings.Finalize(f.ctx, f.presidium, v.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.Result)
	assert.Equal(t, models.ResultAccepted, *closed.Result)
	assert.Equal(t, 3, stats.YesVotes)
	assert.Equal(t, 3, stats.TotalVotes)

	_, _, err = f.svc.Votings.Finalize(f.ctx, f.presidium, v.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = f.svc.Votings.Submit(f.ctx, f.delegate("Kenya"), v.ID, models.VoteNo)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	assert.Len(t, f.notes.ofType(websocket.TypeVoteSubmitted), 4)
	assert.Len(t, f.notes.ofType(websocket.TypeVotingResults), 1)

	report, err := f.svc.Statistics.Delegate(f.ctx, f.delegate("France"), f.committee.ID, "France")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Votes)
}

func TestPermanentMemberVetoClosesVoting(t *testing.T) {
	f := newFixture(t, models.CommitteeSecurityCouncil, council, "United States", "China")
	r := f.newResolution("Peacekeeping", "Kenya", "Brazil")
	f.openSession(council...)

	v, err := f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{
		CommitteeID: f.committee.ID,
		Target:      models.TargetResolution,
		TargetID:    &r.ID,
	})
	require.NoError(t, err)

	out, err := f.svc.Votings.Submit(f.ctx, f.delegate("Kenya"), v.ID, models.VoteYes)
	require.NoError(t, err)
	assert.False(t, out.Vetoed)

	// an abstaining veto holder does not veto
	out, err = f.svc.Votings.Submit(f.ctx, f.delegate("China"), v.ID, models.VoteAbstain)
	require.NoError(t, err)
	assert.False(t, out.Vetoed)

	out, err = f.svc.Votings.Submit(f.ctx, f.delegate("United States"), v.ID, models.VoteNo)
	require.NoError(t, err)
	assert.True(t, out.Vetoed)
	assert.Equal(t, "Resolution rejected due to permanent member veto", out.Message)
	require.NotNil(t, out.Voting.Result)
	assert.Equal(t, models.ResultRejected, *out.Voting.Result)
	assert.Equal(t, "United States", out.Voting.VetoedBy)

	_, err = f.svc.Votings.Submit(f.ctx, f.delegate("Brazil"), v.ID, models.VoteYes)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	results := f.notes.ofType(websocket.TypeVotingResults)
	require.Len(t, results, 1)
}

func TestNoVetoOutsideSecurityCouncil(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, council, "United States")
	r := f.newResolution("Oceans", "Kenya", "Brazil")
	f.openSession(council...)

	v, err := f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{
		CommitteeID: f.committee.ID,
		Target:      models.TargetResolution,
		TargetID:    &r.ID,
	})
	require.NoError(t, err)
	out, err := f.svc.Votings.Submit(f.ctx, f.delegate("United States"), v.ID, models.VoteNo)
	require.NoError(t, err)
	assert.False(t, out.Vetoed)
	assert.True(t, out.Voting.IsOpen())
}

func TestVotingTargetMustBelongToCommittee(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	other, err := f.svc.Committees.Create(f.ctx, admin, CommitteeInput{
		EventID:              f.committee.EventID,
		Name:                 "Other",
		MinResolutionAuthors: 2,
		Countries:            []CountryInput{{Name: "France"}, {Name: "Germany"}},
	})
	require.NoError(t, err)
	outsider := f.delegate("France")
	outsider.CommitteeID = other.ID
	foreign, err := f.svc.Resolutions.Create(f.ctx, outsider, CreateResolutionInput{
		CommitteeID: other.ID,
		Title:       "Elsewhere",
		Authors:     []string{"France"},
		Content:     "Recalling the charter,\n1. Decides to act.",
	})
	require.ErrorIs(t, err, apperr.ErrValidation) // too few authors
	assert.Nil(t, foreign)

	foreign, err = f.svc.Resolutions.Create(f.ctx, outsider, CreateResolutionInput{
		CommitteeID: other.ID,
		Title:       "Elsewhere",
		Authors:     []string{"France", "Germany"},
		Content:     "Recalling the charter,\n1. Decides to act.",
	})
	require.NoError(t, err)
	f.openSession("France")

	_, err = f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{
		CommitteeID: f.committee.ID,
		Target:      models.TargetResolution,
		TargetID:    &foreign.ID,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Votings.Create(f.ctx, f.presidium, CreateVotingInput{
		CommitteeID: f.committee.ID,
		Target:      models.TargetAmendment,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
