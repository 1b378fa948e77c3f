package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"munhub/internal/apperr"
	"munhub/internal/document"
	"munhub/models"
	"munhub/store"
	"munhub/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// acceptedResolution walks a resolution from submission to accepted.
func (f *fixture) acceptedResolution(title string, authors ...string) *models.Resolution {
	f.t.Helper()
	r := f.newResolution(title, authors...)
	var err error
	for _, a := range authors[1:] {
		r, err = f.svc.Resolutions.ConfirmCoAuthor(f.ctx, f.delegate(a), r.ID)
		require.NoError(f.t, err)
	}
	require.Equal(f.t, models.ResolutionDraft, r.Status)
	r, err = f.svc.Resolutions.Review(f.ctx, f.presidium, r.ID, models.ResolutionAccepted, "")
	require.NoError(f.t, err)
	return r
}

func TestCoAuthorConfirmation(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	r := f.newResolution("Climate", "France", "Germany", "Kenya")
	assert.Equal(t, models.ResolutionPendingCoAuthors, r.Status)
	assert.ElementsMatch(t, []string{"Germany", "Kenya"}, r.PendingCoAuthors)
	assert.Contains(t, r.Content, "1. Calls upon member states")

	invites := f.notes.ofType(websocket.TypeResolutionSubmitted)
	require.Len(t, invites, 2)
	for _, inv := range invites {
		assert.NotEmpty(t, inv.country)
	}

	staffView, err := f.svc.Resolutions.List(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	assert.Empty(t, staffView)
	delegateView, err := f.svc.Resolutions.List(f.ctx, f.delegate("Brazil"), f.committee.ID)
	require.NoError(t, err)
	assert.Len(t, delegateView, 1)

	_, err = f.svc.Resolutions.ConfirmCoAuthor(f.ctx, f.delegate("Brazil"), r.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	r, err = f.svc.Resolutions.ConfirmCoAuthor(f.ctx, f.delegate("Germany"), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionPendingCoAuthors, r.Status)

	f.notes.reset()
	r, err = f.svc.Resolutions.ConfirmCoAuthor(f.ctx, f.delegate("Kenya"), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionDraft, r.Status)
	assert.Empty(t, r.PendingCoAuthors)
	submitted := f.notes.ofType(websocket.TypeResolutionSubmitted)
	require.Len(t, submitted, 1)
	assert.Empty(t, submitted[0].country)

	// confirming twice changes nothing
	again, err := f.svc.Resolutions.ConfirmCoAuthor(f.ctx, f.delegate("Kenya"), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionDraft, again.Status)

	mine, err := f.svc.Resolutions.Mine(f.ctx, f.delegate("Kenya"), f.committee.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCreatorMustBeAuthor(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	_, err := f.svc.Resolutions.Create(f.ctx, f.delegate("France"), CreateResolutionInput{
		CommitteeID: f.committee.ID,
		Title:       "Trade",
		Authors:     []string{"Germany", "Kenya"},
		Content:     "1. Decides.",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Resolutions.Create(f.ctx, f.delegate("France"), CreateResolutionInput{
		CommitteeID: f.committee.ID,
		Title:       "Trade",
		Authors:     []string{"France", "Atlantis"},
		Content:     "1. Decides.",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestFlatTextIsParsedAndSanitized(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	r, err := f.svc.Resolutions.Create(f.ctx, f.delegate("France"), CreateResolutionInput{
		CommitteeID: f.committee.ID,
		Title:       "<b>Health</b>",
		Authors:     []string{"France", "Germany"},
		Content:     "Noting with concern the spread of disease,\n\n1. Calls for <script>x</script>vaccines;\n\n2. Requests a report.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Health", r.Title)
	require.Len(t, r.PreambleClauses, 1)
	require.Len(t, r.OperativeClauses, 2)
	assert.NotContains(t, r.Content, "<script>")
	assert.Equal(t, 1, r.OperativeClauses[0].Number)
	assert.Equal(t, 2, r.OperativeClauses[1].Number)
}

func TestDeclineThenReviewNeedsEnoughAuthors(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	r := f.newResolution("Water", "France", "Kenya")
	r, err := f.svc.Resolutions.DeclineCoAuthor(f.ctx, f.delegate("Kenya"), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionDraft, r.Status)
	assert.Equal(t, []string{"France"}, r.Authors)

	_, err = f.svc.Resolutions.Review(f.ctx, f.presidium, r.ID, models.ResolutionAccepted, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 2, appErr.Details["minRequired"])
	assert.Equal(t, 1, appErr.Details["currentCount"])

	r, err = f.svc.Resolutions.Review(f.ctx, f.presidium, r.ID, models.ResolutionRejected, "Too short")
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionRejected, r.Status)
	assert.Equal(t, "Too short", r.ReviewComments)
	require.NotNil(t, r.ReviewTime)

	_, err = f.svc.Resolutions.Review(f.ctx, f.presidium, r.ID, models.ResolutionAccepted, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestSingleWorkingDraft(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	a := f.acceptedResolution("First", "France", "Germany")
	b := f.acceptedResolution("Second", "Kenya", "Brazil")

	_, err := f.svc.Resolutions.WorkingDraft(f.ctx, f.presidium, f.committee.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Resolutions.SetWorkingDraft(f.ctx, f.presidium, a.ID)
	require.NoError(t, err)
	b, err = f.svc.Resolutions.SetWorkingDraft(f.ctx, f.presidium, b.ID)
	require.NoError(t, err)
	assert.True(t, b.IsWorkingDraft)
	assert.Equal(t, models.ResolutionWorking, b.Status)

	all, err := f.svc.Resolutions.List(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	var flagged []string
	for _, r := range all {
		if r.IsWorkingDraft {
			flagged = append(flagged, r.Title)
		}
	}
	assert.Equal(t, []string{"Second"}, flagged)

	wd, err := f.svc.Resolutions.WorkingDraft(f.ctx, f.delegate("France"), f.committee.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, wd.ID)

	draft := f.newResolution("Third", "France", "Germany")
	_, err = f.svc.Resolutions.SetWorkingDraft(f.ctx, f.presidium, draft.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = f.svc.Resolutions.SetWorkingDraft(f.ctx, f.delegate("France"), b.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestConcurrentWorkingDraftSelectionKeepsOne(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	candidates := []*models.Resolution{
		f.acceptedResolution("First", "France", "Germany"),
		f.acceptedResolution("Second", "Kenya", "Brazil"),
		f.acceptedResolution("Third", "Germany", "Kenya"),
		f.acceptedResolution("Fourth", "Brazil", "France"),
	}

	const rounds = 8
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		for _, r := range candidates {
			wg.Add(1)
			go func(id primitive.ObjectID) {
				defer wg.Done()
				_, err := f.svc.Resolutions.SetWorkingDraft(f.ctx, f.presidium, id)
				if err != nil && !errors.Is(err, apperr.ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
			}(r.ID)
		}
	}
	wg.Wait()

	all, err := f.svc.Resolutions.List(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	var flagged []primitive.ObjectID
	for _, r := range all {
		if r.IsWorkingDraft {
			flagged = append(flagged, r.ID)
		}
	}
	require.Len(t, flagged, 1)

	wd, err := f.svc.Resolutions.WorkingDraft(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	assert.Equal(t, flagged[0], wd.ID)
}

// failingResolutions makes every Replace fail with err.
type failingResolutions struct {
	store.Resolutions
	err error
}

func (r failingResolutions) Replace(context.Context, *models.Resolution) error {
	return r.err
}

func TestApplyRollsBackAppliedMarkWhenDraftWriteFails(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	r := f.acceptedResolution("Oceans", "France", "Germany")
	r, err := f.svc.Resolutions.SetWorkingDraft(f.ctx, f.presidium, r.ID)
	require.NoError(t, err)

	del, err := f.svc.Amendments.Create(f.ctx, f.delegate("Kenya"), CreateAmendmentInput{
		ResolutionID: r.ID,
		Part:         document.PartOperative,
		Action:       document.ActionDelete,
		PointNumber:  intp(1),
	})
	require.NoError(t, err)
	_, err = f.svc.Amendments.Review(f.ctx, f.presidium, del.ID, models.AmendmentAccepted)
	require.NoError(t, err)

	st := f.svc.Amendments.Store
	orig := st.Resolutions
	f.notes.reset()

	st.Resolutions = failingResolutions{Resolutions: orig, err: store.ErrDuplicate}
	_, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Committee already has a working draft", appErr.Message)

	st.Resolutions = failingResolutions{Resolutions: orig, err: errors.New("write timeout")}
	_, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "write timeout")
	st.Resolutions = orig

	stored, err := st.Amendments.Get(f.ctx, del.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AppliedAt)
	assert.Empty(t, f.notes.types())

	unchanged, err := st.Resolutions.Get(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, unchanged.OperativeClauses, 3)

	r, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	require.NoError(t, err)
	assert.Len(t, r.OperativeClauses, 2)
	_, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestAmendmentLifecycle(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	r := f.acceptedResolution("Oceans", "France", "Germany")

	_, err := f.svc.Amendments.Create(f.ctx, f.delegate("Kenya"), CreateAmendmentInput{
		ResolutionID: r.ID,
		Part:         document.PartOperative,
		Action:       document.ActionDelete,
		PointNumber:  intp(1),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	r, err = f.svc.Resolutions.SetWorkingDraft(f.ctx, f.presidium, r.ID)
	require.NoError(t, err)

	_, err = f.svc.Amendments.Create(f.ctx, f.delegate("Kenya"), CreateAmendmentInput{
		ResolutionID: r.ID,
		Part:         document.PartOperative,
		Action:       document.ActionDelete,
		PointNumber:  intp(9),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Amendments.Create(f.ctx, f.delegate("Kenya"), CreateAmendmentInput{
		ResolutionID: r.ID,
		Part:         document.PartOperative,
		Action:       document.ActionModify,
		PointNumber:  intp(1),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	del, err := f.svc.Amendments.Create(f.ctx, f.delegate("Kenya"), CreateAmendmentInput{
		ResolutionID: r.ID,
		Authors:      []string{"Brazil"},
		Part:         document.PartOperative,
		Action:       document.ActionDelete,
		PointNumber:  intp(1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Brazil", "Kenya"}, del.Authors)
	assert.Equal(t, models.AmendmentPending, del.Status)

	_, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	del, err = f.svc.Amendments.Review(f.ctx, f.presidium, del.ID, models.AmendmentAccepted)
	require.NoError(t, err)
	_, err = f.svc.Amendments.Review(f.ctx, f.presidium, del.ID, models.AmendmentRejected)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	f.notes.reset()
	r, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	require.NoError(t, err)
	require.Len(t, r.OperativeClauses, 2)
	assert.Equal(t, "Urges cooperation", r.OperativeClauses[0].Content)
	assert.Equal(t, 1, r.OperativeClauses[0].Number)
	assert.Equal(t, 2, r.OperativeClauses[1].Number)
	assert.NotContains(t, r.Content, "Calls upon member states")
	assert.Equal(t, []string{websocket.TypeResolutionUpdated}, f.notes.types())

	_, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, del.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	add, err := f.svc.Amendments.Create(f.ctx, f.delegate("France"), CreateAmendmentInput{
		ResolutionID:  r.ID,
		Part:          document.PartOperative,
		Action:        document.ActionAdd,
		NewPointAfter: intp(0),
		Content:       "Welcomes the initiative",
	})
	require.NoError(t, err)
	_, err = f.svc.Amendments.Review(f.ctx, f.presidium, add.ID, models.AmendmentAccepted)
	require.NoError(t, err)
	r, err = f.svc.Amendments.Apply(f.ctx, f.presidium, r.ID, add.ID)
	require.NoError(t, err)
	require.Len(t, r.OperativeClauses, 3)
	assert.Equal(t, "Welcomes the initiative", r.OperativeClauses[0].Content)
	for i, c := range r.OperativeClauses {
		assert.Equal(t, i+1, c.Number)
	}

	list, err := f.svc.Amendments.ListByResolution(f.ctx, f.delegate("Brazil"), r.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	report, err := f.svc.Statistics.Delegate(f.ctx, f.presidium, f.committee.ID, "Kenya")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Amendments)
}
