package models

import (
	"testing"

	"munhub/internal/apperr"
	"munhub/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleDocument() document.Document {
	return document.Document{
		Preamble: []document.PreambleClause{{Content: "Recalling its earlier decisions", Order: 1}},
		Operative: []document.OperativeClause{
			{Content: "Calls upon member states", Number: 1},
			{Content: "Decides to remain seized of the matter", Number: 2},
		},
	}
}

func newTestResolution(t *testing.T, authors ...string) *Resolution {
	t.Helper()
	r, err := NewResolution(primitive.NewObjectID(), "Water security", authors[0], authors, sampleDocument(), 3, testNow)
	require.NoError(t, err)
	return r
}

func TestCoAuthorConfirmationPromotesToDraft(t *testing.T) {
	r := newTestResolution(t, "A", "B", "C")
	assert.Equal(t, ResolutionPendingCoAuthors, r.Status)
	assert.Equal(t, []string{"B", "C"}, r.PendingCoAuthors)

	require.NoError(t, r.ConfirmCoAuthor("B"))
	assert.Equal(t, ResolutionPendingCoAuthors, r.Status)

	require.NoError(t, r.ConfirmCoAuthor("B"), "confirming twice is a no-op")
	require.NoError(t, r.ConfirmCoAuthor("C"))
	assert.Equal(t, ResolutionDraft, r.Status)
	assert.Empty(t, r.PendingCoAuthors)
	assert.Equal(t, []string{"A", "B", "C"}, r.Authors)
}

func TestNewResolutionValidatesAuthors(t *testing.T) {
	_, err := NewResolution(primitive.NewObjectID(), "T", "A", []string{"A", "B"}, sampleDocument(), 3, testNow)
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 3, appErr.Details["minRequired"])

	_, err = NewResolution(primitive.NewObjectID(), "T", "Z", []string{"A", "B", "C"}, sampleDocument(), 3, testNow)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	r, err := NewResolution(primitive.NewObjectID(), "T", "A", []string{"A"}, sampleDocument(), 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, ResolutionDraft, r.Status)
}

func TestNewResolutionRendersContent(t *testing.T) {
	r := newTestResolution(t, "A", "B", "C")
	assert.Equal(t,
		"Recalling its earlier decisions,\n\n1. Calls upon member states\n\n2. Decides to remain seized of the matter\n\n",
		r.Content)
}

func TestReviewRechecksAuthorCount(t *testing.T) {
	r := newTestResolution(t, "A", "B", "C")
	require.NoError(t, r.ConfirmCoAuthor("B"))
	require.NoError(t, r.DeclineCoAuthor("C"))
	assert.Equal(t, ResolutionDraft, r.Status)
	assert.Equal(t, []string{"A", "B"}, r.Authors)

	err := r.Review(ResolutionAccepted, "", 3, testNow)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, ResolutionDraft, r.Status)

	require.NoError(t, r.Review(ResolutionRejected, "Too short", 3, testNow))
	assert.Equal(t, ResolutionRejected, r.Status)
	assert.Equal(t, "Too short", r.ReviewComments)
	require.NotNil(t, r.ReviewTime)
}

func TestWorkingDraftRequiresAcceptance(t *testing.T) {
	r := newTestResolution(t, "A", "B", "C")
	err := r.MarkWorkingDraft()
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	require.NoError(t, r.ConfirmCoAuthor("B"))
	require.NoError(t, r.ConfirmCoAuthor("C"))
	require.NoError(t, r.Review(ResolutionAccepted, "", 3, testNow))
	require.NoError(t, r.MarkWorkingDraft())
	assert.True(t, r.IsWorkingDraft)
	assert.Equal(t, ResolutionWorking, r.Status)

	r.ClearWorkingDraft()
	assert.False(t, r.IsWorkingDraft)
	assert.Equal(t, ResolutionWorking, r.Status)
}

func TestResolutionVisibility(t *testing.T) {
	r := newTestResolution(t, "A", "B", "C")
	assert.True(t, r.VisibleTo(Principal{Role: RoleDelegate}))
	assert.False(t, r.VisibleTo(Principal{Role: RolePresidium}))
	assert.False(t, r.VisibleTo(Principal{Role: RoleAdmin}))
}
