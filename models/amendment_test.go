package models

import (
	"testing"

	"munhub/internal/apperr"
	"munhub/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestAmendmentValidate(t *testing.T) {
	cases := []struct {
		name string
		a    Amendment
		ok   bool
	}{
		{"delete with point", Amendment{Part: document.PartOperative, Action: document.ActionDelete, PointNumber: intPtr(2)}, true},
		{"delete without point", Amendment{Part: document.PartOperative, Action: document.ActionDelete}, false},
		{"modify without content", Amendment{Part: document.PartPreamble, Action: document.ActionModify, PointNumber: intPtr(1)}, false},
		{"add at top", Amendment{Part: document.PartPreamble, Action: document.ActionAdd, NewPointAfter: intPtr(0), Content: "Noting"}, true},
		{"add without position", Amendment{Part: document.PartPreamble, Action: document.ActionAdd, Content: "Noting"}, false},
		{"add without content", Amendment{Part: document.PartOperative, Action: document.ActionAdd, NewPointAfter: intPtr(1)}, false},
		{"unknown part", Amendment{Part: "annex", Action: document.ActionDelete, PointNumber: intPtr(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.a.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestAmendmentReviewAndApply(t *testing.T) {
	a := &Amendment{Status: AmendmentPending}

	err := a.MarkApplied(testNow)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	require.NoError(t, a.Review(AmendmentAccepted))
	require.NoError(t, a.MarkApplied(testNow))

	err = a.MarkApplied(testNow)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	err = a.Review(AmendmentRejected)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}
