package models

import (
	"testing"

	"munhub/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMotionPriorities(t *testing.T) {
	cases := map[MotionType]int{
		MotionAdjournment:                   100,
		MotionClosureOfDebate:               80,
		MotionModeratedCaucus:               40,
		MotionIntroductionOfAmendment:       10,
		MotionOther:                         0,
		MotionIntroductionOfDraftResolution: 20,
	}
	for typ, want := range cases {
		assert.Equal(t, want, typ.Priority(), typ)
	}
	assert.False(t, MotionType("filibuster").Valid())
}

func TestCaucusModes(t *testing.T) {
	mode, ok := MotionModeratedCaucus.CaucusMode()
	require.True(t, ok)
	assert.Equal(t, ModeInformalModerated, mode)

	mode, ok = MotionUnmoderatedCaucus.CaucusMode()
	require.True(t, ok)
	assert.Equal(t, ModeInformalUnmoderated, mode)

	mode, ok = MotionConsultationOfTheWhole.CaucusMode()
	require.True(t, ok)
	assert.Equal(t, ModeInformalConsultation, mode)

	_, ok = MotionSuspension.CaucusMode()
	assert.False(t, ok)
}

func TestSecondMotion(t *testing.T) {
	m := &Motion{Type: MotionSuspension, ProposedBy: "Kenya", Status: MotionPending}

	err := m.Second("Kenya")
	require.Error(t, err)
	assert.Equal(t, "You cannot second your own motion", err.Error())

	require.NoError(t, m.Second("Peru"))
	assert.Equal(t, "Peru", m.SecondedBy)

	err = m.Second("Japan")
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, "Peru", m.SecondedBy)
}

func TestMotionStatusIsTerminalOnceResolved(t *testing.T) {
	m := &Motion{Status: MotionPending}
	require.NoError(t, m.SetStatus(MotionAccepted, &VoteCounts{Yes: 5, No: 1}))
	assert.Equal(t, 5, m.VotingResults.Yes)

	err := m.SetStatus(MotionPending, nil)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	err = m.SetStatus(MotionRejected, nil)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, MotionAccepted, m.Status)
}
