package models

import (
	"errors"
	"testing"
	"time"

	"munhub/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestNewSessionStartsFormalWithoutQuorum(t *testing.T) {
	s := NewSession(primitive.NewObjectID(), 3, testNow)

	assert.Equal(t, 3, s.Number)
	assert.Equal(t, SessionActive, s.Status)
	assert.Equal(t, ModeFormal, s.Mode)
	assert.False(t, s.Quorum)
	assert.Empty(t, s.PresentCountries)
}

func TestSessionRollCallUsesQuorumPolicy(t *testing.T) {
	s := NewSession(primitive.NewObjectID(), 1, testNow)

	require.NoError(t, s.UpdateRollCall([]string{"France", "France", "", "Chile"}, 10, AnyCountryPresent))
	assert.Equal(t, []string{"France", "Chile"}, s.PresentCountries)
	assert.True(t, s.Quorum, "one present country is enough under the current policy")

	require.NoError(t, s.UpdateRollCall([]string{"France", "Chile"}, 10, MajorityPresent))
	assert.False(t, s.Quorum)

	require.NoError(t, s.UpdateRollCall(nil, 10, AnyCountryPresent))
	assert.False(t, s.Quorum)
}

func TestCompletedSessionRejectsChanges(t *testing.T) {
	s := NewSession(primitive.NewObjectID(), 1, testNow)
	require.NoError(t, s.Complete(testNow.Add(time.Hour)))
	require.NotNil(t, s.EndTime)

	err := s.SetMode(ModeInformalModerated)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	err = s.UpdateRollCall([]string{"Chile"}, 3, AnyCountryPresent)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	err = s.Complete(testNow)
	require.Error(t, err)
	assert.Equal(t, "Session is already completed", err.Error())
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	s := NewSession(primitive.NewObjectID(), 1, testNow)
	err := s.SetMode("chaotic")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, ModeFormal, s.Mode)
}
