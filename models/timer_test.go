package models

import (
	"testing"
	"time"

	"munhub/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTimerPauseResume(t *testing.T) {
	tm, err := NewTimer(primitive.NewObjectID(), primitive.NewObjectID(), TimerSpeaker, 60, "")
	require.NoError(t, err)
	assert.Equal(t, 60, tm.Remaining(testNow))

	require.NoError(t, tm.Start(testNow))
	assert.Equal(t, 50, tm.Remaining(testNow.Add(10*time.Second)))

	require.NoError(t, tm.Pause(testNow.Add(20*time.Second)))
	assert.Equal(t, 20, tm.ElapsedTime)
	assert.Equal(t, 40, tm.Remaining(testNow.Add(time.Hour)))

	require.NoError(t, tm.Start(testNow.Add(time.Minute)))
	assert.Equal(t, 35, tm.Remaining(testNow.Add(time.Minute+5*time.Second)))
	assert.Equal(t, 0, tm.Remaining(testNow.Add(time.Hour)))

	require.NoError(t, tm.Finish(testNow.Add(70*time.Second)))
	assert.Equal(t, 0, tm.Remaining(testNow))

	err = tm.Start(testNow)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	tm.Reset()
	assert.Equal(t, TimerIdle, tm.Status)
	assert.Equal(t, 60, tm.Remaining(testNow))
}

func TestTimerRejectsBadInput(t *testing.T) {
	_, err := NewTimer(primitive.NewObjectID(), primitive.NewObjectID(), "egg", 60, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = NewTimer(primitive.NewObjectID(), primitive.NewObjectID(), TimerCustom, 0, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	tm, _ := NewTimer(primitive.NewObjectID(), primitive.NewObjectID(), TimerCustom, 30, "")
	err = tm.Pause(testNow)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}
