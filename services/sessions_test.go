package services

import (
	"errors"
	"sync"
	"testing"

	"munhub/internal/apperr"
	"munhub/models"
	"munhub/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var countries = []string{"France", "Germany", "Kenya", "Brazil"}

func TestCreateSessionNumbersAndConflict(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	first := f.openSession()
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, models.ModeFormal, first.Mode)
	assert.Empty(t, first.PresentCountries)

	_, err := f.svc.Sessions.Create(f.ctx, f.presidium, f.committee.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, first.ID.Hex(), appErr.Details["activeSessionId"])

	_, err = f.svc.Sessions.Complete(f.ctx, f.presidium, first.ID)
	require.NoError(t, err)

	second := f.openSession()
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, []string{websocket.TypeSessionCreated, websocket.TypeSessionCompleted, websocket.TypeSessionCreated}, f.notes.types())
}

func TestConcurrentSessionCreationYieldsOne(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Sessions.Create(f.ctx, f.presidium, f.committee.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperr.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)
	all, err := f.svc.Sessions.List(f.ctx, f.presidium, f.committee.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionRequiresStaffOfCommittee(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)

	_, err := f.svc.Sessions.Create(f.ctx, f.delegate("France"), f.committee.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	other := f.presidium
	other.CommitteeID = f.committee.EventID // any other id
	_, err = f.svc.Sessions.Create(f.ctx, other, f.committee.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRollCallAndMode(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	s := f.openSession()

	_, err := f.svc.Sessions.UpdateRollCall(f.ctx, f.presidium, s.ID, []string{"France", "Atlantis"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	s, err = f.svc.Sessions.UpdateRollCall(f.ctx, f.presidium, s.ID, []string{"France", "Kenya"})
	require.NoError(t, err)
	assert.True(t, s.Quorum)
	assert.Equal(t, []string{"France", "Kenya"}, s.PresentCountries)

	s, err = f.svc.Sessions.SetMode(f.ctx, f.presidium, s.ID, models.ModeInformalModerated)
	require.NoError(t, err)
	assert.Equal(t, models.ModeInformalModerated, s.Mode)

	_, err = f.svc.Sessions.SetMode(f.ctx, f.presidium, s.ID, "chaos")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Sessions.Complete(f.ctx, f.presidium, s.ID)
	require.NoError(t, err)
	_, err = f.svc.Sessions.SetMode(f.ctx, f.presidium, s.ID, models.ModeFormal)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.svc.Sessions.Active(f.ctx, f.presidium, f.committee.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAcceptedCaucusSwitchesMode(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	s := f.openSession("France", "Germany")

	m, err := f.svc.Motions.Propose(f.ctx, f.delegate("France"), ProposeInput{
		SessionID: s.ID,
		Type:      models.MotionModeratedCaucus,
		Duration:  600,
	})
	require.NoError(t, err)
	assert.Equal(t, "France", m.ProposedBy)
	assert.Equal(t, models.MotionPending, m.Status)

	_, err = f.svc.Motions.Second(f.ctx, f.delegate("France"), m.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	m, err = f.svc.Motions.Second(f.ctx, f.delegate("Germany"), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Germany", m.SecondedBy)

	f.notes.reset()
	m, err = f.svc.Motions.UpdateStatus(f.ctx, f.presidium, m.ID, models.MotionAccepted, &models.VoteCounts{Yes: 2})
	require.NoError(t, err)
	assert.Equal(t, models.MotionAccepted, m.Status)

	s, err = f.svc.Sessions.Get(f.ctx, f.presidium, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModeInformalModerated, s.Mode)

	assert.Equal(t, []string{
		websocket.TypeSessionUpdated,
		websocket.TypeModeChanged,
		websocket.TypeTimerStarted,
		websocket.TypeMotionStatusUpdated,
	}, f.notes.types())
	mode := f.notes.ofType(websocket.TypeModeChanged)[0]
	assert.Equal(t, 600, mode.event.Fields["duration"])

	_, err = f.svc.Motions.UpdateStatus(f.ctx, f.presidium, m.ID, models.MotionRejected, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestPendingMotionsByPriority(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	s := f.openSession()

	for _, typ := range []models.MotionType{models.MotionOther, models.MotionAdjournment, models.MotionModeratedCaucus} {
		_, err := f.svc.Motions.Propose(f.ctx, f.presidium, ProposeInput{SessionID: s.ID, Type: typ})
		require.NoError(t, err)
		f.clock.Advance(1)
	}

	pending, err := f.svc.Motions.Pending(f.ctx, f.delegate("Kenya"), s.ID)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i := 1; i < len(pending); i++ {
		assert.GreaterOrEqual(t, pending[i-1].Priority, pending[i].Priority)
	}
	assert.Equal(t, models.MotionAdjournment, pending[0].Type)
	assert.Equal(t, models.PresidiumProposer, pending[0].ProposedBy)
}

func TestProposeNeedsActiveSession(t *testing.T) {
	f := newFixture(t, models.CommitteeGeneralAssembly, countries)
	s := f.openSession()
	_, err := f.svc.Sessions.Complete(f.ctx, f.presidium, s.ID)
	require.NoError(t, err)

	_, err = f.svc.Motions.Propose(f.ctx, f.delegate("France"), ProposeInput{SessionID: s.ID, Type: models.MotionOther})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}
