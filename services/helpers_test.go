package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"munhub/models"
	"munhub/store/memstore"
	"munhub/utils"
	"munhub/websocket"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sent struct {
	committee primitive.ObjectID
	roles     []models.Role
	country   string
	event     websocket.Event
}

// recorder is a Notifier that keeps every event for inspection.
type recorder struct {
	mu     sync.Mutex
	events []sent
}

func (r *recorder) add(s sent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) Broadcast(id primitive.ObjectID, e websocket.Event) {
	r.add(sent{committee: id, event: e})
}

func (r *recorder) BroadcastToRoles(id primitive.ObjectID, roles []models.Role, e websocket.Event) {
	r.add(sent{committee: id, roles: roles, event: e})
}

func (r *recorder) SendToCountry(id primitive.ObjectID, country string, e websocket.Event) {
	r.add(sent{committee: id, country: country, event: e})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, s := range r.events {
		out[i] = s.event.Type
	}
	return out
}

// ofType returns the recorded events of one type in order.
func (r *recorder) ofType(typ string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, s := range r.events {
		if s.event.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var admin = models.Principal{ID: "admin", Username: "admin", Role: models.RoleAdmin}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	svc       *Services
	notes     *recorder
	clock     *clock
	tokens    *utils.TokenManager
	committee *models.Committee
	presidium models.Principal
}

// newFixture builds services over a fresh memstore with one committee
// seating the given countries. Countries listed in veto get veto rights.
func newFixture(t *testing.T, typ models.CommitteeType, countries []string, veto ...string) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		notes:  &recorder{},
		clock:  &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		tokens: utils.NewTokenManager("test-secret", time.Hour),
	}
	f.svc = New(Deps{
		Store:  memstore.New(),
		Notify: f.notes,
		Now:    f.clock.Now,
	}, AuthOptions{Tokens: f.tokens})

	event, err := f.svc.Events.Create(f.ctx, admin, EventInput{
		Name:        "Spring Conference",
		Description: "Annual model UN",
		StartDate:   f.clock.Now(),
		EndDate:     f.clock.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	vetoes := map[string]bool{}
	for _, v := range veto {
		vetoes[v] = true
	}
	in := CommitteeInput{EventID: event.ID, Name: "Committee", Type: typ, MinResolutionAuthors: 2}
	for _, name := range countries {
		in.Countries = append(in.Countries, CountryInput{Name: name, IsPermanentMember: vetoes[name], HasVetoRight: vetoes[name]})
	}
	f.committee, err = f.svc.Committees.Create(f.ctx, admin, in)
	require.NoError(t, err)

	f.presidium = models.Principal{ID: "chair", Username: "chair", Role: models.RolePresidium, CommitteeID: f.committee.ID}
	return f
}

func (f *fixture) delegate(country string) models.Principal {
	return models.Principal{
		ID:          f.committee.ID.Hex() + ":" + country,
		Username:    country,
		Role:        models.RoleDelegate,
		CommitteeID: f.committee.ID,
		CountryName: country,
	}
}

// openSession starts a session with the given countries present.
func (f *fixture) openSession(present ...string) *models.Session {
	f.t.Helper()
	s, err := f.svc.Sessions.Create(f.ctx, f.presidium, f.committee.ID)
	require.NoError(f.t, err)
	if len(present) > 0 {
		s, err = f.svc.Sessions.UpdateRollCall(f.ctx, f.presidium, s.ID, present)
		require.NoError(f.t, err)
	}
	return s
}

func intp(v int) *int { return &v }
