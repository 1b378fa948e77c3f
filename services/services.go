// Package services holds the committee workflows. Every operation loads the
// entities it needs, asks the model to validate and apply the transition,
// persists the result and then notifies the committee's live connections.
package services

import (
	"context"
	"errors"
	"time"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/internal/keylock"
	"munhub/models"
	"munhub/store"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier fans realtime events out to a committee's connections. Delivery
// is best effort and never fails the calling operation.
type Notifier interface {
	Broadcast(committeeID primitive.ObjectID, e websocket.Event)
	BroadcastToRoles(committeeID primitive.ObjectID, roles []models.Role, e websocket.Event)
	SendToCountry(committeeID primitive.ObjectID, country string, e websocket.Event)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Store  *store.Store
	Notify Notifier
	Authz  *authz.Authorizer
	Locks  *keylock.Locker
	Logger *zap.Logger
	Now    func() time.Time
	Quorum models.QuorumPolicy
}

func (d *Deps) defaults() {
	if d.Authz == nil {
		d.Authz = authz.MustNew()
	}
	if d.Locks == nil {
		d.Locks = keylock.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Quorum == nil {
		d.Quorum = models.AnyCountryPresent
	}
	if d.Notify == nil {
		d.Notify = nopNotifier{}
	}
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(primitive.ObjectID, websocket.Event) {}
func (nopNotifier) BroadcastToRoles(primitive.ObjectID, []models.Role, websocket.Event) {}
func (nopNotifier) SendToCountry(primitive.ObjectID, string, websocket.Event) {}

// Services bundles one instance of every workflow.
type Services struct {
	Auth         *AuthService
	Events       *EventService
	Committees   *CommitteeService
	Sessions     *SessionService
	Motions      *MotionService
	Votings      *VotingService
	Resolutions  *ResolutionService
	Amendments   *AmendmentService
	Messages     *MessageService
	Statistics   *StatisticsService
	SpeakerLists *SpeakerListService
	Timers       *TimerService
}

// New wires every service over the same dependencies.
func New(deps Deps, auth AuthOptions) *Services {
	deps.defaults()
	b := &base{Deps: deps}
	return &Services{
		Auth:         newAuthService(b, auth),
		Events:       &EventService{base: b},
		Committees:   &CommitteeService{base: b},
		Sessions:     &SessionService{base: b},
		Motions:      &MotionService{base: b},
		Votings:      &VotingService{base: b},
		Resolutions:  &ResolutionService{base: b},
		Amendments:   &AmendmentService{base: b},
		Messages:     newMessageService(b),
		Statistics:   &StatisticsService{base: b},
		SpeakerLists: &SpeakerListService{base: b},
		Timers:       &TimerService{base: b},
	}
}

type base struct {
	Deps
}

// storeErr maps storage sentinels onto the application taxonomy.
func storeErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("%s already exists", entity)
	}
	return err
}

func (b *base) committee(ctx context.Context, id primitive.ObjectID) (*models.Committee, error) {
	c, err := b.Store.Committees.Get(ctx, id)
	return c, storeErr(err, "Committee")
}

func (b *base) session(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	s, err := b.Store.Sessions.Get(ctx, id)
	return s, storeErr(err, "Session")
}

// activeSession returns the committee's active session or an InvalidState error.
func (b *base) activeSession(ctx context.Context, committeeID primitive.ObjectID) (*models.Session, error) {
	s, err := b.Store.Sessions.Active(ctx, committeeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidState("No active session found")
	}
	return s, err
}

// authorize loads the committee and checks p may act on obj inside it.
func (b *base) authorize(ctx context.Context, p models.Principal, committeeID primitive.ObjectID, obj authz.Resource, act authz.Action) (*models.Committee, error) {
	if err := b.Authz.Require(p, obj, act); err != nil {
		return nil, err
	}
	c, err := b.committee(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(c.ID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return c, nil
}

// member loads the committee and checks p is assigned to it, whatever the role.
func (b *base) member(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) (*models.Committee, error) {
	c, err := b.committee(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if !p.BelongsTo(c.ID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	return c, nil
}

// lock serializes work on one committee-scoped key.
func (b *base) lock(scope string, id primitive.ObjectID) func() {
	return b.Locks.Lock(scope + ":" + id.Hex())
}

// record appends an activity. Failures are logged: statistics never block
// the operation that produced them.
func (b *base) record(ctx context.Context, committeeID, sessionID primitive.ObjectID, country string, kind models.ActivityKind, duration int, details map[string]any) {
	if country == "" || country == models.PresidiumProposer {
		return
	}
	a := &models.Activity{
		CommitteeID: committeeID,
		SessionID:   sessionID,
		CountryName: country,
		Kind:        kind,
		Duration:    duration,
		Timestamp:   b.Now(),
		Details:     details,
	}
	if err := b.Store.Activities.Insert(ctx, a); err != nil {
		b.Logger.Warn("failed to record activity",
			zap.String("committeeId", committeeID.Hex()),
			zap.String("country", country),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// staffRoles receive presidium-only notifications.
var staffRoles = []models.Role{models.RoleAdmin, models.RolePresidium}
