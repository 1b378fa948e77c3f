// Package store defines persistence for every entity. Implementations keep
// createdAt/updatedAt current on writes and enforce the uniqueness rules:
// one active session, one open voting and one working draft per committee.
package store

import (
	"context"
	"errors"
	"time"

	"munhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type Users interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Replace(ctx context.Context, u *models.User) error
}

type Events interface {
	List(ctx context.Context) ([]models.Event, error) // newest start date first
	Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	Insert(ctx context.Context, e *models.Event) error
	Replace(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Committees interface {
	// List returns all committees, or those of one event when eventID is set.
	List(ctx context.Context, eventID *primitive.ObjectID) ([]models.Committee, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Committee, error)
	GetByToken(ctx context.Context, token string) (*models.Committee, error)
	Insert(ctx context.Context, c *models.Committee) error
	Replace(ctx context.Context, c *models.Committee) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Sessions interface {
	ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Session, error) // by number
	CountByCommittee(ctx context.Context, committeeID primitive.ObjectID) (int, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	Active(ctx context.Context, committeeID primitive.ObjectID) (*models.Session, error)
	Insert(ctx context.Context, s *models.Session) error
	Replace(ctx context.Context, s *models.Session) error
}

type Motions interface {
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Motion, error) // newest first
	// ListPending orders by priority, highest first, then by creation time.
	ListPending(ctx context.Context, sessionID primitive.ObjectID) ([]models.Motion, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Motion, error)
	Insert(ctx context.Context, m *models.Motion) error
	Replace(ctx context.Context, m *models.Motion) error
}

type Votings interface {
	ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Voting, error) // newest first
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Voting, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Voting, error)
	Open(ctx context.Context, committeeID primitive.ObjectID) (*models.Voting, error)
	Insert(ctx context.Context, v *models.Voting) error
	Replace(ctx context.Context, v *models.Voting) error
}

type Resolutions interface {
	ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Resolution, error) // newest first
	ListByAuthor(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Resolution, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Resolution, error)
	WorkingDraft(ctx context.Context, committeeID primitive.ObjectID) (*models.Resolution, error)
	Insert(ctx context.Context, r *models.Resolution) error
	Replace(ctx context.Context, r *models.Resolution) error
	// ClearWorkingDraft unsets the flag on every resolution of the committee.
	ClearWorkingDraft(ctx context.Context, committeeID primitive.ObjectID) error
}

type Amendments interface {
	ListByResolution(ctx context.Context, resolutionID primitive.ObjectID) ([]models.Amendment, error)
	ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Amendment, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Amendment, error)
	Insert(ctx context.Context, a *models.Amendment) error
	Replace(ctx context.Context, a *models.Amendment) error
}

type Activities interface {
	Insert(ctx context.Context, a *models.Activity) error
	ListByCountry(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Activity, error) // newest first
	// CountryStats aggregates per country, most active first.
	CountryStats(ctx context.Context, committeeID primitive.ObjectID) ([]models.CountryStats, error)
	Breakdown(ctx context.Context, committeeID primitive.ObjectID) ([]models.ActivityCount, error)
}

type Messages interface {
	// Inbox returns messages addressed to country plus committee-wide ones.
	Inbox(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Message, error)
	Sent(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Message, error)
	FromPresidium(ctx context.Context, committeeID primitive.ObjectID) ([]models.Message, error)
	UnreadCount(ctx context.Context, committeeID primitive.ObjectID, country string) (int, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	Insert(ctx context.Context, m *models.Message) error
	Replace(ctx context.Context, m *models.Message) error
}

type SpeakerLists interface {
	BySession(ctx context.Context, sessionID primitive.ObjectID) (*models.SpeakerList, error)
	Insert(ctx context.Context, l *models.SpeakerList) error
	Replace(ctx context.Context, l *models.SpeakerList) error
}

type Timers interface {
	ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Timer, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Timer, error)
	Insert(ctx context.Context, t *models.Timer) error
	Replace(ctx context.Context, t *models.Timer) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users        Users
	Events       Events
	Committees   Committees
	Sessions     Sessions
	Motions      Motions
	Votings      Votings
	Resolutions  Resolutions
	Amendments   Amendments
	Activities   Activities
	Messages     Messages
	SpeakerLists SpeakerLists
	Timers       Timers
}

// Stamp assigns an id to new documents and maintains the timestamps.
func Stamp(id *primitive.ObjectID, createdAt, updatedAt *time.Time, now time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
