package store

import (
	"time"

	"munhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meta funcs expose the identity and timestamp fields of each entity so the
// backends can stamp documents generically.

func UserMeta(v *models.User) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func EventMeta(v *models.Event) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func CommitteeMeta(v *models.Committee) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func SessionMeta(v *models.Session) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func MotionMeta(v *models.Motion) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func VotingMeta(v *models.Voting) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func ResolutionMeta(v *models.Resolution) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func AmendmentMeta(v *models.Amendment) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func ActivityMeta(v *models.Activity) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func MessageMeta(v *models.Message) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func SpeakerListMeta(v *models.SpeakerList) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}

func TimerMeta(v *models.Timer) (*primitive.ObjectID, *time.Time, *time.Time) {
	return &v.ID, &v.CreatedAt, &v.UpdatedAt
}
