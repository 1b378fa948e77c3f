package mongostore

import (
	"context"

	"munhub/db"
	"munhub/models"
	"munhub/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// New returns a Store over database. Indexes are managed by db.EnsureIndexes.
func New(database *mongo.Database) *store.Store {
	return &store.Store{
		Users:        &users{newCollection(database, db.CollUsers, store.UserMeta)},
		Events:       &events{newCollection(database, db.CollEvents, store.EventMeta)},
		Committees:   &committees{newCollection(database, db.CollCommittees, store.CommitteeMeta)},
		Sessions:     &sessions{newCollection(database, db.CollSessions, store.SessionMeta)},
		Motions:      &motions{newCollection(database, db.CollMotions, store.MotionMeta)},
		Votings:      &votings{newCollection(database, db.CollVotings, store.VotingMeta)},
		Resolutions:  &resolutions{newCollection(database, db.CollResolutions, store.ResolutionMeta)},
		Amendments:   &amendments{newCollection(database, db.CollAmendments, store.AmendmentMeta)},
		Activities:   &activities{newCollection(database, db.CollActivities, store.ActivityMeta)},
		Messages:     &messages{newCollection(database, db.CollMessages, store.MessageMeta)},
		SpeakerLists: &speakerLists{newCollection(database, db.CollSpeakerLists, store.SpeakerListMeta)},
		Timers:       &timers{newCollection(database, db.CollTimers, store.TimerMeta)},
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type users struct{ collection[models.User] }

func (s *users) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.get(ctx, id)
}

func (s *users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *users) Insert(ctx context.Context, u *models.User) error  { return s.insert(ctx, u) }
func (s *users) Replace(ctx context.Context, u *models.User) error { return s.replace(ctx, u) }

type events struct{ collection[models.Event] }

func (s *events) List(ctx context.Context) ([]models.Event, error) {
	return s.find(ctx, bson.M{}, bson.D{{Key: "startDate", Value: -1}})
}

func (s *events) Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.get(ctx, id)
}

func (s *events) Insert(ctx context.Context, e *models.Event) error       { return s.insert(ctx, e) }
func (s *events) Replace(ctx context.Context, e *models.Event) error      { return s.replace(ctx, e) }
func (s *events) Delete(ctx context.Context, id primitive.ObjectID) error { return s.delete(ctx, id) }

type committees struct{ collection[models.Committee] }

func (s *committees) List(ctx context.Context, eventID *primitive.ObjectID) ([]models.Committee, error) {
	filter := bson.M{}
	if eventID != nil {
		filter["eventId"] = *eventID
	}
	return s.find(ctx, filter, bson.D{{Key: "name", Value: 1}})
}

func (s *committees) Get(ctx context.Context, id primitive.ObjectID) (*models.Committee, error) {
	return s.get(ctx, id)
}

func (s *committees) GetByToken(ctx context.Context, token string) (*models.Committee, error) {
	if token == "" {
		return nil, store.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"countries.token": token})
}

func (s *committees) Insert(ctx context.Context, c *models.Committee) error   { return s.insert(ctx, c) }
func (s *committees) Replace(ctx context.Context, c *models.Committee) error  { return s.replace(ctx, c) }
func (s *committees) Delete(ctx context.Context, id primitive.ObjectID) error { return s.delete(ctx, id) }

type sessions struct{ collection[models.Session] }

func (s *sessions) ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Session, error) {
	return s.find(ctx, bson.M{"committeeId": committeeID}, bson.D{{Key: "number", Value: 1}})
}

func (s *sessions) CountByCommittee(ctx context.Context, committeeID primitive.ObjectID) (int, error) {
	return s.count(ctx, bson.M{"committeeId": committeeID})
}

func (s *sessions) Get(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	return s.get(ctx, id)
}

func (s *sessions) Active(ctx context.Context, committeeID primitive.ObjectID) (*models.Session, error) {
	return s.findOne(ctx, bson.M{"committeeId": committeeID, "status": models.SessionActive})
}

func (s *sessions) Insert(ctx context.Context, v *models.Session) error  { return s.insert(ctx, v) }
func (s *sessions) Replace(ctx context.Context, v *models.Session) error { return s.replace(ctx, v) }

type motions struct{ collection[models.Motion] }

func (s *motions) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Motion, error) {
	return s.find(ctx, bson.M{"sessionId": sessionID}, newestFirst)
}

func (s *motions) ListPending(ctx context.Context, sessionID primitive.ObjectID) ([]models.Motion, error) {
	return s.find(ctx,
		bson.M{"sessionId": sessionID, "status": models.MotionPending},
		bson.D{{Key: "priority", Value: -1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	)
}

func (s *motions) Get(ctx context.Context, id primitive.ObjectID) (*models.Motion, error) {
	return s.get(ctx, id)
}

func (s *motions) Insert(ctx context.Context, m *models.Motion) error  { return s.insert(ctx, m) }
func (s *motions) Replace(ctx context.Context, m *models.Motion) error { return s.replace(ctx, m) }

type votings struct{ collection[models.Voting] }

func (s *votings) ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Voting, error) {
	return s.find(ctx, bson.M{"committeeId": committeeID}, newestFirst)
}

func (s *votings) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Voting, error) {
	return s.find(ctx, bson.M{"sessionId": sessionID}, newestFirst)
}

func (s *votings) Get(ctx context.Context, id primitive.ObjectID) (*models.Voting, error) {
	return s.get(ctx, id)
}

func (s *votings) Open(ctx context.Context, committeeID primitive.ObjectID) (*models.Voting, error) {
	return s.findOne(ctx, bson.M{"committeeId": committeeID, "result": nil})
}

func (s *votings) Insert(ctx context.Context, v *models.Voting) error  { return s.insert(ctx, v) }
func (s *votings) Replace(ctx context.Context, v *models.Voting) error { return s.replace(ctx, v) }

type resolutions struct{ collection[models.Resolution] }

var newestSubmission = bson.D{{Key: "submissionTime", Value: -1}, {Key: "_id", Value: -1}}

func (s *resolutions) ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Resolution, error) {
	return s.find(ctx, bson.M{"committeeId": committeeID}, newestSubmission)
}

func (s *resolutions) ListByAuthor(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Resolution, error) {
	return s.find(ctx, bson.M{
		"committeeId": committeeID,
		"$or": bson.A{
			bson.M{"authors": country},
			bson.M{"pendingCoAuthors": country},
		},
	}, newestSubmission)
}

func (s *resolutions) Get(ctx context.Context, id primitive.ObjectID) (*models.Resolution, error) {
	return s.get(ctx, id)
}

func (s *resolutions) WorkingDraft(ctx context.Context, committeeID primitive.ObjectID) (*models.Resolution, error) {
	return s.findOne(ctx, bson.M{"committeeId": committeeID, "isWorkingDraft": true})
}

// Insert and Replace regenerate the flat text before every write.
func (s *resolutions) Insert(ctx context.Context, r *models.Resolution) error {
	r.SyncContent()
	return s.insert(ctx, r)
}

func (s *resolutions) Replace(ctx context.Context, r *models.Resolution) error {
	r.SyncContent()
	return s.replace(ctx, r)
}

func (s *resolutions) ClearWorkingDraft(ctx context.Context, committeeID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"committeeId": committeeID, "isWorkingDraft": true},
		bson.M{"$set": bson.M{"isWorkingDraft": false, "updatedAt": now()}},
	)
	return err
}

type amendments struct{ collection[models.Amendment] }

func (s *amendments) ListByResolution(ctx context.Context, resolutionID primitive.ObjectID) ([]models.Amendment, error) {
	return s.find(ctx, bson.M{"resolutionId": resolutionID}, bson.D{
		{Key: "resolutionPart", Value: 1},
		{Key: "actionType", Value: 1},
		{Key: "pointNumber", Value: 1},
		{Key: "newPointAfter", Value: 1},
	})
}

func (s *amendments) ListByCommittee(ctx context.Context, committeeID primitive.ObjectID) ([]models.Amendment, error) {
	return s.find(ctx, bson.M{"committeeId": committeeID}, newestFirst)
}

func (s *amendments) Get(ctx context.Context, id primitive.ObjectID) (*models.Amendment, error) {
	return s.get(ctx, id)
}

func (s *amendments) Insert(ctx context.Context, a *models.Amendment) error  { return s.insert(ctx, a) }
func (s *amendments) Replace(ctx context.Context, a *models.Amendment) error { return s.replace(ctx, a) }

type activities struct{ collection[models.Activity] }

func (s *activities) Insert(ctx context.Context, a *models.Activity) error { return s.insert(ctx, a) }

func (s *activities) ListByCountry(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Activity, error) {
	return s.find(ctx,
		bson.M{"committeeId": committeeID, "countryName": country},
		bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}},
	)
}

func countIf(kind models.ActivityKind) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$activityType", kind}}, 1, 0}}}
}

func (s *activities) CountryStats(ctx context.Context, committeeID primitive.ObjectID) ([]models.CountryStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"committeeId": committeeID}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$countryName",
			"speeches": countIf(models.ActivitySpeech),
			"speechDuration": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$activityType", models.ActivitySpeech}},
				bson.M{"$ifNull": bson.A{"$duration", 0}},
				0,
			}}},
			"resolutions":     countIf(models.ActivityResolution),
			"amendments":      countIf(models.ActivityAmendment),
			"votes":           countIf(models.ActivityVote),
			"proposals":       countIf(models.ActivityProposal),
			"totalActivities": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalActivities", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	return aggregate[models.CountryStats](ctx, s.c, pipeline)
}

func (s *activities) Breakdown(ctx context.Context, committeeID primitive.ObjectID) ([]models.ActivityCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"committeeId": committeeID}}},
		{{Key: "$group", Value: bson.M{"_id": "$activityType", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	return aggregate[models.ActivityCount](ctx, s.c, pipeline)
}

func aggregate[R any](ctx context.Context, c *mongo.Collection, pipeline mongo.Pipeline) ([]R, error) {
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]R, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type messages struct{ collection[models.Message] }

func inboxFilter(committeeID primitive.ObjectID, country string) bson.M {
	return bson.M{
		"committeeId": committeeID,
		"$or": bson.A{
			bson.M{"recipientCountry": country},
			bson.M{"isCommitteeWide": true},
		},
	}
}

func (s *messages) Inbox(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Message, error) {
	return s.find(ctx, inboxFilter(committeeID, country), newestFirst)
}

func (s *messages) Sent(ctx context.Context, committeeID primitive.ObjectID, country string) ([]models.Message, error) {
	return s.find(ctx, bson.M{"committeeId": committeeID, "senderCountry": country}, newestFirst)
}

func (s *messages) FromPresidium(ctx context.Context, committeeID primitive.ObjectID) ([]models.Message, error) {
	return s.find(ctx, bson.M{"committeeId": committeeID, "isFromPresidium": true}, newestFirst)
}

func (s *messages) UnreadCount(ctx context.Context, committeeID primitive.ObjectID, country string) (int, error) {
	filter := inboxFilter(committeeID, country)
	filter["isRead"] = false
	return s.count(ctx, filter)
}

func (s *messages) Get(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	return s.get(ctx, id)
}

func (s *messages) Insert(ctx context.Context, m *models.Message) error  { return s.insert(ctx, m) }
func (s *messages) Replace(ctx context.Context, m *models.Message) error { return s.replace(ctx, m) }

type speakerLists struct{ collection[models.SpeakerList] }

func (s *speakerLists) BySession(ctx context.Context, sessionID primitive.ObjectID) (*models.SpeakerList, error) {
	return s.findOne(ctx, bson.M{"sessionId": sessionID})
}

func (s *speakerLists) Insert(ctx context.Context, l *models.SpeakerList) error  { return s.insert(ctx, l) }
func (s *speakerLists) Replace(ctx context.Context, l *models.SpeakerList) error { return s.replace(ctx, l) }

type timers struct{ collection[models.Timer] }

func (s *timers) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Timer, error) {
	return s.find(ctx, bson.M{"sessionId": sessionID}, bson.D{{Key: "createdAt", Value: 1}})
}

func (s *timers) Get(ctx context.Context, id primitive.ObjectID) (*models.Timer, error) {
	return s.get(ctx, id)
}

func (s *timers) Insert(ctx context.Context, t *models.Timer) error  { return s.insert(ctx, t) }
func (s *timers) Replace(ctx context.Context, t *models.Timer) error { return s.replace(ctx, t) }
