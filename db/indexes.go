package db

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names shared by the mongo store and the indexes.
const (
	CollUsers        = "users"
	CollEvents       = "events"
	CollCommittees   = "committees"
	CollSessions     = "sessions"
	CollMotions      = "motions"
	CollVotings      = "votings"
	CollResolutions  = "resolutions"
	CollAmendments   = "amendments"
	CollActivities   = "activities"
	CollMessages     = "messages"
	CollSpeakerLists = "speakerlists"
	CollTimers       = "timers"
)

func indexSpec() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("uniq_users_username").SetUnique(true)},
		},
		CollCommittees: {
			{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetName("idx_committees_event")},
			{Keys: bson.D{{Key: "countries.token", Value: 1}}, Options: options.Index().SetName("idx_committees_country_token")},
		},
		CollSessions: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "number", Value: 1}}, Options: options.Index().SetName("uniq_sessions_committee_number").SetUnique(true)},
			// At most one active session per committee.
			{
				Keys: bson.D{{Key: "committeeId", Value: 1}},
				Options: options.Index().SetName("uniq_sessions_one_active").SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "active"}),
			},
		},
		CollMotions: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "status", Value: 1}, {Key: "priority", Value: -1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("idx_motions_queue")},
		},
		CollVotings: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_votings_committee")},
			// At most one unresolved voting per committee; open votings store a null result.
			{
				Keys: bson.D{{Key: "committeeId", Value: 1}},
				Options: options.Index().SetName("uniq_votings_one_open").SetUnique(true).
					SetPartialFilterExpression(bson.M{"result": bson.M{"$type": "null"}}),
			},
		},
		CollResolutions: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "submissionTime", Value: -1}}, Options: options.Index().SetName("idx_resolutions_committee")},
			{
				Keys: bson.D{{Key: "committeeId", Value: 1}},
				Options: options.Index().SetName("uniq_resolutions_one_working_draft").SetUnique(true).
					SetPartialFilterExpression(bson.M{"isWorkingDraft": true}),
			},
		},
		CollAmendments: {
			{Keys: bson.D{{Key: "resolutionId", Value: 1}}, Options: options.Index().SetName("idx_amendments_resolution")},
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_amendments_committee")},
		},
		CollActivities: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "countryName", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_activities_country")},
		},
		CollMessages: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "recipientCountry", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_messages_inbox")},
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "senderCountry", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_messages_sent")},
		},
		CollSpeakerLists: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetName("uniq_speakerlists_session").SetUnique(true)},
		},
		CollTimers: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetName("idx_timers_session")},
		},
	}
}

// EnsureIndexes creates every index. It is idempotent and reports all
// failing collections at once so startup can fail fast.
func EnsureIndexes(ctx context.Context, database *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for coll, models := range indexSpec() {
		names, err := database.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			logger.Warn("failed to ensure indexes", zap.String("collection", coll), zap.Error(err))
			problems = append(problems, coll+": "+err.Error())
			continue
		}
		logger.Debug("indexes ensured", zap.String("collection", coll), zap.Strings("names", names))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
