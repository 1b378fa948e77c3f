package utils

import (
	"context"
	"errors"
	"fmt"

	"munhub/models"
	"munhub/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EnsureUser creates a user with the given role unless the username is
// already taken. It reports whether a user was created.
func EnsureUser(ctx context.Context, users store.Users, username, password string, role models.Role, committeeID primitive.ObjectID) (bool, error) {
	if username == "" || password == "" {
		return false, errors.New("username and password are required")
	}
	if !role.Valid() || role == models.RoleDelegate {
		return false, fmt.Errorf("cannot create a user with role %q", role)
	}
	if role == models.RolePresidium && committeeID.IsZero() {
		return false, errors.New("presidium users need a committee")
	}

	_, err := users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CommitteeID:  committeeID,
	}
	if err := users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert user: %w", err)
	}
	return true, nil
}

// SeedAdmin creates the bootstrap admin account when it is configured and
// missing. An empty username disables seeding.
func SeedAdmin(ctx context.Context, users store.Users, username, password string, logger *zap.Logger) error {
	if username == "" {
		return nil
	}
	created, err := EnsureUser(ctx, users, username, password, models.RoleAdmin, primitive.NilObjectID)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("created admin user", zap.String("username", username))
	}
	return nil
}
