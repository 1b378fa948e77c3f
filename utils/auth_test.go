package utils

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"munhub/models"
	"munhub/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	committee := primitive.NewObjectID()
	in := models.Principal{
		ID:          "delegate-1",
		Username:    "France",
		Role:        models.RoleDelegate,
		CommitteeID: committee,
		CountryName: "France",
	}

	token, err := tm.Generate(in)
	require.NoError(t, err)

	out, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseRejectsForeignSecretAndExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret-a", time.Minute)
	tm.now = func() time.Time { return issued }

	token, err := tm.Generate(models.Principal{ID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)

	other := NewTokenManager("secret-b", time.Minute)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = tm.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateSecretToken(t *testing.T) {
	a, err := GenerateSecretToken()
	require.NoError(t, err)
	b, err := GenerateSecretToken()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, SeedAdmin(ctx, st.Users, "root", "hunter2", zap.NewNop()))
	require.NoError(t, SeedAdmin(ctx, st.Users, "root", "other", zap.NewNop()))

	u, err := st.Users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, CheckPasswordHash("hunter2", u.PasswordHash))

	require.NoError(t, SeedAdmin(ctx, st.Users, "", "", zap.NewNop()))
}

func TestEnsureUserRejectsDelegatesAndOrphanPresidium(t *testing.T) {
	st := memstore.New()
	_, err := EnsureUser(context.Background(), st.Users, "x", "y", models.RoleDelegate, primitive.NilObjectID)
	assert.Error(t, err)
	_, err = EnsureUser(context.Background(), st.Users, "x", "y", models.RolePresidium, primitive.NilObjectID)
	assert.Error(t, err)
}
