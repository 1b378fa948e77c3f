package authz

import (
	"testing"

	"munhub/internal/apperr"
	"munhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRolePolicy(t *testing.T) {
	a, err := New()
	require.NoError(t, err)

	assert.True(t, a.Allowed(models.RoleAdmin, Event, Create))
	assert.True(t, a.Allowed(models.RoleAdmin, Voting, Finalize), "admin inherits presidium rights")
	assert.True(t, a.Allowed(models.RolePresidium, Session, Create))
	assert.False(t, a.Allowed(models.RolePresidium, Event, Create))
	assert.True(t, a.Allowed(models.RoleDelegate, Voting, Vote))
	assert.False(t, a.Allowed(models.RoleDelegate, Voting, Finalize))
	assert.False(t, a.Allowed(models.RolePresidium, Voting, Vote))
	assert.False(t, a.Allowed("guest", Motion, Propose))
}

func TestRequireInCommittee(t *testing.T) {
	a := MustNew()
	committee := &models.Committee{ID: primitive.NewObjectID()}

	own := models.Principal{Role: models.RolePresidium, CommitteeID: committee.ID}
	assert.NoError(t, a.RequireInCommittee(own, committee, Session, Create))

	other := models.Principal{Role: models.RolePresidium, CommitteeID: primitive.NewObjectID()}
	err := a.RequireInCommittee(other, committee, Session, Create)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	admin := models.Principal{Role: models.RoleAdmin}
	assert.NoError(t, a.RequireInCommittee(admin, committee, Session, Create))

	delegate := models.Principal{Role: models.RoleDelegate, CommitteeID: committee.ID}
	err = a.RequireInCommittee(delegate, committee, Session, Create)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
