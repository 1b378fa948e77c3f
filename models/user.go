package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an admin or presidium account. Delegates log in with their
// country's secret token and have no stored user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never return password in JSON
	Role         Role               `bson:"role" json:"role"`
	CommitteeID  primitive.ObjectID `bson:"committeeId,omitempty" json:"committeeId,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Principal returns the identity carried in tokens for this user.
func (u User) Principal() Principal {
	return Principal{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Role:        u.Role,
		CommitteeID: u.CommitteeID,
	}
}
