package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a diplomatic note inside one committee. A committee-wide message
// has no recipient and is only sent by the presidium.
type Message struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID      primitive.ObjectID `bson:"committeeId" json:"committeeId"`
	SenderCountry    string             `bson:"senderCountry" json:"senderCountry"`
	RecipientCountry string             `bson:"recipientCountry,omitempty" json:"recipientCountry,omitempty"`
	IsFromPresidium  bool               `bson:"isFromPresidium" json:"isFromPresidium"`
	IsCommitteeWide  bool               `bson:"isCommitteeWide" json:"isCommitteeWide"`
	Content          string             `bson:"content" json:"content"`
	IsRead           bool               `bson:"isRead" json:"isRead"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeliveredTo reports whether country can read the message.
func (m *Message) DeliveredTo(country string) bool {
	return m.IsCommitteeWide || m.RecipientCountry == country
}
