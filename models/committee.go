package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommitteeType decides voting rules; only SC committees honour vetoes.
type CommitteeType string

const (
	CommitteeGeneralAssembly CommitteeType = "GA"
	CommitteeSecurityCouncil CommitteeType = "SC"
	CommitteeOther           CommitteeType = "other"
)

func (t CommitteeType) Valid() bool {
	switch t {
	case CommitteeGeneralAssembly, CommitteeSecurityCouncil, CommitteeOther:
		return true
	}
	return false
}

type CommitteeStatus string

const (
	CommitteeSetup     CommitteeStatus = "setup"
	CommitteeActive    CommitteeStatus = "active"
	CommitteeCompleted CommitteeStatus = "completed"
)

func (s CommitteeStatus) Valid() bool {
	switch s {
	case CommitteeSetup, CommitteeActive, CommitteeCompleted:
		return true
	}
	return false
}

// DefaultMinResolutionAuthors applies when a committee is created without one.
const DefaultMinResolutionAuthors = 3

// Country is a seat in a committee. SecretToken is the delegate's login
// capability and is unique within the committee.
type Country struct {
	Name              string `bson:"name" json:"name"`
	IsPermanentMember bool   `bson:"isPermanentMember" json:"isPermanentMember"`
	HasVetoRight      bool   `bson:"hasVetoRight" json:"hasVetoRight"`
	SecretToken       string `bson:"token" json:"token,omitempty"`
}

type Committee struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID              primitive.ObjectID `bson:"eventId" json:"eventId"`
	Name                 string             `bson:"name" json:"name"`
	Type                 CommitteeType      `bson:"type" json:"type"`
	Status               CommitteeStatus    `bson:"status" json:"status"`
	MinResolutionAuthors int                `bson:"minResolutionAuthors" json:"minResolutionAuthors"`
	Countries            []Country          `bson:"countries" json:"countries"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Country returns the seat with the given name.
func (c *Committee) Country(name string) (Country, bool) {
	for _, country := range c.Countries {
		if country.Name == name {
			return country, true
		}
	}
	return Country{}, false
}

// HasCountry reports whether name holds a seat in the committee.
func (c *Committee) HasCountry(name string) bool {
	_, ok := c.Country(name)
	return ok
}

// CountryByToken returns the seat whose secret token matches.
func (c *Committee) CountryByToken(token string) (Country, bool) {
	if token == "" {
		return Country{}, false
	}
	for _, country := range c.Countries {
		if country.SecretToken == token {
			return country, true
		}
	}
	return Country{}, false
}

// WithoutTokens returns a copy safe to show to delegates.
func (c Committee) WithoutTokens() Committee {
	countries := make([]Country, len(c.Countries))
	for i, country := range c.Countries {
		country.SecretToken = ""
		countries[i] = country
	}
	c.Countries = countries
	return c
}

// CommitteeStatusView is the short status summary of a committee.
type CommitteeStatusView struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Type         CommitteeType      `json:"type"`
	Status       CommitteeStatus    `json:"status"`
	CountryCount int                `json:"countryCount"`
}

func (c *Committee) StatusView() CommitteeStatusView {
	return CommitteeStatusView{
		ID:           c.ID,
		Name:         c.Name,
		Type:         c.Type,
		Status:       c.Status,
		CountryCount: len(c.Countries),
	}
}

// QRCodeData is what an external renderer needs to print a delegate's login code.
type QRCodeData struct {
	Name          string             `json:"name"`
	Token         string             `json:"token"`
	CommitteeID   primitive.ObjectID `json:"committeeId"`
	CommitteeName string             `json:"committeeName"`
}
