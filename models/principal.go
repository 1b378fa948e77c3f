package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role is the authenticated caller's role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePresidium Role = "presidium"
	RoleDelegate  Role = "delegate"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePresidium, RoleDelegate:
		return true
	}
	return false
}

// Principal is the caller identity delivered by the transport layer. It is
// trusted as-is; credentials are verified before it is built.
type Principal struct {
	ID          string             `json:"id"`
	Username    string             `json:"username,omitempty"`
	Role        Role               `json:"role"`
	CommitteeID primitive.ObjectID `json:"committeeId,omitempty"`
	CountryName string             `json:"countryName,omitempty"`
}

// IsStaff reports whether the principal is admin or presidium.
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RolePresidium
}

// BelongsTo reports whether the principal is assigned to the committee.
// Admins belong to every committee.
func (p Principal) BelongsTo(committeeID primitive.ObjectID) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return !p.CommitteeID.IsZero() && p.CommitteeID == committeeID
}
