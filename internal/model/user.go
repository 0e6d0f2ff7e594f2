package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agency staff role constants. Auth and multi-tenant packaging are external
// collaborators per spec.md §1 — this is the minimal identity the HTTP
// layer needs to know who is asking before handing a request to the core.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// AgencyUser represents an agency staff member who can run analyses and
// declare confounders for the creators their agency manages.
type AgencyUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgencyID  primitive.ObjectID `bson:"agency_id" json:"agency_id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	FullName  string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Role      string             `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *AgencyUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
