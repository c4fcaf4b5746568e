// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents donors, volunteers, admins, and plain registered users.
//
// NOTE:
//   - Email is the identity key. It is what the identity provider verifies
//     and what every authorization decision is correlated on.
//   - Role is only ever read from the stored record. Clients cannot set it
//     on registration or through self-service profile edits.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role       string             `bson:"role,omitempty" json:"role,omitempty"` // user | donor | volunteer | admin
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`
	BloodGroup string             `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	Division   string             `bson:"division,omitempty" json:"division,omitempty"`
	District   string             `bson:"district,omitempty" json:"district,omitempty"`
	Upazila    string             `bson:"upazila,omitempty" json:"upazila,omitempty"`

	// Counters maintained as side effects of the donation-request lifecycle.
	DonationRequest int64  `bson:"donationRequest" json:"donationRequest"`
	Donations       int64  `bson:"donations" json:"donations"`
	LastDonation    string `bson:"lastDonation,omitempty" json:"lastDonation,omitempty"` // YYYY-MM-DD

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
