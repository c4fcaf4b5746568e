// internal/domain/models/donationrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonationRequest is a request for blood filed by a requester and, once a
// donor commits, fulfilled by that donor.
type DonationRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RequesterName  string             `bson:"requesterName" json:"requesterName"`
	RequesterEmail string             `bson:"requesterEmail" json:"requesterEmail"`

	RecipientName     string `bson:"recipientName" json:"recipientName"`
	RecipientDivision string `bson:"recipientDivision,omitempty" json:"recipientDivision,omitempty"`
	RecipientDistrict string `bson:"recipientDistrict,omitempty" json:"recipientDistrict,omitempty"`
	RecipientUpazila  string `bson:"recipientUpazila,omitempty" json:"recipientUpazila,omitempty"`
	HospitalName      string `bson:"hospitalName" json:"hospitalName"`
	FullAddress       string `bson:"fullAddress,omitempty" json:"fullAddress,omitempty"`
	BloodGroup        string `bson:"bloodGroup" json:"bloodGroup"`
	DonationDate      string `bson:"donationDate" json:"donationDate"` // YYYY-MM-DD
	DonationTime      string `bson:"donationTime,omitempty" json:"donationTime,omitempty"`
	RequestMessage    string `bson:"requestMessage,omitempty" json:"requestMessage,omitempty"`

	Status string `bson:"status" json:"status"` // pending | inprogress | done | canceled

	// Set when a donor accepts the request; absent while pending.
	DonorName  string `bson:"donorName,omitempty" json:"donorName,omitempty"`
	DonorEmail string `bson:"donorEmail,omitempty" json:"donorEmail,omitempty"`

	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
