// internal/domain/models/fund.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fund records a completed contribution. Amount is in dollars.
type Fund struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Email         string             `bson:"email" json:"email"`
	Amount        float64            `bson:"amount" json:"amount"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
