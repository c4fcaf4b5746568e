// internal/domain/models/blog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog is a content post written by volunteers or admins.
type Blog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Content     string             `bson:"content" json:"content"` // sanitized HTML
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Status      string             `bson:"status" json:"status"` // draft | published
	AuthorEmail string             `bson:"authorEmail,omitempty" json:"authorEmail,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
