// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "audit_events"

// Event categories
const (
	CategoryAdmin    = "admin"
	CategoryDonation = "donation"
)

// Admin event types
const (
	EventUserUpdated       = "user_updated"
	EventUserRoleChanged   = "user_role_changed"
	EventUserStatusChanged = "user_status_changed"
	EventBlogStatusChanged = "blog_status_changed"
	EventBlogDeleted       = "blog_deleted"
)

// Donation event types
const (
	EventRequestStatusChanged = "request_status_changed"
	EventRequestAccepted      = "request_accepted"
	EventRequestDeleted       = "request_deleted"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Event classification
	Category  string `bson:"category" json:"category"`
	EventType string `bson:"eventType" json:"eventType"`

	// Who did it, and to what (a user, request or blog id)
	Actor    string `bson:"actor" json:"actor"`
	TargetID string `bson:"targetId,omitempty" json:"targetId,omitempty"`

	// Context
	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows List. Empty fields match anything.
type QueryFilter struct {
	Category  string
	EventType string
	Actor     string
	TargetID  string
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// List returns one page of events matching f, newest first.
func (s *Store) List(ctx context.Context, f QueryFilter, p paging.Params) (listquery.Result[Event], error) {
	q := listquery.New().
		Eq("category", f.Category).
		Eq("eventType", f.EventType).
		Eq("actor", f.Actor).
		Eq("targetId", f.TargetID)
	return listquery.Run[Event](ctx, s.c, q, p)
}

// Purge deletes events older than before and returns how many went.
func (s *Store) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
