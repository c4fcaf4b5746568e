// internal/app/store/donationrequests/requeststore.go
package requeststore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/redaid/internal/app/store/results"
	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the donation requests collection name.
const Collection = "donationRequests"

var ErrNotFound = errors.New("donation request not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Insert stores r with a fresh ID. CreatedAt is set when zero.
func (s *Store) Insert(ctx context.Context, r models.DonationRequest) (models.InsertResult, error) {
	r.ID = primitive.NewObjectID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.c.InsertOne(ctx, r)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert donation request: %w", err)
	}
	return results.Insert(res), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.DonationRequest, error) {
	var r models.DonationRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.DonationRequest{}, ErrNotFound
		}
		return models.DonationRequest{}, err
	}
	return r, nil
}

// Update $sets fields on the request. When expectStatus is non-empty the
// write only applies if the stored status still equals it, so a concurrent
// transition shows up as MatchedCount 0.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, expectStatus string, set bson.M) (models.UpdateResult, error) {
	filter := bson.M{"_id": id}
	if expectStatus != "" {
		filter["status"] = expectStatus
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update donation request %s: %w", id.Hex(), err)
	}
	return results.Update(res), nil
}

// Delete removes the request. A missing id reports DeletedCount 0.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteResult{}, err
	}
	return results.Delete(res), nil
}

// ListFilter holds the optional equality constraints for List.
type ListFilter struct {
	RequesterEmail string
	Status         string
}

// List returns a page of requests, newest first.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) (listquery.Result[models.DonationRequest], error) {
	q := listquery.New().
		Eq("requesterEmail", f.RequesterEmail).
		Eq("status", f.Status)
	return listquery.Run[models.DonationRequest](ctx, s.c, q, p)
}

// Count returns the number of donation requests.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
