// internal/app/store/funds/fundstore.go
package fundstore

import (
	"context"
	"time"

	"github.com/dalemusser/redaid/internal/app/store/results"
	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "funds"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Create(ctx context.Context, f models.Fund) (models.InsertResult, error) {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now().UTC()
	res, err := s.c.InsertOne(ctx, f)
	if err != nil {
		return models.InsertResult{}, err
	}
	return results.Insert(res), nil
}

// List returns a page of funds, most recent first.
func (s *Store) List(ctx context.Context, p paging.Params) (listquery.Result[models.Fund], error) {
	return listquery.Run[models.Fund](ctx, s.c, nil, p)
}

// Total sums amount across all funds. Amounts stored as strings by older
// clients are converted with $toDouble.
func (s *Store) Total(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$toDouble", Value: "$amount"}}}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}
