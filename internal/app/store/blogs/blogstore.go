// internal/app/store/blogs/blogstore.go
package blogstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/redaid/internal/app/store/results"
	"github.com/dalemusser/redaid/internal/app/system/listquery"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "blogs"

// Blog statuses.
const (
	Draft     = "draft"
	Published = "published"
)

var ErrNotFound = errors.New("blog not found")

// ValidStatus reports whether s is draft or published.
func ValidStatus(s string) bool {
	return s == Draft || s == Published
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts b. Status defaults to draft.
func (s *Store) Create(ctx context.Context, b models.Blog) (models.InsertResult, error) {
	b.ID = primitive.NewObjectID()
	if b.Status == "" {
		b.Status = Draft
	}
	b.CreatedAt = time.Now().UTC()
	res, err := s.c.InsertOne(ctx, b)
	if err != nil {
		return models.InsertResult{}, err
	}
	return results.Insert(res), nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Blog, error) {
	var b models.Blog
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Blog{}, ErrNotFound
		}
		return models.Blog{}, err
	}
	return b, nil
}

func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.UpdateResult, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return models.UpdateResult{}, err
	}
	return results.Update(res), nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteResult{}, err
	}
	return results.Delete(res), nil
}

// ListFilter narrows List. Search is a case-insensitive title substring.
type ListFilter struct {
	Search   string
	Status   string
	Category string
}

func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) (listquery.Result[models.Blog], error) {
	q := listquery.New().
		Contains("title", f.Search).
		Eq("status", f.Status).
		Eq("category", f.Category)
	return listquery.Run[models.Blog](ctx, s.c, q, p)
}
