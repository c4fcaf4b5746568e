// Package listquery builds filtered, paginated reads over a collection:
// optional equality and substring filters, newest first, with total and
// page counts.
package listquery

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dalemusser/redaid/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SortField is the creation-time field every listed collection carries.
const SortField = "createdAt"

// Filter accumulates query constraints. Empty values are skipped, so an
// absent query parameter never turns into a match against "".
type Filter struct {
	m bson.M
}

// New returns an empty Filter.
func New() *Filter {
	return &Filter{m: bson.M{}}
}

// Eq adds field == value when value is non-empty.
func (f *Filter) Eq(field, value string) *Filter {
	if value != "" {
		f.m[field] = value
	}
	return f
}

// Fixed adds field == value unconditionally. Use it for constraints the
// route imposes, not the client.
func (f *Filter) Fixed(field string, value any) *Filter {
	f.m[field] = value
	return f
}

// Contains adds a case-insensitive substring match when text is non-empty.
// The text is matched literally.
func (f *Filter) Contains(field, text string) *Filter {
	if text != "" {
		f.m[field] = primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	}
	return f
}

// BSON returns the filter document.
func (f *Filter) BSON() bson.M {
	if f == nil {
		return bson.M{}
	}
	return f.m
}

// FindOptions returns newest-first sort plus skip/limit for p.
// _id breaks ties between equal createdAt values.
func FindOptions(p paging.Params) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: SortField, Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
}

// Result is one page of T plus the totals across all pages.
type Result[T any] struct {
	Items []T
	Total int64
	Pages int64
}

// Run counts the matches, then fetches page p of them.
func Run[T any](ctx context.Context, c *mongo.Collection, f *Filter, p paging.Params) (Result[T], error) {
	filter := f.BSON()

	total, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return Result[T]{}, fmt.Errorf("count %s: %w", c.Name(), err)
	}

	cur, err := c.Find(ctx, filter, FindOptions(p))
	if err != nil {
		return Result[T]{}, fmt.Errorf("find %s: %w", c.Name(), err)
	}
	defer cur.Close(ctx)

	items := make([]T, 0, p.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return Result[T]{}, fmt.Errorf("decode %s: %w", c.Name(), err)
	}

	return Result[T]{
		Items: items,
		Total: total,
		Pages: paging.PageCount(total, p.Limit),
	}, nil
}
