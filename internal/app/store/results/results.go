// Package results converts driver write results into the JSON envelopes
// returned to API clients.
package results

import (
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	}
	return ""
}

// Insert converts an InsertOneResult.
func Insert(r *mongo.InsertOneResult) models.InsertResult {
	if r == nil {
		return models.InsertResult{}
	}
	return models.InsertResult{Acknowledged: true, InsertedID: idString(r.InsertedID)}
}

// Update converts an UpdateResult.
func Update(r *mongo.UpdateResult) models.UpdateResult {
	if r == nil {
		return models.UpdateResult{}
	}
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    idString(r.UpsertedID),
	}
}

// Delete converts a DeleteResult.
func Delete(r *mongo.DeleteResult) models.DeleteResult {
	if r == nil {
		return models.DeleteResult{}
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: r.DeletedCount}
}
