package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestInsert(t *testing.T) {
	id := primitive.NewObjectID()
	got := Insert(&mongo.InsertOneResult{InsertedID: id})
	assert.True(t, got.Acknowledged)
	assert.Equal(t, id.Hex(), got.InsertedID)
}

func TestUpdate_Upsert(t *testing.T) {
	id := primitive.NewObjectID()
	got := Update(&mongo.UpdateResult{UpsertedCount: 1, UpsertedID: id})
	assert.Equal(t, int64(0), got.MatchedCount)
	assert.Equal(t, int64(1), got.UpsertedCount)
	assert.Equal(t, id.Hex(), got.UpsertedID)
}

func TestDelete_ZeroIsAcknowledged(t *testing.T) {
	got := Delete(&mongo.DeleteResult{DeletedCount: 0})
	assert.True(t, got.Acknowledged)
	assert.Zero(t, got.DeletedCount)
}

func TestNilResults(t *testing.T) {
	assert.False(t, Insert(nil).Acknowledged)
	assert.False(t, Update(nil).Acknowledged)
	assert.False(t, Delete(nil).Acknowledged)
}
