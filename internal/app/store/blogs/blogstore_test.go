package blogstore_test

import (
	"testing"

	blogstore "github.com/dalemusser/redaid/internal/app/store/blogs"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/domain/models"
	"github.com/dalemusser/redaid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DefaultsToDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Create(ctx, models.Blog{Title: "Why donate", Content: "<p>hi</p>"})
	require.NoError(t, err)

	id, err := primitive.ObjectIDFromHex(res.InsertedID)
	require.NoError(t, err)
	b, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, blogstore.Draft, b.Status)
}

func TestStore_List_SearchIsCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBlog(ctx, "Blood Types Explained", "health", "published")
	fixtures.CreateBlog(ctx, "After your donation", "health", "draft")
	fixtures.CreateBlog(ctx, "Volunteer stories", "community", "published")

	p := paging.New(1, 0, paging.BlogLimit)

	res, err := store.List(ctx, blogstore.ListFilter{Search: "blood"}, p)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Blood Types Explained", res.Items[0].Title)

	res, err = store.List(ctx, blogstore.ListFilter{Status: "published"}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = store.List(ctx, blogstore.ListFilter{Category: "health", Status: "draft"}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
}

func TestStore_SetStatusAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := fixtures.CreateBlog(ctx, "Post", "news", "draft")

	up, err := store.SetStatus(ctx, b.ID, blogstore.Published)
	require.NoError(t, err)
	assert.Equal(t, int64(1), up.ModifiedCount)

	del, err := store.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)

	_, err = store.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, blogstore.ErrNotFound)
}
