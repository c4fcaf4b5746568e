package fundstore_test

import (
	"testing"

	fundstore "github.com/dalemusser/redaid/internal/app/store/funds"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/domain/models"
	"github.com/dalemusser/redaid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Total_ConvertsStrings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := fundstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateFund(ctx, "a@x.com", 10.5)
	fixtures.CreateFund(ctx, "b@x.com", 4.5)
	_, err := db.Collection(fundstore.Collection).InsertOne(ctx, bson.M{"email": "c@x.com", "amount": "5"})
	require.NoError(t, err)

	total, err := store.Total(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, total, 0.0001)
}

func TestStore_Total_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := fundstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	total, err := store.Total(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := fundstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, amt := range []float64{5, 10, 15} {
		_, err := store.Create(ctx, models.Fund{Email: "a@x.com", Amount: amt})
		require.NoError(t, err)
	}

	res, err := store.List(ctx, paging.New(1, 2, paging.DefaultLimit))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, int64(2), res.Pages)
	assert.Len(t, res.Items, 2)
}
