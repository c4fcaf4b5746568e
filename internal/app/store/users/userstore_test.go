package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestStore_Register_NewUserIsActiveDonor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Register(ctx, "new@x.com", userstore.Profile{Name: strp("New"), BloodGroup: strp("A+")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UpsertedCount)
	assert.NotEmpty(t, res.UpsertedID)

	u, err := store.GetByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, "donor", u.Role)
	assert.Equal(t, "active", u.Status)
	assert.Equal(t, "A+", u.BloodGroup)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestStore_Register_ExistingUserUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "admin@x.com", "admin")

	res, err := store.Register(ctx, "admin@x.com", userstore.Profile{Name: strp("Changed")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.UpsertedCount)

	role, found, err := store.RoleOf(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, authz.Admin, role, "re-registration must not reset the role")
}

func TestStore_RoleOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "vol@x.com", "volunteer")
	fixtures.CreateUser(ctx, "blank@x.com", "")
	fixtures.CreateUser(ctx, "odd@x.com", "superuser")

	tests := []struct {
		email string
		role  authz.Role
		found bool
	}{
		{"vol@x.com", authz.Volunteer, true},
		{"blank@x.com", authz.User, true},
		{"odd@x.com", authz.User, true},
		{"missing@x.com", authz.User, false},
	}
	for _, tt := range tests {
		role, found, err := store.RoleOf(ctx, tt.email)
		require.NoError(t, err)
		assert.Equal(t, tt.found, found, tt.email)
		assert.Equal(t, tt.role, role, tt.email)
	}
}

func TestStore_GetByEmail_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, userstore.ErrNotFound)
}

func TestStore_UpdateProfile_OnlyGivenFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateDonor(ctx, "d@x.com", "B+", "Gazipur")

	res, err := store.UpdateProfile(ctx, "d@x.com", userstore.Profile{District: strp("Narsingdi")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	u, err := store.GetByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Narsingdi", u.District)
	assert.Equal(t, "B+", u.BloodGroup)
	assert.Equal(t, "donor", u.Role)
}

func TestStore_UpdateProfile_EmptyPatchMatchesWithoutWrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "u@x.com", "user")

	res, err := store.UpdateProfile(ctx, "u@x.com", userstore.Profile{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.ModifiedCount)
}

func TestStore_UpdateByID_ChangesRoleAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "u@x.com", "donor")

	_, err := store.UpdateByID(ctx, u.ID, userstore.AdminUpdate{Role: strp("volunteer"), Status: strp("blocked")})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "volunteer", got.Role)
	assert.Equal(t, "blocked", got.Status)
}

func TestStore_Counters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateDonor(ctx, "d@x.com", "O+", "Dhaka")

	n, err := store.IncrementDonationRequests(ctx, "d@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.RecordDonation(ctx, "d@x.com", "2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = store.RecordDonation(ctx, "d@x.com", "2026-10-18")
	require.NoError(t, err)

	u, err := store.GetByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.DonationRequest)
	assert.Equal(t, int64(2), u.Donations)
	assert.Equal(t, "2026-10-18", u.LastDonation)

	n, err = store.RecordDonation(ctx, "ghost@x.com", "2026-10-17")
	require.NoError(t, err)
	assert.Zero(t, n, "unknown donor matches nothing")
}

func TestStore_ListDonors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateDonor(ctx, "o1@x.com", "O+", "Dhaka")
	fixtures.CreateDonor(ctx, "o2@x.com", "O+", "Gazipur")
	fixtures.CreateDonor(ctx, "a1@x.com", "A+", "Dhaka")
	blocked := fixtures.CreateDonor(ctx, "blocked@x.com", "O+", "Dhaka")
	_, err := db.Collection("users").UpdateByID(ctx, blocked.ID, map[string]any{"$set": map[string]any{"status": "blocked"}})
	require.NoError(t, err)
	fixtures.CreateUser(ctx, "admin@x.com", "admin")

	donors, err := store.ListDonors(ctx, userstore.DonorFilter{BloodGroup: "O+"})
	require.NoError(t, err)
	emails := map[string]bool{}
	for _, d := range donors {
		emails[d.Email] = true
	}
	assert.Equal(t, map[string]bool{"o1@x.com": true, "o2@x.com": true}, emails)

	all, err := store.ListDonors(ctx, userstore.DonorFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	narrow, err := store.ListDonors(ctx, userstore.DonorFilter{BloodGroup: "O+", District: "Gazipur"})
	require.NoError(t, err)
	require.Len(t, narrow, 1)
	assert.Equal(t, "o2@x.com", narrow[0].Email)
}

func TestStore_List_ExcludesCaller(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "admin@x.com", "admin")
	fixtures.CreateUser(ctx, "a@x.com", "donor")
	fixtures.CreateUser(ctx, "b@x.com", "donor")

	res, err := store.List(ctx, "", "admin@x.com", paging.New(1, 10, paging.DefaultLimit))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, int64(1), res.Pages)
	assert.Len(t, res.Items, 2)
	for _, u := range res.Items {
		assert.NotEqual(t, "admin@x.com", u.Email)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
