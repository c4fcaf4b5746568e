package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	"github.com/dalemusser/redaid/internal/app/features/users"
	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/identity"
	"github.com/dalemusser/redaid/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	router http.Handler
	store  *userstore.Store
	fx     *testutil.Fixtures
}

// tokenAsEmail accepts "Bearer <email>" so tests can act as any user.
var tokenAsEmail = identity.VerifierFunc(func(ctx context.Context, tok string) (identity.Subject, error) {
	if !strings.Contains(tok, "@") {
		return identity.Subject{}, identity.ErrInvalidCredential
	}
	return identity.Subject{UID: "uid-" + tok, Email: tok}, nil
})

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	store := userstore.New(db)
	h := users.NewHandler(store, apperrors.NewErrorLogger(logger), nil, logger)
	g := auth.NewGate(tokenAsEmail, store, nil, logger)

	r := chi.NewRouter()
	users.MountDonorRoutes(r, h)
	r.Mount("/users", users.Routes(h, g, nil))
	return &env{router: r, store: store, fx: testutil.NewFixtures(t, db)}
}

func (e *env) do(method, target, as, body string) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(method, target, body)
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+as)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestDonors_FiltersAndExcludesBlocked(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateDonor(ctx, "a@x.com", "A+", "Dhaka")
	e.fx.CreateDonor(ctx, "b@x.com", "O-", "Dhaka")
	blocked := e.fx.CreateDonor(ctx, "c@x.com", "A+", "Dhaka")
	_, err := e.fx.DB().Collection(userstore.Collection).UpdateByID(ctx, blocked.ID,
		map[string]any{"$set": map[string]any{"status": "blocked"}})
	require.NoError(t, err)

	rec := e.do("GET", "/donors?bloodGroup=A%2B&district=Dhaka", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a@x.com", got[0]["email"])
}

func TestList_AdminOnly(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateUser(ctx, "admin@x.com", "admin")
	e.fx.CreateUser(ctx, "vol@x.com", "volunteer")
	e.fx.CreateUser(ctx, "d@x.com", "donor")

	assert.Equal(t, http.StatusUnauthorized, e.do("GET", "/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, e.do("GET", "/users", "vol@x.com", "").Code)

	rec := e.do("GET", "/users?page=1&limit=10", "admin@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users []struct {
			Email string `json:"email"`
		} `json:"users"`
		Total int64 `json:"total"`
		Pages int64 `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Total)
	assert.Equal(t, int64(1), body.Pages)
	assert.Len(t, body.Users, 2)
	for _, u := range body.Users {
		assert.NotEqual(t, "admin@x.com", u.Email, "caller must be excluded from the page")
	}
}

func TestRole_SelfOnly(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateUser(ctx, "vol@x.com", "volunteer")

	rec := e.do("GET", "/users/vol@x.com/role", "vol@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":"volunteer"}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, e.do("GET", "/users/vol@x.com/role", "other@x.com", "").Code)

	rec = e.do("GET", "/users/ghost@x.com/role", "ghost@x.com", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"role":"user","message":"User not found"}`, rec.Body.String())
}

func TestRegister_ForcesDonorAndKeepsExisting(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := e.do("POST", "/users", "", `{"email":"new@x.com","name":"New","role":"admin","bloodGroup":"B+"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u, err := e.store.GetByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, "donor", u.Role)
	assert.Equal(t, "active", u.Status)
	assert.Equal(t, "B+", u.BloodGroup)

	e.fx.CreateUser(ctx, "vol@x.com", "volunteer")
	rec = e.do("POST", "/users", "", `{"email":"vol@x.com","name":"Again"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	u, err = e.store.GetByEmail(ctx, "vol@x.com")
	require.NoError(t, err)
	assert.Equal(t, "volunteer", u.Role, "re-registration must not reset role")
}

func TestRegister_InvalidInput(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name, body string
	}{
		{"missing email", `{"name":"x"}`},
		{"bad email", `{"email":"nope"}`},
		{"bad blood group", `{"email":"a@x.com","bloodGroup":"Z"}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, e.do("POST", "/users", "", tt.body).Code)
		})
	}
}

func TestUpdateProfile_IgnoresRole(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateUser(ctx, "d@x.com", "donor")

	assert.Equal(t, http.StatusForbidden,
		e.do("PUT", "/users/d@x.com", "other@x.com", `{"name":"Hijack"}`).Code)

	rec := e.do("PUT", "/users/d@x.com", "d@x.com", `{"name":"Dina","role":"admin","district":"Khulna"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u, err := e.store.GetByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Dina", u.Name)
	assert.Equal(t, "Khulna", u.District)
	assert.Equal(t, "donor", u.Role)
}

func TestAdminUpdate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateUser(ctx, "admin@x.com", "admin")
	d := e.fx.CreateUser(ctx, "d@x.com", "donor")

	assert.Equal(t, http.StatusForbidden,
		e.do("PATCH", "/users/"+d.ID.Hex(), "d@x.com", `{"role":"admin"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		e.do("PATCH", "/users/not-an-id", "admin@x.com", `{"role":"admin"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		e.do("PATCH", "/users/"+d.ID.Hex(), "admin@x.com", `{"role":"root"}`).Code)

	rec := e.do("PATCH", "/users/"+d.ID.Hex(), "admin@x.com", `{"role":"volunteer","status":"blocked"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u, err := e.store.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "volunteer", u.Role)
	assert.Equal(t, "blocked", u.Status)
}

func TestGet_NotFound(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusNotFound, e.do("GET", "/users/none@x.com", "me@x.com", "").Code)
}
