package stats_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	"github.com/dalemusser/redaid/internal/app/features/stats"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type count int64

func (c count) Count(ctx context.Context) (int64, error) { return int64(c), nil }

type total struct {
	v   float64
	err error
}

func (t total) Total(ctx context.Context) (float64, error) { return t.v, t.err }

type roles map[string]authz.Role

func (m roles) RoleOf(ctx context.Context, email string) (authz.Role, bool, error) {
	r, ok := m[email]
	return r, ok, nil
}

func newRouter(funds stats.FundTotaler) http.Handler {
	logger := zap.NewNop()
	h := stats.NewHandler(count(12), count(30), funds, apperrors.NewErrorLogger(logger), logger)
	v := identity.VerifierFunc(func(ctx context.Context, tok string) (identity.Subject, error) {
		return identity.Subject{UID: tok, Email: tok}, nil
	})
	g := auth.NewGate(v, roles{"admin@x.com": authz.Admin, "vol@x.com": authz.Volunteer, "d@x.com": authz.Donor}, nil, logger)
	return stats.Routes(h, g)
}

func get(h http.Handler, as string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+as)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStats(t *testing.T) {
	h := newRouter(total{v: 1250.75})

	for _, who := range []string{"admin@x.com", "vol@x.com"} {
		rec := get(h, who)
		require.Equal(t, http.StatusOK, rec.Code, who)
		assert.JSONEq(t, `{"totalUsers":12,"totalRequests":30,"totalFundAmount":1250.75}`, rec.Body.String())
	}
	assert.Equal(t, http.StatusForbidden, get(h, "d@x.com").Code)
}

func TestStats_QueryError(t *testing.T) {
	h := newRouter(total{err: errors.New("aggregate failed")})
	rec := get(h, "admin@x.com")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
}
