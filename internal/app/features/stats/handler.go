// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"net/http"

	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Counter counts the documents of one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// FundTotaler sums the funds ledger.
type FundTotaler interface {
	Total(ctx context.Context) (float64, error)
}

// Handler serves the aggregate statistics report.
type Handler struct {
	Users    Counter
	Requests Counter
	Funds    FundTotaler
	ErrLog   *apperrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(users, requests Counter, funds FundTotaler, errLog *apperrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Requests: requests,
		Funds:    funds,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type report struct {
	TotalUsers      int64   `json:"totalUsers"`
	TotalRequests   int64   `json:"totalRequests"`
	TotalFundAmount float64 `json:"totalFundAmount"`
}

// Serve handles GET /stats. The three aggregates are read concurrently;
// any failure fails the whole report.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var rep report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := h.Users.Count(gctx)
		rep.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := h.Requests.Count(gctx)
		rep.TotalRequests = n
		return err
	})
	g.Go(func() error {
		total, err := h.Funds.Total(gctx)
		rep.TotalFundAmount = total
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogServerError(w, r, "stats query failed", err)
		return
	}
	respond.OK(w, rep)
}

// Routes returns the router mounted at /stats (admin or volunteer).
func Routes(h *Handler, g *auth.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(g.RequireIdentity, g.RequireRole(authz.Admin, authz.Volunteer))
	r.Get("/", h.Serve)
	return r
}
