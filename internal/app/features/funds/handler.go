// internal/app/features/funds/handler.go
package funds

import (
	"net/http"
	"strings"

	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	fundstore "github.com/dalemusser/redaid/internal/app/store/funds"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/inputval"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/redaid/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the funds ledger.
type Handler struct {
	Funds  *fundstore.Store
	ErrLog *apperrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(funds *fundstore.Store, errLog *apperrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Funds:  funds,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeList handles GET /funds?page&limit. The body is a plain array,
// most recent first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r, paging.DefaultLimit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Funds.List(ctx, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list funds failed", err)
		return
	}
	respond.OK(w, res.Items)
}

type createInput struct {
	Name          string  `json:"name" validate:"max=120"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	TransactionID string  `json:"transactionId" validate:"max=255"`
}

// ServeCreate handles POST /funds. The contributor email is the verified
// subject; any email in the body is ignored.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	sub, ok := auth.CurrentSubject(r)
	if !ok {
		respond.Unauthorized(w)
		return
	}

	var in createInput
	if err := formutil.DecodeJSON(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create fund: bad body", err, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "create fund: invalid input", res, res.First())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Funds.Create(ctx, models.Fund{
		Name:          strings.TrimSpace(in.Name),
		Email:         sub.Email,
		Amount:        in.Amount,
		TransactionID: strings.TrimSpace(in.TransactionID),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create fund failed", err)
		return
	}
	h.Log.Info("fund recorded",
		zap.String("email", sub.Email),
		zap.Float64("amount", in.Amount),
		zap.String("transaction_id", in.TransactionID))
	respond.OK(w, res)
}
