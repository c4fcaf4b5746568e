// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"strings"

	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	"github.com/dalemusser/redaid/internal/app/store/audit"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const pageSize = 50

// Handler serves the admin audit trail.
type Handler struct {
	Events *audit.Store
	ErrLog *apperrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(events *audit.Store, errLog *apperrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		ErrLog: errLog,
		Log:    logger,
	}
}

type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Pages  int64         `json:"pages"`
}

// ServeList handles GET /audit?category&eventType&actor&target&page&limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "eventType")),
		Actor:     strings.TrimSpace(query.Get(r, "actor")),
		TargetID:  strings.TrimSpace(query.Get(r, "target")),
	}
	p := paging.Parse(r, pageSize)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Events.List(ctx, f, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log list failed", err)
		return
	}
	respond.OK(w, listResponse{Events: res.Items, Total: res.Total, Pages: res.Pages})
}
