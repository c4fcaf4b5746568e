// internal/app/features/donationrequests/handler.go
package donationrequests

import (
	"github.com/dalemusser/redaid/internal/app/coordinator"
	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	"github.com/dalemusser/redaid/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client's retry key for acceptances.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes the donation-request lifecycle over HTTP. All writes go
// through the coordinator.
type Handler struct {
	Requests *coordinator.Coordinator
	ErrLog   *apperrors.ErrorLogger
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler creates a donation-request Handler.
func NewHandler(c *coordinator.Coordinator, errLog *apperrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Requests: c,
		ErrLog:   errLog,
		Audit:    audit,
		Log:      logger,
	}
}
