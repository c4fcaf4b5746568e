// internal/app/features/users/handler.go
package users

import (
	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	"github.com/dalemusser/redaid/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves donor search, registration, profiles and the admin user
// directory.
type Handler struct {
	Users  *userstore.Store
	ErrLog *apperrors.ErrorLogger
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler creates a users Handler.
func NewHandler(users *userstore.Store, errLog *apperrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		ErrLog: errLog,
		Audit:  audit,
		Log:    logger,
	}
}
