// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/redaid/internal/app/coordinator"
	blogstore "github.com/dalemusser/redaid/internal/app/store/blogs"
	requeststore "github.com/dalemusser/redaid/internal/app/store/donationrequests"
	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/identity"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with request context and writes the
// matching JSON error body. Internal details never reach the client.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func reqFields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}

// LogServerError logs at error level and writes 500 {message}.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.log.Error(msg, reqFields(r, err)...)
	respond.Message(w, http.StatusInternalServerError, respond.MsgInternal)
}

// LogBadRequest logs at debug level and writes 400 {message: userMsg}.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Debug(msg, reqFields(r, err)...)
	respond.Message(w, http.StatusBadRequest, userMsg)
}

// Status maps a domain error to its HTTP status. Unknown errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, identity.ErrMissingCredential),
		stderrors.Is(err, identity.ErrInvalidCredential):
		return http.StatusUnauthorized
	case stderrors.Is(err, coordinator.ErrNotFound),
		stderrors.Is(err, requeststore.ErrNotFound),
		stderrors.Is(err, userstore.ErrNotFound),
		stderrors.Is(err, blogstore.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, coordinator.ErrInvalidInput),
		stderrors.Is(err, coordinator.ErrInvalidStatus),
		stderrors.Is(err, coordinator.ErrIllegalTransition),
		stderrors.Is(err, coordinator.ErrNoRequester):
		return http.StatusBadRequest
	case stderrors.Is(err, coordinator.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Handle writes the response for err using Status. 5xx errors are logged
// with msg and answered generically; 4xx errors echo the error text.
func (e *ErrorLogger) Handle(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code := Status(err)
	switch {
	case code >= 500:
		e.LogServerError(w, r, msg, err)
	case code == http.StatusUnauthorized:
		respond.Unauthorized(w)
	default:
		e.log.Debug(msg, reqFields(r, err)...)
		respond.Message(w, code, err.Error())
	}
}
