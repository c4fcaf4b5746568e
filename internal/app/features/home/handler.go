package home

import (
	"net/http"

	"go.uber.org/zap"
)

// Greeting is the body of GET /.
const Greeting = "Hello from RedAid!"

// Handler serves the service root.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot answers GET / with a plain-text greeting.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Greeting))
}
