package http

import (
	"net/http"

	"github.com/rs/zerolog"
)

// NewRouter wires the widget routes. Only submissions are rate limited.
func NewRouter(h *WidgetHandler, limiter *RateLimiter, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/widget", h.View)
	mux.HandleFunc("/widget/field", h.FieldChanged)
	mux.Handle("/widget/submit", RateLimitMiddleware(limiter, http.HandlerFunc(h.Submit)))
	mux.HandleFunc("/widget/reset", h.Reset)
	mux.HandleFunc("/widget/notice", h.DismissNotice)
	mux.HandleFunc("/widget/history", h.History)

	return RequestLogMiddleware(log, mux)
}
