package server

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/creastudio/studiogate/internal/model"
)

// newUpstreamProxy builds the pass-through handler for the fronted
// application. Requests reach it unmodified — the gate adds nothing to the
// forwarded request beyond what the standard proxy sets (X-Forwarded-For).
func newUpstreamProxy(upstream *url.URL, logger *slog.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream proxy error", "error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusBadGateway, model.ErrorBody{
			Error:   "Bad Gateway",
			Message: "upstream application unavailable",
		})
	}

	return proxy
}
