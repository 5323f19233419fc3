package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/tcgarena/internal/api/apierr"
	"github.com/mcoot/tcgarena/internal/middleware"
)

// Recovery turns handler panics into the API's INTERNAL_ERROR body.
// The connection is closed afterwards since handler state is unknown.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "http")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		w.Header().Set("Connection", "close")
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
