package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wpbr/reviewproxy/pkg/logger"
)

// NewErrorHandler logs err (warn for 4xx, error for 5xx) and renders it as a
// JSON envelope. Request id and other context attributes come from the
// logger's extractors.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		status := http.StatusInternalServerError
		var httpErr HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
		}

		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
