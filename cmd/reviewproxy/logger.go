package main

import (
	"log/slog"

	"github.com/wpbr/reviewproxy/internal/config"
	"github.com/wpbr/reviewproxy/pkg/clientip"
	"github.com/wpbr/reviewproxy/pkg/logger"
	"github.com/wpbr/reviewproxy/pkg/requestid"
)

func newLogger(app config.App) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LogExtractor, clientip.LogExtractor),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(app.LogLevel)))
	}
	l := logger.New(opts...)
	logger.SetAsDefault(l)
	return l
}
