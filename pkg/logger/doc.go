// Package logger builds log/slog loggers for the proxy.
//
// New returns a *slog.Logger writing JSON (or text) to stdout. Its handler is
// wrapped in a LogHandlerDecorator, which appends request-scoped attributes
// pulled from the context by ContextExtractor functions at log time:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, cfg.Name),
//	    logger.WithContextExtractors(requestid.LogExtractor),
//	)
//	log.InfoContext(ctx, "profile served", logger.Domain(domain), logger.License(token))
//
// The attr helpers keep key names consistent across packages. License masks
// the token so logs never carry a full license key.
package logger
