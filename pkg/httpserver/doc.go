// Package httpserver runs an http.Handler with graceful shutdown and exposes
// liveness and readiness probes.
//
// Server.Run listens on the configured address and blocks until the context
// is cancelled or the process receives SIGINT or SIGTERM, then drains
// in-flight requests within the shutdown timeout and runs the stop hooks.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//	    httpserver.WithLogger(log),
//	    httpserver.WithStopHook(func() { _ = redisClient.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// LivenessHandler always reports ALIVE. ReadinessHandler runs named checks
// such as a Redis ping and reports 503 with a JSON summary when any fails.
package httpserver
