// Package redis connects to a Redis server and exposes it as a cache.Store.
//
// The package wraps the go-redis client and adds:
//
//   - Connect, which retries the initial ping using the supplied Config.
//   - Store, a cache.Store implementation whose SetMulti runs in a single
//     MULTI/EXEC transaction.
//   - Healthcheck, a probe for the readiness endpoint.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, redis.WithKeyPrefix(cfg.KeyPrefix))
//	profiles := cache.NewNamespace[reviews.Profile](store, "profile", time.Hour)
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady, ErrStoreOperation and friends) wrap the
// underlying go-redis errors with errors.Join.
package redis
