// Package async runs functions concurrently and collects their results
// through typed futures.
//
//	profile := async.Go(ctx, func(ctx context.Context) (Document, error) {
//	    return client.ProfileInfo(ctx, id)
//	})
//	links := async.Go(ctx, func(ctx context.Context) (Document, error) {
//	    return client.WebLinks(ctx, id)
//	})
//	docs, err := async.WaitAll(profile, links)
//
// WaitAll always waits for every future and reports the first error in
// argument order, which keeps results deterministic regardless of which
// goroutine finishes first.
package async
