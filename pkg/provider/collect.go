package provider

import (
	"context"

	"github.com/dixieflatline76/PhotoSaver/pkg/metrics"
	"github.com/dixieflatline76/PhotoSaver/util/log"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrentFetches bounds how many sources are fetched at once.
const MaxConcurrentFetches = 4

// Collect fetches every source concurrently. A source that fails is logged and
// contributes no photos; it never aborts the others. Batches keep source order.
func Collect(ctx context.Context, sources []PhotoSource) []Batch {
	results := make([]Batch, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)

	for i, src := range sources {
		g.Go(func() error {
			photos, err := src.FetchPhotos(gctx)
			if err != nil {
				log.Printf("Source %s fetch failed: %v", src.Name(), err)
				photos = nil
			} else {
				log.Printf("Source %s returned %d photos.", src.Name(), len(photos))
			}
			metrics.SourcePhotos.WithLabelValues(src.Type()).Add(float64(len(photos)))
			results[i] = Batch{SourceType: src.Type(), Photos: photos}
			return nil
		})
	}
	_ = g.Wait()

	out := results[:0]
	for _, b := range results {
		if len(b.Photos) > 0 {
			out = append(out, b)
		}
	}
	return out
}
