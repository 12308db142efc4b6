package gitlog

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParseAll parses independent log chunks in parallel, one Parser per chunk.
// Results are returned in chunk order.
func ParseAll(ctx context.Context, chunks []string, opts ...Option) ([][]Commit, error) {
	results := make([][]Commit, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Parse(chunk, opts...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
