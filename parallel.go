package i18nbackend

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ReadMulti reads every (language, namespace) combination in parallel, at most
// Options.Workers at a time. The result is indexed by language, then namespace.
// It fails only when ctx ends; individual load failures yield empty resources.
func (b *Backend) ReadMulti(ctx context.Context, languages, namespaces []string) (map[string]map[string]Resource, error) {
	out := make(map[string]map[string]Resource, len(languages))
	for _, lng := range languages {
		out[lng] = make(map[string]Resource, len(namespaces))
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for _, lng := range languages {
		for _, ns := range namespaces {
			g.Go(func() error {
				res, err := b.Read(gctx, lng, ns)
				if err != nil {
					return err
				}
				mu.Lock()
				out[lng][ns] = res
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
