// Package runner fans the per-species resolution pipeline out over a
// fixed-width worker pool.
package runner

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verdant-bio/taxon-cli/internal/model"
	"github.com/verdant-bio/taxon-cli/internal/resolver"
)

// DefaultWorkers is the default pool width.
const DefaultWorkers = 3

// Pool runs independent per-species tasks with bounded parallelism. All
// tasks share one resolver (and through it one rate gate and one cache).
type Pool struct {
	resolver *resolver.Resolver
	width    int
}

// New builds a pool of the given width.
func New(r *resolver.Resolver, width int) *Pool {
	if width <= 0 {
		width = DefaultWorkers
	}
	return &Pool{resolver: r, width: width}
}

// Run resolves every species and returns one result per input record, in
// input order. Per-species failures are contained: a species that cannot
// be resolved gets its default status row and the run continues. Only
// context cancellation aborts the pool.
func (p *Pool) Run(ctx context.Context, species []model.SpeciesRecord) ([]model.ResolutionResult, error) {
	results := make([]model.ResolutionResult, len(species))

	zap.L().Info("resolving species",
		zap.Int("species", len(species)),
		zap.Int("workers", p.width),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.width)

	var resolved, unresolved atomic.Int64

	for i, rec := range species {
		i, rec := i, rec
		g.Go(func() error {
			res, err := p.resolver.ResolveSpecies(gctx, rec)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				zap.L().Error("species resolution failed",
					zap.String("species", rec.AcceptedName),
					zap.Error(err),
				)
				results[i] = model.Unresolved(rec.AcceptedName, "")
				unresolved.Add(1)
				return nil
			}

			results[i] = res
			if res.Resolved() {
				resolved.Add(1)
			} else {
				unresolved.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("resolution complete",
		zap.Int64("resolved", resolved.Load()),
		zap.Int64("unresolved", unresolved.Load()),
	)
	return results, nil
}
