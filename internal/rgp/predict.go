package rgp

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"panrgp/pkg/domain"
)

// Prediction is the merged outcome of a run over a set of organisms.
type Prediction struct {
	Regions []domain.Region
	Scheme  NamingScheme
	// PerOrganism counts retained regions by organism ID.
	PerOrganism map[string]int
}

// PredictOptions tunes the worker pool.
type PredictOptions struct {
	// Threads bounds concurrently processed organisms; <1 means GOMAXPROCS.
	Threads int
	// OnOrganism, when set, is called after each organism completes. It may be
	// called from several goroutines at once.
	OnOrganism func(org domain.Organism, regions int)
}

// Predict computes regions for every organism, one task per organism. The
// naming scheme is decided once over the full dataset before any work starts.
// Cancellation is honored between organisms; a contig in progress always runs
// to completion. Regions are returned in organism, contig, then local id order.
func Predict(ctx context.Context, organisms []domain.Organism, fams Families, p Params, opts PredictOptions) (Prediction, error) {
	if err := p.Validate(); err != nil {
		return Prediction{}, err
	}
	threads := opts.Threads
	if threads < 1 {
		threads = runtime.GOMAXPROCS(0)
	}
	scheme := DetectNamingScheme(organisms)

	results := make([][]domain.Region, len(organisms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := range organisms {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			org := organisms[i]
			results[i] = OrganismRegions(org, fams, scheme, p)
			if opts.OnOrganism != nil {
				opts.OnOrganism(org, len(results[i]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Prediction{}, err
	}
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	out := Prediction{Scheme: scheme, PerOrganism: make(map[string]int, len(organisms))}
	for i, regions := range results {
		out.Regions = append(out.Regions, regions...)
		out.PerOrganism[organisms[i].ID] += len(regions)
	}
	return out, nil
}
