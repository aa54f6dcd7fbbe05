// Package pipeline orchestrates a full ingestion run: fan out to the source
// adapters, normalize what they return, and replace the dataset in one
// write.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reno-works/listings-cli/internal/model"
	"github.com/reno-works/listings-cli/internal/normalize"
	"github.com/reno-works/listings-cli/internal/provider"
	"github.com/reno-works/listings-cli/internal/store"
)

// Options configures a run.
type Options struct {
	// Providers selects registry adapters by name; empty means all of them.
	Providers []string
	// Concurrency caps how many providers fetch at once.
	Concurrency int
	// KeepOnEmpty leaves an existing non-empty dataset untouched when every
	// provider returns zero rows.
	KeepOnEmpty bool
}

// Engine runs the ingestion pipeline.
type Engine struct {
	registry   *provider.Registry
	normalizer *normalize.Normalizer
	listings   *store.ListingStore
	opts       Options
}

// New creates an engine over the given registry and dataset store.
func New(reg *provider.Registry, norm *normalize.Normalizer, listings *store.ListingStore, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Engine{registry: reg, normalizer: norm, listings: listings, opts: opts}
}

// fetchResult is one provider's contribution, kept per slot so the combined
// dataset follows registration order regardless of completion order.
type fetchResult struct {
	records   []model.Record
	fetchedAt time.Time
	err       error
}

// Run executes one full ingestion. A provider failure zeroes that provider's
// contribution and the run continues; the dataset write is all-or-nothing
// and happens only after every provider has finished.
func (e *Engine) Run(ctx context.Context, q model.Query) (*model.RunResult, error) {
	providers, err := e.registry.Select(e.opts.Providers)
	if err != nil {
		return nil, err
	}

	result := &model.RunResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.String("run_id", result.ID))
	log.Info("run started", zap.Int("providers", len(providers)))

	results := make([]fetchResult, len(providers))
	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, p := range providers {
		g.Go(func() error {
			records, fetchErr := p.Fetch(ctx, q)
			results[i] = fetchResult{
				records:   records,
				fetchedAt: time.Now().UTC(),
				err:       fetchErr,
			}
			if fetchErr != nil {
				log.Warn("provider failed",
					zap.String("provider", p.Name()),
					zap.Error(fetchErr),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	var listings []model.Listing
	for i, p := range providers {
		res := results[i]
		outcome := model.ProviderOutcome{Source: p.Source()}
		if res.err != nil {
			// A failed provider contributes nothing, even if it parsed some
			// cards before the failure.
			outcome.Error = res.err.Error()
			result.Providers = append(result.Providers, outcome)
			continue
		}
		for _, rec := range res.records {
			listings = append(listings, e.normalizer.Normalize(rec, p.Source(), res.fetchedAt))
		}
		outcome.Records = len(res.records)
		result.Providers = append(result.Providers, outcome)
	}
	result.Total = len(listings)

	if len(listings) == 0 && e.opts.KeepOnEmpty {
		existing, loadErr := e.listings.Load()
		if loadErr == nil && len(existing) > 0 {
			result.Elapsed = time.Since(result.StartedAt)
			result.Success = true
			log.Info("run produced no listings, keeping previous dataset",
				zap.Int("kept", len(existing)))
			return result, nil
		}
	}

	if err := e.listings.Replace(listings); err != nil {
		result.Elapsed = time.Since(result.StartedAt)
		return result, eris.Wrap(err, "pipeline: write dataset")
	}
	result.Written = true
	result.Success = true
	result.Elapsed = time.Since(result.StartedAt)

	log.Info("run finished",
		zap.Int("total", result.Total),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}
