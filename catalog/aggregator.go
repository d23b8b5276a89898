package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/reelshelf/omdb"
)

// DefaultBatchSize is the number of lookups issued concurrently per batch
const DefaultBatchSize = 10

// Progress is published after every settled batch
type Progress struct {
	// Batch is the zero-based index of the batch that just settled
	Batch   int
	Batches int
	// Admitted holds the records this batch contributed, in input order
	Admitted []omdb.MovieRecord
	// Catalog is the running catalog including this batch. It is only valid
	// for the duration of the publish call.
	Catalog  []omdb.MovieRecord
	Featured *omdb.MovieRecord
}

// Result summarises a finished aggregation run
type Result struct {
	Catalog  []omdb.MovieRecord
	Featured *omdb.MovieRecord
	Batches  int
	Failed   int
	Rejected int
}

// Aggregator fetches a fixed title list in sequential, bounded batches
type Aggregator struct {
	fetcher   Fetcher
	batchSize int
	logger    zerolog.Logger
}

// NewAggregator creates an Aggregator; a non-positive batchSize uses DefaultBatchSize
func NewAggregator(fetcher Fetcher, batchSize int, logger zerolog.Logger) *Aggregator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Aggregator{
		fetcher:   fetcher,
		batchSize: batchSize,
		logger:    logger,
	}
}

// BatchSize returns the configured batch size
func (a *Aggregator) BatchSize() int {
	return a.batchSize
}

// lookup is the settled outcome of one fetch
type lookup struct {
	record omdb.MovieRecord
	err    error
}

// Run processes titles batch by batch. All lookups of a batch run
// concurrently and the next batch starts only once every one of them settled.
// publish is called after each batch; returning false stops the run early.
// A batch in which every lookup failed aborts the run with a *BatchError.
func (a *Aggregator) Run(ctx context.Context, titles []string, publish func(Progress) bool) (Result, error) {
	batches := splitBatches(titles, a.batchSize)
	result := Result{Batches: len(batches)}

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcomes := a.runBatch(ctx, batch, func(ctx context.Context, title string) (omdb.MovieRecord, error) {
			return a.fetcher.FetchByTitle(ctx, title)
		})

		admitted, failed, rejected, err := settle(outcomes)
		result.Failed += failed
		result.Rejected += rejected
		if err != nil {
			a.logger.Error().Err(err).Int("batch", i).Msg("Batch failed, aborting remaining batches")
			return result, &BatchError{Batch: i, Size: len(batch), Err: err}
		}

		result.Catalog = append(result.Catalog, admitted...)
		if result.Featured == nil && len(result.Catalog) > 0 {
			featured := result.Catalog[0]
			result.Featured = &featured
		}

		a.logger.Debug().
			Int("batch", i+1).
			Int("batches", len(batches)).
			Int("admitted", len(admitted)).
			Int("failed", failed).
			Int("rejected", rejected).
			Int("total", len(result.Catalog)).
			Msg("Batch settled")

		if publish != nil && !publish(Progress{
			Batch:    i,
			Batches:  len(batches),
			Admitted: admitted,
			Catalog:  result.Catalog,
			Featured: result.Featured,
		}) {
			a.logger.Debug().Int("batch", i+1).Msg("Run abandoned by subscriber")
			return result, nil
		}
	}

	return result, nil
}

// runBatch issues one lookup per key concurrently and waits for all of them.
// Outcomes are indexed like keys so completion order never leaks out.
func (a *Aggregator) runBatch(ctx context.Context, keys []string, fetch func(context.Context, string) (omdb.MovieRecord, error)) []lookup {
	outcomes := make([]lookup, len(keys))

	// Plain group: a failed lookup must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(a.batchSize)

	for i, key := range keys {
		g.Go(func() error {
			record, err := fetch(ctx, key)
			if err != nil {
				a.logger.Warn().
					Err(err).
					Str("key", key).
					Msg("Lookup failed, skipping")
			}
			outcomes[i] = lookup{record: record, err: err}
			return nil
		})
	}

	g.Wait()
	return outcomes
}

// settle filters outcomes down to admitted records in input order. It returns
// an error only when every lookup failed.
func settle(outcomes []lookup) (admitted []omdb.MovieRecord, failed, rejected int, err error) {
	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			errs = append(errs, o.err)
			continue
		}
		if !o.record.Admitted() {
			rejected++
			continue
		}
		admitted = append(admitted, o.record)
	}

	if len(outcomes) > 0 && failed == len(outcomes) {
		return nil, failed, rejected, errors.Join(errs...)
	}
	return admitted, failed, rejected, nil
}

func splitBatches(items []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
