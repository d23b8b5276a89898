package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/s0up4200/reelshelf/omdb"
)

// Defaults for the search and pagination limits
const (
	DefaultSearchLimit   = 20
	DefaultPageLimit     = 10
	DefaultFallbackQuery = "movie"
)

type operation int

const (
	opNone operation = iota
	opInitial
	opSearch
	opLoadMore
)

func (o operation) String() string {
	switch o {
	case opInitial:
		return "initial"
	case opSearch:
		return "search"
	case opLoadMore:
		return "load_more"
	default:
		return "none"
	}
}

// ticket identifies one started operation
type ticket struct {
	kind operation
	seq  uint64
	gen  uint64
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithTitles sets the curated list used by LoadInitial
func WithTitles(titles []string) ControllerOption {
	return func(c *Controller) {
		c.titles = append([]string(nil), titles...)
	}
}

// WithBatchSize sets the number of concurrent lookups per browse batch
func WithBatchSize(size int) ControllerOption {
	return func(c *Controller) {
		c.batchSize = size
	}
}

// WithSearchLimit sets how many candidates a fresh search fetches
func WithSearchLimit(limit int) ControllerOption {
	return func(c *Controller) {
		if limit > 0 {
			c.searchLimit = limit
		}
	}
}

// WithPageLimit sets how many candidates LoadMore fetches
func WithPageLimit(limit int) ControllerOption {
	return func(c *Controller) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// WithFallbackQuery sets the search term LoadMore uses in browse mode
func WithFallbackQuery(query string) ControllerOption {
	return func(c *Controller) {
		if query = strings.TrimSpace(query); query != "" {
			c.fallbackQuery = query
		}
	}
}

// WithObserver registers a callback receiving a snapshot after every state change
func WithObserver(fn func(CatalogState)) ControllerOption {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller owns the catalog and drives the initial load, fresh searches and
// incremental pages. At most one operation runs at a time, except that a
// search may supersede an initial load; results from a superseded operation
// are discarded.
type Controller struct {
	fetcher       Fetcher
	aggregator    *Aggregator
	logger        zerolog.Logger
	titles        []string
	batchSize     int
	searchLimit   int
	pageLimit     int
	fallbackQuery string
	observer      func(CatalogState)

	mu       sync.Mutex
	state    CatalogState
	inflight operation
	seq      uint64
}

// NewController creates a Controller backed by fetcher
func NewController(fetcher Fetcher, logger zerolog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		fetcher:       fetcher,
		logger:        logger,
		titles:        DefaultTitles(),
		batchSize:     DefaultBatchSize,
		searchLimit:   DefaultSearchLimit,
		pageLimit:     DefaultPageLimit,
		fallbackQuery: DefaultFallbackQuery,
		state: CatalogState{
			Page: 1,
			Mode: ModeBrowse,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.aggregator = NewAggregator(fetcher, c.batchSize, logger)
	return c
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// LoadInitial rebuilds the catalog from the curated title list. The catalog
// grows batch by batch; observers see every intermediate state.
func (c *Controller) LoadInitial(ctx context.Context) error {
	t, err := c.begin(opInitial, func(s *CatalogState) {
		s.Movies = nil
		s.Featured = nil
		s.Mode = ModeBrowse
		s.Query = ""
		s.Page = 1
		s.HasMore = false
		s.Error = ""
	})
	if err != nil {
		return err
	}
	log := c.opLogger(t)
	log.Info().Int("titles", len(c.titles)).Int("batch_size", c.aggregator.BatchSize()).Msg("Loading curated titles")

	result, runErr := c.aggregator.Run(ctx, c.titles, func(p Progress) bool {
		return c.apply(t, func(s *CatalogState) {
			s.Movies = cloneRecords(p.Catalog)
			s.Featured = clonePtr(p.Featured)
		})
	})

	c.finish(t, func(s *CatalogState) {
		if runErr != nil {
			s.Error = msgFetchFailed
			s.HasMore = false
			return
		}
		s.Error = ""
		s.HasMore = len(s.Movies) > 0
	})

	if runErr != nil {
		log.Error().Err(runErr).Msg("Initial load failed")
		return fmt.Errorf("initial load: %w", runErr)
	}

	log.Info().
		Int("admitted", len(result.Catalog)).
		Int("failed", result.Failed).
		Int("rejected", result.Rejected).
		Msg("Initial load finished")
	return nil
}

// Search replaces the catalog with the detail records of the first page of
// matches for query. An empty query is ignored.
func (c *Controller) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	t, err := c.begin(opSearch, nil)
	if err != nil {
		return err
	}
	log := c.opLogger(t).With().Str("query", query).Logger()
	log.Info().Msg("Searching")

	result, err := c.fetcher.Search(ctx, query, 1)
	if err != nil {
		c.finish(t, func(s *CatalogState) {
			s.Error = msgSearchFailed
		})
		log.Error().Err(err).Msg("Search failed")
		return fmt.Errorf("search %q: %w", query, err)
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = msgNoMovies
		}
		c.finish(t, func(s *CatalogState) {
			s.Movies = nil
			s.Featured = nil
			s.Mode = ModeSearch
			s.Query = query
			s.Page = 1
			s.HasMore = false
			s.Error = msg
		})
		log.Info().Str("reason", msg).Msg("Search returned no matches")
		return nil
	}

	admitted, err := c.fetchDetails(ctx, log, result.IDs(c.searchLimit))
	if err != nil {
		c.finish(t, func(s *CatalogState) {
			s.Error = msgSearchFailed
		})
		log.Error().Err(err).Msg("Search detail lookups failed")
		return fmt.Errorf("search %q: %w", query, err)
	}

	c.finish(t, func(s *CatalogState) {
		s.Movies = admitted
		s.Featured = nil
		if len(admitted) > 0 {
			featured := cloneRecord(admitted[0])
			s.Featured = &featured
		}
		s.Mode = ModeSearch
		s.Query = query
		s.Page = 1
		s.HasMore = len(admitted) >= c.searchLimit
		s.Error = ""
	})

	log.Info().Int("candidates", len(result.Items)).Int("admitted", len(admitted)).Msg("Search finished")
	return nil
}

// LoadMore appends the next search page to the catalog. It does nothing when
// no more results are expected and returns ErrBusy while another operation runs.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.state.HasMore {
		c.mu.Unlock()
		return nil
	}
	query := c.state.Query
	if c.state.Mode == ModeBrowse || query == "" {
		query = c.fallbackQuery
	}
	next := c.state.Page + 1
	t := c.startLocked(opLoadMore)
	snapshot := c.state.Clone()
	c.mu.Unlock()
	c.notify(snapshot)

	log := c.opLogger(t).With().Str("query", query).Int("page", next).Logger()
	log.Info().Msg("Loading more")

	result, err := c.fetcher.Search(ctx, query, next)
	if err != nil {
		c.finish(t, func(s *CatalogState) {
			s.Error = msgLoadMoreFailed
			s.HasMore = false
		})
		log.Error().Err(err).Msg("Load more failed")
		return fmt.Errorf("load more %q page %d: %w", query, next, err)
	}

	if !result.Success {
		c.finish(t, func(s *CatalogState) {
			s.HasMore = false
		})
		log.Info().Str("reason", result.Error).Msg("No more results")
		return nil
	}

	admitted, err := c.fetchDetails(ctx, log, result.IDs(c.pageLimit))
	if err != nil {
		c.finish(t, func(s *CatalogState) {
			s.Error = msgLoadMoreFailed
			s.HasMore = false
		})
		log.Error().Err(err).Msg("Load more detail lookups failed")
		return fmt.Errorf("load more %q page %d: %w", query, next, err)
	}

	c.finish(t, func(s *CatalogState) {
		s.Movies = append(s.Movies, admitted...)
		if s.Featured == nil && len(s.Movies) > 0 {
			featured := cloneRecord(s.Movies[0])
			s.Featured = &featured
		}
		s.Page = next
		s.HasMore = len(admitted) >= c.pageLimit
	})

	log.Info().Int("admitted", len(admitted)).Msg("Loaded more")
	return nil
}

// fetchDetails looks every id up concurrently and returns the admitted
// records in id order.
func (c *Controller) fetchDetails(ctx context.Context, log zerolog.Logger, ids []string) ([]omdb.MovieRecord, error) {
	mapper := iter.Mapper[string, lookup]{MaxGoroutines: max(len(ids), 1)}
	outcomes := mapper.Map(ids, func(id *string) lookup {
		record, err := c.fetcher.FetchByID(ctx, *id)
		if err != nil {
			log.Warn().Err(err).Str("id", *id).Msg("Detail lookup failed, skipping")
		}
		return lookup{record: record, err: err}
	})

	admitted, failed, rejected, err := settle(outcomes)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("requested", len(ids)).
		Int("admitted", len(admitted)).
		Int("failed", failed).
		Int("rejected", rejected).
		Msg("Detail lookups settled")
	return admitted, nil
}

// begin starts an operation, applying reset to the state when it is accepted.
func (c *Controller) begin(kind operation, reset func(*CatalogState)) (ticket, error) {
	c.mu.Lock()
	if c.state.Loading && !(kind == opSearch && c.inflight == opInitial) {
		c.mu.Unlock()
		return ticket{}, ErrBusy
	}
	if c.state.Loading {
		c.logger.Debug().Msg("Search supersedes initial load")
	}
	t := c.startLocked(kind)
	if reset != nil {
		reset(&c.state)
	}
	snapshot := c.state.Clone()
	c.mu.Unlock()

	c.notify(snapshot)
	return t, nil
}

// startLocked marks kind as in flight. Catalog-replacing operations open a
// new generation.
func (c *Controller) startLocked(kind operation) ticket {
	c.seq++
	if kind != opLoadMore {
		c.state.Generation++
	}
	c.inflight = kind
	c.state.Loading = true
	return ticket{kind: kind, seq: c.seq, gen: c.state.Generation}
}

// apply runs fn if t's generation is still current and reports whether it did.
func (c *Controller) apply(t ticket, fn func(*CatalogState)) bool {
	c.mu.Lock()
	if t.gen != c.state.Generation {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	snapshot := c.state.Clone()
	c.mu.Unlock()

	c.notify(snapshot)
	return true
}

// finish applies fn for a current operation and clears the loading flag if t
// is still the latest operation started.
func (c *Controller) finish(t ticket, fn func(*CatalogState)) {
	c.mu.Lock()
	changed := false
	if t.gen == c.state.Generation && fn != nil {
		fn(&c.state)
		changed = true
	} else if t.gen != c.state.Generation {
		c.logger.Debug().Str("op", t.kind.String()).Uint64("generation", t.gen).Msg("Discarding stale result")
	}
	if t.seq == c.seq {
		c.state.Loading = false
		c.inflight = opNone
		changed = true
	}
	snapshot := c.state.Clone()
	c.mu.Unlock()

	if changed {
		c.notify(snapshot)
	}
}

func (c *Controller) notify(s CatalogState) {
	if c.observer != nil {
		c.observer(s)
	}
}

func (c *Controller) opLogger(t ticket) zerolog.Logger {
	return c.logger.With().
		Str("op", t.kind.String()).
		Str("op_id", uuid.NewString()).
		Uint64("generation", t.gen).
		Logger()
}

func clonePtr(m *omdb.MovieRecord) *omdb.MovieRecord {
	if m == nil {
		return nil
	}
	r := cloneRecord(*m)
	return &r
}
