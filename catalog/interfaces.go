package catalog

import (
	"context"

	"github.com/s0up4200/reelshelf/omdb"
)

// Fetcher defines the metadata lookups the catalog needs
type Fetcher interface {
	// FetchByTitle performs a single title lookup
	FetchByTitle(ctx context.Context, title string) (omdb.MovieRecord, error)

	// FetchByID performs a single id lookup
	FetchByID(ctx context.Context, id string) (omdb.MovieRecord, error)

	// Search returns one page of search stubs
	Search(ctx context.Context, query string, page int) (*omdb.SearchResult, error)
}
