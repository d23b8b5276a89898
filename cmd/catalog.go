package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/reelshelf/catalog"
	"github.com/s0up4200/reelshelf/omdb"
)

var (
	// Command flags
	filterExpr  string
	morePages   int
	showDetails bool
	lookupTitle string
	lookupID    string
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Load the curated catalog of popular movies",
	Long: `Load the curated list of popular titles in concurrent batches and show every
movie that has artwork available. The first available title is featured.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search movies by title",
	Long: `Search the Open Movie Database by title and show the matching movies that have
artwork available. Use --more to fetch additional pages of results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Show a single movie by title or IMDb id",
	Args:  cobra.NoArgs,
	RunE:  runLookup,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to OMDb",
	Long:  `Test the connection to the OMDb API and verify the configured API key.`,
	RunE:  runTest,
}

func init() {
	for _, c := range []*cobra.Command{browseCmd, searchCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "only show movies matching this expression")
		c.Flags().IntVarP(&morePages, "more", "m", 0, "load N additional pages after the first")
		c.Flags().BoolVar(&showDetails, "details", false, "show runtime, genres and poster for every movie")
	}

	lookupCmd.Flags().StringVarP(&lookupTitle, "title", "t", "", "movie title")
	lookupCmd.Flags().StringVarP(&lookupID, "id", "i", "", "IMDb id, e.g. tt0111161")
	lookupCmd.MarkFlagsOneRequired("title", "id")
	lookupCmd.MarkFlagsMutuallyExclusive("title", "id")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(testCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	filter, err := compileFilter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger.Info().Msg("Loading popular movies")

	if err := controller.LoadInitial(ctx); err != nil {
		printCatalog(filter)
		return err
	}

	if err := loadMorePages(cmd); err != nil {
		printCatalog(filter)
		return err
	}

	printCatalog(filter)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	filter, err := compileFilter()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query cannot be empty")
	}

	ctx := cmd.Context()
	logger.Info().Str("query", query).Msg("Searching movies")

	if err := controller.Search(ctx, query); err != nil {
		printCatalog(filter)
		return err
	}

	if err := loadMorePages(cmd); err != nil {
		printCatalog(filter)
		return err
	}

	printCatalog(filter)
	return nil
}

// loadMorePages requests up to --more pages, stopping once results run out
func loadMorePages(cmd *cobra.Command) error {
	for i := 0; i < morePages; i++ {
		if !controller.Snapshot().HasMore {
			logger.Debug().Int("loaded", i).Msg("No more results to load")
			return nil
		}
		if err := controller.LoadMore(cmd.Context()); err != nil {
			return err
		}
	}
	return nil
}

func compileFilter() (*catalog.Filter, error) {
	if filterExpr == "" {
		return nil, nil
	}
	filter, err := catalog.CompileFilter(filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return filter, nil
}

func printCatalog(filter *catalog.Filter) {
	state := controller.Snapshot()
	opts := catalog.FormatOptions{ShowDetails: showDetails}

	if filter != nil {
		opts.Movies = filter.Apply(state.Movies)
		if opts.Movies == nil {
			opts.Movies = []omdb.MovieRecord{}
		}
		logger.Info().
			Str("filter", filter.Expression()).
			Int("matched", len(opts.Movies)).
			Int("total", len(state.Movies)).
			Msg("Applied display filter")
	}

	fmt.Print(catalog.NewConsoleFormatter().FormatCatalog(state, opts))
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		movie omdb.MovieRecord
		err   error
	)
	if lookupID != "" {
		movie, err = omdbClient.FetchByID(ctx, lookupID)
	} else {
		movie, err = omdbClient.FetchByTitle(ctx, lookupTitle)
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if movie.Status != omdb.ResponseSuccess {
		fmt.Println(movie.Error)
		return nil
	}

	state := catalog.CatalogState{
		Movies:   []omdb.MovieRecord{movie},
		Featured: &movie,
		Mode:     catalog.ModeBrowse,
	}
	fmt.Print(catalog.NewConsoleFormatter().FormatCatalog(state, catalog.FormatOptions{ShowDetails: true}))

	if !movie.HasPoster() {
		fmt.Println("\nNo poster available; this movie is hidden from catalog listings.")
	}
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to OMDb at %s...\n", cfg.OMDb.URL)

	if err := omdbClient.TestConnection(cmd.Context()); err != nil {
		var apiErr *omdb.APIError
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.IsUnauthorized():
				return fmt.Errorf("OMDb rejected the API key: %w", err)
			case apiErr.IsRateLimited():
				return fmt.Errorf("OMDb request limit reached for this API key: %w", err)
			}
		}
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Println("✓ Connection successful!")

	fmt.Printf("\nCatalog Settings:\n")
	fmt.Printf("- Batch size: %d\n", cfg.Catalog.BatchSize)
	fmt.Printf("- Search limit: %d\n", cfg.Catalog.SearchLimit)
	fmt.Printf("- Page limit: %d\n", cfg.Catalog.PageLimit)
	if cfg.OMDb.RequestsPerSecond > 0 {
		fmt.Printf("- Request rate: %.1f/s (burst %d)\n", cfg.OMDb.RequestsPerSecond, cfg.OMDb.Burst)
	} else {
		fmt.Println("- Request rate: unlimited")
	}
	return nil
}
