package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/s0up4200/reelshelf/catalog"
	"github.com/s0up4200/reelshelf/config"
	"github.com/s0up4200/reelshelf/omdb"
)

var (
	cfgFile    string
	logLevel   string
	cfg        *config.Config
	logger     zerolog.Logger
	omdbClient *omdb.Client
	controller *catalog.Controller
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reelshelf",
	Short: "Browse and search a movie catalog built from the OMDb API",
	Long: `reelshelf builds a movie catalog from the Open Movie Database. It can load a
curated list of popular titles, search by title, and page through additional
results, showing only movies that have artwork available.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override log level from command line if specified
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create OMDb client
	omdbClient, err = omdb.NewClient(cfg.OMDb.URL, cfg.OMDb.APIKey, logger,
		omdb.WithTimeout(cfg.OMDb.Timeout),
		omdb.WithRateLimit(rate.Limit(cfg.OMDb.RequestsPerSecond), cfg.OMDb.Burst),
	)
	if err != nil {
		return fmt.Errorf("failed to create OMDb client: %w", err)
	}

	opts := []catalog.ControllerOption{
		catalog.WithBatchSize(cfg.Catalog.BatchSize),
		catalog.WithSearchLimit(cfg.Catalog.SearchLimit),
		catalog.WithPageLimit(cfg.Catalog.PageLimit),
		catalog.WithFallbackQuery(cfg.Catalog.FallbackQuery),
		catalog.WithObserver(logProgress),
	}

	if cfg.Catalog.TitlesFile != "" {
		titles, err := catalog.LoadTitles(afero.NewOsFs(), cfg.Catalog.TitlesFile)
		if err != nil {
			return fmt.Errorf("failed to load titles: %w", err)
		}
		logger.Debug().Str("file", cfg.Catalog.TitlesFile).Int("titles", len(titles)).Msg("Using custom title list")
		opts = append(opts, catalog.WithTitles(titles))
	}

	controller = catalog.NewController(omdbClient, logger, opts...)

	return nil
}

// logProgress reports every catalog state change at debug level
func logProgress(state catalog.CatalogState) {
	event := logger.Debug().
		Str("mode", string(state.Mode)).
		Int("movies", len(state.Movies)).
		Int("page", state.Page).
		Bool("loading", state.Loading).
		Bool("has_more", state.HasMore)
	if state.Error != "" {
		event = event.Str("error", state.Error)
	}
	event.Msg("Catalog updated")
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stderr

	// Console format
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
		}
	}

	// Log file always receives JSON
	if cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		output = zerolog.MultiLevelWriter(output, fileWriter)
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
