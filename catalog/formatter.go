package catalog

import (
	"fmt"
	"strings"

	"github.com/s0up4200/reelshelf/omdb"
)

// FormatOptions contains options for formatting output
type FormatOptions struct {
	ShowDetails bool
	// Movies overrides the state's movies, e.g. after a display filter
	Movies []omdb.MovieRecord
}

// ConsoleFormatter provides console output formatting for a catalog
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatCatalog renders the featured movie followed by the catalog listing
func (f *ConsoleFormatter) FormatCatalog(state CatalogState, options FormatOptions) string {
	movies := state.Movies
	if options.Movies != nil {
		movies = options.Movies
	}

	var sb strings.Builder

	if state.Featured != nil {
		f.formatFeatured(&sb, *state.Featured)
	}

	if state.Error != "" {
		fmt.Fprintf(&sb, "\n⚠  %s\n", state.Error)
	}

	if len(movies) == 0 {
		if state.Error == "" {
			sb.WriteString("\nNo movies found\nTry searching for a different movie title\n")
		}
		return sb.String()
	}

	title := "Popular Movies"
	if state.Mode == ModeSearch {
		title = fmt.Sprintf("Results for %q", state.Query)
	}
	fmt.Fprintf(&sb, "\n%s (%d", title, len(movies))
	if state.HasMore {
		sb.WriteString("+")
	}
	sb.WriteString("):\n\n")

	for i, movie := range movies {
		isLast := i == len(movies)-1
		prefix := "\u251c"
		if isLast {
			prefix = "\u2570"
		}

		fmt.Fprintf(&sb, "%s\u2500\u2500 %s (%s)\n", prefix, movie.Title, movie.Year)

		indent := "\u2502   "
		if isLast {
			indent = "    "
		}

		fmt.Fprintf(&sb, "%s⭐ %s | %s\n", indent, formatRating(movie), movie.PrimaryGenre())

		if options.ShowDetails {
			if movie.Runtime != "" {
				fmt.Fprintf(&sb, "%sRuntime: %s\n", indent, movie.Runtime)
			}
			if len(movie.Genre) > 1 {
				fmt.Fprintf(&sb, "%sGenres: %s\n", indent, strings.Join(movie.Genre, ", "))
			}
			fmt.Fprintf(&sb, "%sPoster: %s\n", indent, movie.PosterURL)
		}

		if !isLast {
			sb.WriteString("\u2502\n")
		}
	}

	if state.HasMore {
		sb.WriteString("\nMore results available.\n")
	}

	return sb.String()
}

func (f *ConsoleFormatter) formatFeatured(sb *strings.Builder, movie omdb.MovieRecord) {
	fmt.Fprintf(sb, "\n★ %s\n", movie.Title)

	meta := []string{movie.Year}
	if movie.Runtime != "" {
		meta = append(meta, movie.Runtime)
	} else {
		meta = append(meta, "N/A")
	}
	fmt.Fprintf(sb, "  %s\n", strings.Join(meta, " | "))

	// Hero block shows at most three genres
	if len(movie.Genre) > 0 {
		genres := movie.Genre
		if len(genres) > 3 {
			genres = genres[:3]
		}
		fmt.Fprintf(sb, "  %s\n", strings.Join(genres, " · "))
	}

	plot := movie.Plot
	if plot == "" || plot == "N/A" {
		plot = "No plot available"
	}
	fmt.Fprintf(sb, "  %s\n", plot)
}

func formatRating(movie omdb.MovieRecord) string {
	if !movie.HasRating() {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", movie.Rating)
}
