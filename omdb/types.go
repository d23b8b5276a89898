package omdb

import (
	"strconv"
	"strings"

	"github.com/s0up4200/reelshelf/poster"
)

// notAvailable is how OMDb spells a missing field value
const notAvailable = "N/A"

// ResponseStatus is the success/failure tag the API attaches to every answer
type ResponseStatus int

const (
	// ResponseFailure marks a lookup the API answered with Response "False"
	ResponseFailure ResponseStatus = iota
	// ResponseSuccess marks a lookup that returned a record
	ResponseSuccess
)

// String returns the wire spelling of a ResponseStatus
func (s ResponseStatus) String() string {
	if s == ResponseSuccess {
		return "True"
	}
	return "False"
}

// MovieRecord is a single title as returned by a detail lookup
type MovieRecord struct {
	ID        string
	Title     string
	Year      string
	PosterURL string
	Genre     []string
	Plot      string
	Runtime   string
	// Rating is the IMDb rating; 0 means the API had none
	Rating float64
	Status ResponseStatus
	// Error holds the API message for failed lookups
	Error string
}

// HasRating reports whether the record carries an IMDb rating
func (m MovieRecord) HasRating() bool {
	return m.Rating > 0
}

// HasPoster reports whether the record has a usable poster URL
func (m MovieRecord) HasPoster() bool {
	return poster.IsAvailable(m.PosterURL)
}

// Admitted reports whether the record may enter a catalog
func (m MovieRecord) Admitted() bool {
	return m.Status == ResponseSuccess && m.HasPoster()
}

// PrimaryGenre returns the first listed genre, or "Movie" when none is known
func (m MovieRecord) PrimaryGenre() string {
	if len(m.Genre) == 0 {
		return "Movie"
	}
	return m.Genre[0]
}

// SearchItem is a stub from a search page; it needs a FetchByID for full detail
type SearchItem struct {
	ID     string
	Title  string
	Year   string
	Type   string
	Poster string
}

// SearchResult is one page of search results
type SearchResult struct {
	Success      bool
	Error        string
	TotalResults int
	Items        []SearchItem
}

// IDs returns the item ids in result order, capped at limit when limit > 0
func (r *SearchResult) IDs(limit int) []string {
	items := r.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

//
// Wire types
//

type detailsResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

type searchResponse struct {
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// toRecord converts a detail response. Poster normalization happens here so
// every successful record leaves the package with its final poster URL.
func (d *detailsResponse) toRecord() MovieRecord {
	if !strings.EqualFold(d.Response, "True") {
		msg := d.Error
		if msg == "" {
			msg = "Movie not found!"
		}
		return MovieRecord{
			ID:     d.ImdbID,
			Title:  d.Title,
			Status: ResponseFailure,
			Error:  msg,
		}
	}

	return MovieRecord{
		ID:        d.ImdbID,
		Title:     d.Title,
		Year:      d.Year,
		PosterURL: poster.Normalize(d.Poster),
		Genre:     parseGenres(d.Genre),
		Plot:      d.Plot,
		Runtime:   d.Runtime,
		Rating:    parseRating(d.ImdbRating),
		Status:    ResponseSuccess,
	}
}

func (s *searchResponse) toResult() *SearchResult {
	result := &SearchResult{
		Success:      strings.EqualFold(s.Response, "True"),
		Error:        s.Error,
		TotalResults: parseInt(s.TotalResults),
	}
	if !result.Success {
		return result
	}

	result.Items = make([]SearchItem, 0, len(s.Search))
	for _, item := range s.Search {
		result.Items = append(result.Items, SearchItem{
			ID:     item.ImdbID,
			Title:  item.Title,
			Year:   item.Year,
			Type:   item.Type,
			Poster: item.Poster,
		})
	}
	return result
}

func parseGenres(s string) []string {
	if s == "" || s == notAvailable {
		return nil
	}
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

func parseRating(s string) float64 {
	if s == "" || s == notAvailable {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return v
}
