package catalog

import "github.com/s0up4200/reelshelf/omdb"

// Mode tells where the catalog's contents came from
type Mode string

const (
	// ModeBrowse means the catalog was built from the curated title list
	ModeBrowse Mode = "browse"
	// ModeSearch means the catalog was built from a user query
	ModeSearch Mode = "search"
)

// CatalogState is the catalog together with its pagination bookkeeping
type CatalogState struct {
	Movies   []omdb.MovieRecord
	Featured *omdb.MovieRecord

	Page    int
	HasMore bool
	Mode    Mode
	Query   string

	Loading bool
	Error   string

	// Generation increments whenever the catalog is reset
	Generation uint64
}

// Clone returns a deep copy that shares nothing with s
func (s CatalogState) Clone() CatalogState {
	out := s
	out.Movies = cloneRecords(s.Movies)
	if s.Featured != nil {
		f := cloneRecord(*s.Featured)
		out.Featured = &f
	}
	return out
}

func cloneRecords(in []omdb.MovieRecord) []omdb.MovieRecord {
	if in == nil {
		return nil
	}
	out := make([]omdb.MovieRecord, len(in))
	for i := range in {
		out[i] = cloneRecord(in[i])
	}
	return out
}

func cloneRecord(m omdb.MovieRecord) omdb.MovieRecord {
	if m.Genre != nil {
		m.Genre = append([]string(nil), m.Genre...)
	}
	return m
}
