package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/s0up4200/reelshelf/omdb"
)

var errNetwork = errors.New("connection refused")

// fakeFetcher implements Fetcher for testing
type fakeFetcher struct {
	mu sync.Mutex

	byTitle map[string]omdb.MovieRecord
	byID    map[string]omdb.MovieRecord
	// pages maps "query/page" to a search result
	pages map[string]*omdb.SearchResult

	titleErrs map[string]error
	idErrs    map[string]error
	searchErr error

	// delay returns how long a lookup for key should take
	delay func(key string) time.Duration
	// gate, when set, blocks lookups until it is closed
	gate chan struct{}
	// started is signalled once per lookup start when set
	started chan string

	// Track calls for verification
	titleCalls  []string
	idCalls     []string
	searchCalls []string
	inFlight    int
	maxInFlight int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		byTitle:   make(map[string]omdb.MovieRecord),
		byID:      make(map[string]omdb.MovieRecord),
		pages:     make(map[string]*omdb.SearchResult),
		titleErrs: make(map[string]error),
		idErrs:    make(map[string]error),
	}
}

func (f *fakeFetcher) enter(key string, calls *[]string) {
	f.mu.Lock()
	*calls = append(*calls, key)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	started, gate, delay := f.started, f.gate, f.delay
	f.mu.Unlock()

	if started != nil {
		started <- key
	}
	if gate != nil {
		<-gate
	}
	if delay != nil {
		time.Sleep(delay(key))
	}
}

func (f *fakeFetcher) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeFetcher) FetchByTitle(ctx context.Context, title string) (omdb.MovieRecord, error) {
	f.enter(title, &f.titleCalls)
	defer f.leave()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.titleErrs[title]; ok {
		return omdb.MovieRecord{}, err
	}
	if rec, ok := f.byTitle[title]; ok {
		return rec, nil
	}
	return omdb.MovieRecord{Status: omdb.ResponseFailure, Error: "Movie not found!"}, nil
}

func (f *fakeFetcher) FetchByID(ctx context.Context, id string) (omdb.MovieRecord, error) {
	f.enter(id, &f.idCalls)
	defer f.leave()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.idErrs[id]; ok {
		return omdb.MovieRecord{}, err
	}
	if rec, ok := f.byID[id]; ok {
		return rec, nil
	}
	return omdb.MovieRecord{Status: omdb.ResponseFailure, Error: "Incorrect IMDb ID."}, nil
}

func (f *fakeFetcher) Search(ctx context.Context, query string, page int) (*omdb.SearchResult, error) {
	key := fmt.Sprintf("%s/%d", query, page)
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, key)
	err := f.searchErr
	result, ok := f.pages[key]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return &omdb.SearchResult{Success: false, Error: "Movie not found!"}, nil
	}
	return result, nil
}

func (f *fakeFetcher) calls() (titles, ids, searches []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titleCalls...),
		append([]string(nil), f.idCalls...),
		append([]string(nil), f.searchCalls...)
}

func (f *fakeFetcher) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// movie builds an admitted record
func movie(id, title string) omdb.MovieRecord {
	return omdb.MovieRecord{
		ID:        id,
		Title:     title,
		Year:      "2001",
		PosterURL: "https://img.example.com/" + id + ".jpg",
		Genre:     []string{"Drama"},
		Rating:    7.5,
		Status:    omdb.ResponseSuccess,
	}
}

// addTitles registers n titles named "Title NN" with ids "ttNN"
func (f *fakeFetcher) addTitles(n int) []string {
	titles := make([]string, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("Title %02d", i)
		f.byTitle[title] = movie(fmt.Sprintf("tt%02d", i), title)
		titles = append(titles, title)
	}
	return titles
}

// addSearchPage registers a search page with n stubs whose ids are prefix+index.
// Every stub resolves to an admitted record.
func (f *fakeFetcher) addSearchPage(query string, page, n int, prefix string) []string {
	result := &omdb.SearchResult{Success: true, TotalResults: 1000}
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s%02d", prefix, i)
		result.Items = append(result.Items, omdb.SearchItem{ID: id, Title: id})
		f.byID[id] = movie(id, "Movie "+id)
		ids = append(ids, id)
	}
	f.pages[fmt.Sprintf("%s/%d", query, page)] = result
	return ids
}

func recordIDs(movies []omdb.MovieRecord) []string {
	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}
