package catalog

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation is rejected because another one is in flight
var ErrBusy = errors.New("catalog: operation already in flight")

// Messages placed in the state's error slot
const (
	msgFetchFailed    = "Failed to fetch movies. Please try again later."
	msgSearchFailed   = "Failed to search movies. Please try again later."
	msgLoadMoreFailed = "Failed to load more movies. Please try again later."
	msgNoMovies       = "No movies found"
)

// BatchError reports a batch in which every lookup failed
type BatchError struct {
	// Batch is the zero-based batch index
	Batch int
	// Size is the number of lookups in the batch
	Size int
	Err  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d: all %d lookups failed: %v", e.Batch, e.Size, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
