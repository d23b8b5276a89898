package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/reelshelf/omdb"
)

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		n     int
		size  int
		sizes []int
	}{
		{n: 0, size: 10, sizes: nil},
		{n: 10, size: 10, sizes: []int{10}},
		{n: 23, size: 10, sizes: []int{10, 10, 3}},
		{n: 5, size: 2, sizes: []int{2, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d by %d", tt.n, tt.size), func(t *testing.T) {
			items := make([]string, tt.n)
			for i := range items {
				items[i] = strconv.Itoa(i)
			}
			var sizes []int
			for _, b := range splitBatches(items, tt.size) {
				sizes = append(sizes, len(b))
			}
			assert.Equal(t, tt.sizes, sizes)
		})
	}
}

func TestAggregatorRunsSequentialBatches(t *testing.T) {
	fetcher := newFakeFetcher()
	titles := fetcher.addTitles(23)

	// Drop a few entries so the filtered sub-sequence differs from the input
	delete(fetcher.byTitle, "Title 03")
	noPoster := fetcher.byTitle["Title 11"]
	noPoster.PosterURL = "N/A"
	fetcher.byTitle["Title 11"] = noPoster
	fetcher.titleErrs["Title 21"] = errNetwork

	// Earlier titles finish last so completion order is the reverse of input order
	fetcher.delay = func(key string) time.Duration {
		var i int
		fmt.Sscanf(key, "Title %d", &i)
		return time.Duration(10-i%10) * time.Millisecond
	}

	agg := NewAggregator(fetcher, 10, zerolog.Nop())

	var (
		batchSizes []int
		lengths    []int
		startedAt  []int
	)
	result, err := agg.Run(context.Background(), titles, func(p Progress) bool {
		titleCalls, _, _ := fetcher.calls()
		startedAt = append(startedAt, len(titleCalls))
		batchSizes = append(batchSizes, p.Batches)
		lengths = append(lengths, len(p.Catalog))
		return true
	})
	require.NoError(t, err)

	// Three publishes, and no lookup of batch k+1 started before batch k was published
	assert.Equal(t, []int{10, 20, 23}, startedAt)
	assert.Equal(t, []int{3, 3, 3}, batchSizes)
	assert.Equal(t, []int{9, 18, 20}, lengths)
	assert.LessOrEqual(t, fetcher.peak(), 10)

	var want []string
	for i := 0; i < 23; i++ {
		if i == 3 || i == 11 || i == 21 {
			continue
		}
		want = append(want, fmt.Sprintf("tt%02d", i))
	}
	assert.Equal(t, want, recordIDs(result.Catalog))
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Rejected)
	require.NotNil(t, result.Featured)
	assert.Equal(t, "tt00", result.Featured.ID)
}

func TestAggregatorFeaturedIsFirstAdmitted(t *testing.T) {
	fetcher := newFakeFetcher()
	titles := fetcher.addTitles(15)

	// Nothing in the first batch survives
	for i := 0; i < 10; i++ {
		delete(fetcher.byTitle, titles[i])
	}

	agg := NewAggregator(fetcher, 10, zerolog.Nop())

	var featured []*omdb.MovieRecord
	result, err := agg.Run(context.Background(), titles, func(p Progress) bool {
		featured = append(featured, p.Featured)
		return true
	})
	require.NoError(t, err)

	require.Len(t, featured, 2)
	assert.Nil(t, featured[0])
	require.NotNil(t, featured[1])
	assert.Equal(t, "tt10", featured[1].ID)
	assert.Equal(t, "tt10", result.Featured.ID)
}

func TestAggregatorAbortsOnBatchFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	titles := fetcher.addTitles(25)
	for _, title := range titles[10:20] {
		fetcher.titleErrs[title] = errNetwork
	}

	agg := NewAggregator(fetcher, 10, zerolog.Nop())

	var published int
	result, err := agg.Run(context.Background(), titles, func(p Progress) bool {
		published++
		return true
	})
	require.Error(t, err)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 1, batchErr.Batch)
	assert.Equal(t, 10, batchErr.Size)
	assert.ErrorIs(t, err, errNetwork)

	// The first batch stays published and the third never starts
	assert.Equal(t, 1, published)
	assert.Len(t, result.Catalog, 10)
	titleCalls, _, _ := fetcher.calls()
	assert.Len(t, titleCalls, 20)
}

func TestAggregatorStopsWhenSubscriberDeclines(t *testing.T) {
	fetcher := newFakeFetcher()
	titles := fetcher.addTitles(30)

	agg := NewAggregator(fetcher, 10, zerolog.Nop())
	_, err := agg.Run(context.Background(), titles, func(p Progress) bool {
		return false
	})
	require.NoError(t, err)

	titleCalls, _, _ := fetcher.calls()
	assert.Len(t, titleCalls, 10)
}

func TestAggregatorHonoursCancellation(t *testing.T) {
	fetcher := newFakeFetcher()
	titles := fetcher.addTitles(20)

	ctx, cancel := context.WithCancel(context.Background())
	agg := NewAggregator(fetcher, 10, zerolog.Nop())
	_, err := agg.Run(ctx, titles, func(p Progress) bool {
		cancel()
		return true
	})
	assert.ErrorIs(t, err, context.Canceled)

	titleCalls, _, _ := fetcher.calls()
	assert.Len(t, titleCalls, 10)
}

func TestNewAggregatorDefaultBatchSize(t *testing.T) {
	agg := NewAggregator(newFakeFetcher(), 0, zerolog.Nop())
	assert.Equal(t, DefaultBatchSize, agg.BatchSize())
}
