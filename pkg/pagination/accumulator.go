// Package pagination provides cursor-based fetch-and-accumulate for paginated
// ad-platform list endpoints.
package pagination

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adapi_pages_fetched_total",
		Help: "Total number of list pages fetched",
	})

	paginationTruncationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adapi_pagination_truncations_total",
		Help: "Total number of list fetches truncated by the page cap",
	})
)

// pageTokenParam is the query parameter carrying the continuation cursor.
const pageTokenParam = "pageToken"

// DefaultMaxPages bounds runaway pagination. The cap counts the first page,
// so at most 10 list calls are made per FetchAll.
const DefaultMaxPages = 10

// Page is one response unit from a paginated list endpoint. An empty
// NextPageToken means end of results.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

// PageFunc wraps exactly one list call. Implementations must return an empty
// Items slice and an empty NextPageToken at the end of data.
type PageFunc[T any] func(ctx context.Context, params url.Values) (Page[T], error)

// Transform projects a raw item into its accumulated shape. A transform error
// aborts the whole fetch.
type Transform[T, U any] func(T) (U, error)

// Config holds accumulator configuration.
type Config struct {
	// MaxPages is the hard cap on list calls per fetch, including the first
	// page. Reaching the cap stops fetching silently instead of failing.
	MaxPages int
}

// DefaultConfig returns the default accumulator configuration.
func DefaultConfig() Config {
	return Config{MaxPages: DefaultMaxPages}
}

// FetchAll drives fetch until the continuation cursor is exhausted or the
// page cap is reached and returns the concatenation of all page items.
//
// The base params act as an immutable template: they are cloned at entry and
// the evolving pageToken is only ever set on copies. A fetch error aborts the
// whole operation with no partial results.
func FetchAll[T any](ctx context.Context, cfg Config, fetch PageFunc[T], base url.Values) ([]T, error) {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}

	start := time.Now()

	params := cloneValues(base)
	params.Del(pageTokenParam)

	var items []T
	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := fetch(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		items = append(items, result.Items...)
		pagesFetchedTotal.Inc()

		log.Debug().
			Int("page", page).
			Int("items", len(result.Items)).
			Int("accumulated", len(items)).
			Msg("Page fetched")

		if result.NextPageToken == "" {
			log.Debug().
				Int("pages", page).
				Int("items", len(items)).
				Dur("duration", time.Since(start)).
				Msg("Fetch complete")
			return items, nil
		}

		if page >= cfg.MaxPages {
			// Truncation is not an error; callers get no data-level signal.
			paginationTruncationsTotal.Inc()
			log.Warn().
				Int("max_pages", cfg.MaxPages).
				Int("items", len(items)).
				Msg("Page cap reached - stopping pagination")
			return items, nil
		}

		params = cloneValues(params)
		params.Set(pageTokenParam, result.NextPageToken)
	}
}

// FetchAllMapped is FetchAll with a per-item transform applied to every
// accumulated item, order preserved.
func FetchAllMapped[T, U any](ctx context.Context, cfg Config, fetch PageFunc[T], base url.Values, tr Transform[T, U]) ([]U, error) {
	raw, err := FetchAll(ctx, cfg, fetch, base)
	if err != nil {
		return nil, err
	}

	out := make([]U, 0, len(raw))
	for i, item := range raw {
		mapped, err := tr(item)
		if err != nil {
			return nil, fmt.Errorf("transform item %d: %w", i, err)
		}
		out = append(out, mapped)
	}
	return out, nil
}

// cloneValues deep-copies url.Values so the caller's template is never
// mutated.
func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}
