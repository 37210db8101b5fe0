// Package pagination flattens cursor-paginated ad-platform list endpoints
// into full collections.
//
// The ad-platform API returns list results in pages: each response carries an
// items array plus an optional nextPageToken continuation cursor. FetchAll
// repeats the list call, threading the cursor through a cloned copy of the
// caller's query parameters, until the cursor is exhausted.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig()
//	accounts, err := pagination.FetchAll(ctx, cfg, fetchAccountsPage, params)
//
// The accumulator:
//   - Clones the base params once at entry; the caller's template is never
//     mutated
//   - Concatenates page items in arrival order
//   - Stops at an empty continuation cursor
//   - Enforces a hard cap of 10 pages (including the first) against runaway
//     cursors; reaching the cap truncates silently
//
// Filtering is deliberately not built in. Domain policy such as account
// exclusion lists belongs to the caller, applied after FetchAll returns.
package pagination
