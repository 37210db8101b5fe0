// Package batch applies the same partial update to many records addressed
// individually, isolating per-record failures.
package batch

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for batch patching.
var (
	patchRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adapi_patch_records_total",
		Help: "Total patched records by outcome",
	}, []string{"outcome"}) // "success", "failure"

	patchBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adapi_patch_batch_duration_seconds",
		Help:    "Duration of whole patch batches in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})
)

// PatchFunc issues exactly one patch call for a record and returns the
// server's updated representation.
type PatchFunc[K comparable, R any] func(ctx context.Context, key K, rec R) (R, error)

// Failure records one failed patch call.
type Failure[K comparable] struct {
	Key K
	Err error
}

// Result reports per-record outcomes of a PatchAll run.
type Result[K comparable] struct {
	Succeeded []K
	Failed    []Failure[K]
}

// AllSucceeded reports whether no record failed.
func (r Result[K]) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// FailedKeys returns the keys of all failed records.
func (r Result[K]) FailedKeys() []K {
	keys := make([]K, 0, len(r.Failed))
	for _, f := range r.Failed {
		keys = append(keys, f.Key)
	}
	return keys
}

// Config holds batch patcher configuration.
type Config struct {
	// MaxConcurrency is the number of in-flight patch calls. The default of 1
	// patches strictly sequentially.
	MaxConcurrency int
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 1}
}

// PatchAll issues one patch call per entry of recs and returns a fresh map of
// the same size: successfully patched entries carry the server's returned
// record, failed entries retain their prior value unchanged.
//
// A failed call is logged with the pre-patch record and processing continues;
// there is no early termination and no retry. Failures are additionally
// reported in the returned Result. Keys are processed in sorted order so runs
// are deterministic; with MaxConcurrency > 1 calls run on a bounded worker
// pool and only the effective map content is guaranteed.
func PatchAll[K cmp.Ordered, R any](ctx context.Context, cfg Config, recs map[K]R, patch PatchFunc[K, R], logger zerolog.Logger) (map[K]R, Result[K]) {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}

	start := time.Now()
	defer func() {
		patchBatchDuration.Observe(time.Since(start).Seconds())
	}()

	// Snapshot of keys; results go into a fresh map so the input is never
	// mutated mid-iteration.
	keys := make([]K, 0, len(recs))
	for key := range recs {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	out := make(map[K]R, len(recs))
	var result Result[K]

	if cfg.MaxConcurrency == 1 {
		for _, key := range keys {
			patchOne(ctx, key, recs[key], patch, logger, out, &result)
		}
		return out, result
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		keyQueue = make(chan K, len(keys))
	)

	for _, key := range keys {
		keyQueue <- key
	}
	close(keyQueue)

	for i := 0; i < cfg.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range keyQueue {
				localOut := make(map[K]R, 1)
				var localResult Result[K]
				patchOne(ctx, key, recs[key], patch, logger, localOut, &localResult)

				mu.Lock()
				out[key] = localOut[key]
				result.Succeeded = append(result.Succeeded, localResult.Succeeded...)
				result.Failed = append(result.Failed, localResult.Failed...)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return out, result
}

// patchOne applies a single patch call and records the outcome.
func patchOne[K cmp.Ordered, R any](ctx context.Context, key K, rec R, patch PatchFunc[K, R], logger zerolog.Logger, out map[K]R, result *Result[K]) {
	if err := ctx.Err(); err != nil {
		out[key] = rec
		result.Failed = append(result.Failed, Failure[K]{Key: key, Err: err})
		patchRecordsTotal.WithLabelValues("failure").Inc()
		return
	}

	updated, err := patch(ctx, key, rec)
	if err != nil {
		// Retain the pre-patch record; the failure is only visible in the
		// diagnostic log and the Result report.
		out[key] = rec
		result.Failed = append(result.Failed, Failure[K]{Key: key, Err: err})
		patchRecordsTotal.WithLabelValues("failure").Inc()

		logger.Warn().
			Err(err).
			Interface("record", rec).
			Interface("key", key).
			Msg("Patch failed - retaining prior record")
		return
	}

	out[key] = updated
	result.Succeeded = append(result.Succeeded, key)
	patchRecordsTotal.WithLabelValues("success").Inc()
}
