package adapi

import (
	"context"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cmtools/profilesync/pkg/batch"
)

// BulkConfig holds bulk service configuration.
type BulkConfig struct {
	// ExcludedAccountIDs drops records belonging to these accounts during
	// collection, before any merge or patch.
	ExcludedAccountIDs []int64

	// Batch configures the patch runs.
	Batch batch.Config
}

// DefaultBulkConfig returns the default bulk configuration: no exclusions,
// strictly sequential patching.
func DefaultBulkConfig() BulkConfig {
	return BulkConfig{Batch: batch.DefaultConfig()}
}

// Bulk orchestrates collection and mass activation of account user profiles
// across multiple profile scopes.
type Bulk struct {
	api    *API
	config BulkConfig
	logger zerolog.Logger
}

// NewBulk creates a bulk service on top of an API.
func NewBulk(api *API, config BulkConfig) *Bulk {
	return &Bulk{
		api:    api,
		config: config,
		logger: log.With().Str("component", "bulk").Logger(),
	}
}

// CollectAccountUserProfiles lists account user profiles through every given
// profile scope and merges them into one collection keyed by record ID.
// Records seen through multiple scopes collapse to the last scope's copy.
// Records on excluded accounts are dropped. Any list fault aborts the whole
// collection.
func (b *Bulk) CollectAccountUserProfiles(ctx context.Context, profileIDs []int64, params url.Values) (map[int64]AccountUserProfile, error) {
	var merged map[int64]AccountUserProfile

	for _, profileID := range profileIDs {
		recs, err := b.api.ListAccountUserProfiles(ctx, profileID, params)
		if err != nil {
			return nil, err
		}

		kept := recs[:0:0]
		for _, rec := range recs {
			if slices.Contains(b.config.ExcludedAccountIDs, rec.AccountID) {
				continue
			}
			rec.ProfileID = profileID
			kept = append(kept, rec)
		}

		merged = batch.MergeByKey(merged, kept, func(r AccountUserProfile) int64 {
			return r.ID
		})
	}

	b.logger.Info().
		Int("profiles_scanned", len(profileIDs)).
		Int("records", len(merged)).
		Msg("Collected account user profiles")

	if merged == nil {
		merged = map[int64]AccountUserProfile{}
	}
	return merged, nil
}

// SetActive flips the active flag on every record of the collection, one
// patch call per record. Failed records keep their pre-patch value and only
// show up in the log and the returned report; succeeded records carry the
// server representation, the re-attached profile scope, and a fresh local
// Timestamp.
func (b *Bulk) SetActive(ctx context.Context, recs map[int64]AccountUserProfile, active bool) (map[int64]AccountUserProfile, batch.Result[int64]) {
	runID := uuid.New().String()
	logger := b.logger.With().Str("run_id", runID).Bool("active", active).Logger()

	logger.Info().Int("records", len(recs)).Msg("Starting bulk active patch")

	out, result := batch.PatchAll(ctx, b.config.Batch, recs,
		func(ctx context.Context, id int64, rec AccountUserProfile) (AccountUserProfile, error) {
			updated, err := b.api.PatchAccountUserProfile(ctx, rec.ProfileID, id, ActivePatch(active))
			if err != nil {
				return rec, err
			}
			updated.Timestamp = time.Now()
			return updated, nil
		}, logger)

	logger.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Bulk active patch complete")

	return out, result
}
