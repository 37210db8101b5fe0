// Package ratelimit implements ad-platform quota tracking and request gating.
// It monitors the X-Rate-Limit-Remaining and X-Rate-Limit-Reset response
// headers to keep the client inside its per-project request quota.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeyRequestsRemaining = "adapi:rate_limit:requests_remaining"
	RedisKeyResetTimestamp    = "adapi:rate_limit:reset_timestamp"
	RedisKeyLastUpdate        = "adapi:rate_limit:last_update"
)

// Thresholds for quota decisions.
const (
	// QuotaThresholdCritical blocks all requests when the remaining quota
	// falls below this value, so a batch never burns the last requests
	// another consumer may need.
	QuotaThresholdCritical = 5

	// QuotaThresholdWarning applies throttling when the remaining quota
	// falls below this value.
	QuotaThresholdWarning = 20

	// QuotaThresholdHealthy indicates normal operation. At or above this
	// value no restrictions apply.
	QuotaThresholdHealthy = 50
)

// QuotaState represents the current ad-platform quota state.
// The state is shared across all client instances via Redis.
type QuotaState struct {
	// RequestsRemaining is the number of requests left in the current quota
	// window. Extracted from the X-Rate-Limit-Remaining header.
	RequestsRemaining int `json:"requests_remaining"`

	// ResetAt is the timestamp when the quota window resets.
	// Calculated from the X-Rate-Limit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last updated.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when RequestsRemaining >= QuotaThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *QuotaState) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < QuotaThresholdCritical
}

// NeedsThrottling returns true if requests should be throttled.
func (s *QuotaState) NeedsThrottling() bool {
	return s.RequestsRemaining < QuotaThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the quota window resets.
// Returns 0 if the reset time has already passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field from the current RequestsRemaining.
func (s *QuotaState) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= QuotaThresholdHealthy
}
