package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey represents a unique identifier for a cached ad API response.
type CacheKey struct {
	// Endpoint is the API path (e.g. "/userprofiles/123/accounts")
	Endpoint string

	// QueryParams are the query parameters (e.g. {"searchString": "Admin"})
	QueryParams url.Values

	// ProfileID is the calling user-profile scope (0 when the endpoint is
	// not profile-scoped)
	ProfileID int64
}

// String generates a deterministic cache key string.
// Format: adapi:endpoint:query1=val1:query2=val2:profile=123
//
// Example:
//
//	adapi:userprofiles/123/userRoles:searchString=Admin:profile=123
func (k CacheKey) String() string {
	parts := []string{"adapi"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	if k.ProfileID > 0 {
		parts = append(parts, fmt.Sprintf("profile=%d", k.ProfileID))
	}

	return strings.Join(parts, ":")
}
