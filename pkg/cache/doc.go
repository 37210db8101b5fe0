// Package cache provides response caching for ad-platform list calls with a
// Redis backend and ETag support for conditional requests.
//
// List endpoints change rarely relative to how often bulk jobs read them, so
// GET responses are cached under a deterministic key built from the endpoint
// path, query parameters, and the calling profile. Entries respect the
// server's Expires header and carry the ETag so a later request can be made
// conditional (If-None-Match); a 304 answer serves the cached body and only
// refreshes the TTL.
//
// PATCH responses are never cached.
package cache
