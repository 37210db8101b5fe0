// Package adapi exposes the ad-platform entities and operations used for
// bulk user-profile management: listing profiles, accounts, user roles, and
// account user profiles across parent scopes, and patching account user
// profiles in bulk.
//
// All list endpoints are cursor-paginated; the package flattens them with
// pkg/pagination. Each endpoint names its items property differently
// ("items", "accounts", "userRoles", "accountUserProfiles"), so every
// operation carries a small strategy value binding its path to a decoder for
// that property.
//
// Bulk activation/deactivation runs on pkg/batch: one patch call per record,
// per-record failure isolation, no retry. Failed records keep their pre-patch
// value; succeeded records come back with the server representation plus a
// locally attached Timestamp and the re-attached ProfileID routing scope.
package adapi
