package adapi

import (
	"time"
)

// UserProfile is a user profile visible to the caller. Most API calls are
// routed through a profile's ID (the scope identifier).
type UserProfile struct {
	ProfileID    int64  `json:"profileId,string"`
	UserName     string `json:"userName"`
	AccountID    int64  `json:"accountId,string"`
	AccountName  string `json:"accountName"`
	SubaccountID int64  `json:"subAccountId,string,omitempty"`
}

// Account is an advertiser account reachable from a user profile.
type Account struct {
	ID     int64  `json:"id,string"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// AccountRef is the minimal projection of an account used where only
// identity and display name matter.
type AccountRef struct {
	ID   int64
	Name string
}

// UserRole is a permission role defined on an account or subaccount.
type UserRole struct {
	ID              int64  `json:"id,string"`
	Name            string `json:"name"`
	AccountID       int64  `json:"accountId,string"`
	SubaccountID    int64  `json:"subaccountId,string,omitempty"`
	DefaultUserRole bool   `json:"defaultUserRole"`
}

// AccountUserProfile is a user's membership record on an account. This is
// the record bulk activate/deactivate operates on.
//
// ProfileID is the routing scope the record was listed through; the API
// does not echo it on patch responses, so the bulk layer re-attaches it.
// Timestamp is attached locally after a successful patch and is never sent
// to the API. A zero Timestamp therefore means the record was not touched
// by the last patch run.
type AccountUserProfile struct {
	ID           int64     `json:"id,string"`
	ProfileID    int64     `json:"profileId,string,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	AccountID    int64     `json:"accountId,string"`
	SubaccountID int64     `json:"subaccountId,string,omitempty"`
	UserRoleID   int64     `json:"userRoleId,string"`
	Active       bool      `json:"active"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}

// AccountUserProfilePatch is the partial-update body for an account user
// profile. Only non-nil fields are changed server-side.
type AccountUserProfilePatch struct {
	Active     *bool  `json:"active,omitempty"`
	UserRoleID *int64 `json:"userRoleId,string,omitempty"`
}

// ActivePatch builds a patch body that only flips the active flag.
func ActivePatch(active bool) AccountUserProfilePatch {
	return AccountUserProfilePatch{Active: &active}
}
