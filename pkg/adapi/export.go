package adapi

import (
	"strconv"
	"time"
)

// AccountUserProfileFields is the canonical column order for tabular export
// of account user profiles.
var AccountUserProfileFields = []string{
	"id", "profileId", "name", "email",
	"accountId", "subaccountId", "userRoleId", "active", "timestamp",
}

// Row flattens the record into field-name keyed strings for tabular export.
// A zero Timestamp maps to an empty cell.
func (p AccountUserProfile) Row() map[string]string {
	ts := ""
	if !p.Timestamp.IsZero() {
		ts = p.Timestamp.Format(time.RFC3339)
	}
	return map[string]string{
		"id":           strconv.FormatInt(p.ID, 10),
		"profileId":    strconv.FormatInt(p.ProfileID, 10),
		"name":         p.Name,
		"email":        p.Email,
		"accountId":    strconv.FormatInt(p.AccountID, 10),
		"subaccountId": strconv.FormatInt(p.SubaccountID, 10),
		"userRoleId":   strconv.FormatInt(p.UserRoleID, 10),
		"active":       strconv.FormatBool(p.Active),
		"timestamp":    ts,
	}
}

// UserProfileFields is the canonical column order for tabular export of
// user profiles.
var UserProfileFields = []string{
	"profileId", "userName", "accountId", "accountName", "subAccountId",
}

// Row flattens the profile into field-name keyed strings for tabular export.
func (p UserProfile) Row() map[string]string {
	return map[string]string{
		"profileId":    strconv.FormatInt(p.ProfileID, 10),
		"userName":     p.UserName,
		"accountId":    strconv.FormatInt(p.AccountID, 10),
		"accountName":  p.AccountName,
		"subAccountId": strconv.FormatInt(p.SubaccountID, 10),
	}
}
