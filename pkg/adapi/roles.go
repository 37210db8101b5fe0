package adapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrRoleNotFound is returned when no user role matches a name exactly.
var ErrRoleNotFound = errors.New("user role not found")

// FindUserRoleByName resolves a role name to its ID within a profile scope.
// subaccountID zero means the parent account scope; the server is then asked
// for account-level roles only. The name filter is sent as searchString, but
// the server matches it as a substring, so the exact match happens here.
func (a *API) FindUserRoleByName(ctx context.Context, profileID int64, name string, subaccountID int64) (UserRole, error) {
	params := url.Values{}
	params.Set("searchString", name)
	if subaccountID == 0 {
		params.Set("accountUserRoleOnly", "true")
	} else {
		params.Set("subaccountId", strconv.FormatInt(subaccountID, 10))
	}

	roles, err := a.ListUserRoles(ctx, profileID, params)
	if err != nil {
		return UserRole{}, fmt.Errorf("find user role %q: %w", name, err)
	}

	for _, role := range roles {
		if role.Name == name {
			return role, nil
		}
	}
	return UserRole{}, fmt.Errorf("find user role %q in profile %d: %w", name, profileID, ErrRoleNotFound)
}
