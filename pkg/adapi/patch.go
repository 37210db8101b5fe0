package adapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PatchAccountUserProfile applies a partial update to one account user
// profile and returns the server's post-update representation. The response
// does not carry the routing profile ID, so it is re-attached from the
// argument.
func (a *API) PatchAccountUserProfile(ctx context.Context, profileID, accountUserProfileID int64, patch AccountUserProfilePatch) (AccountUserProfile, error) {
	endpoint := fmt.Sprintf("/userprofiles/%d/accountUserProfiles/%d", profileID, accountUserProfileID)

	resp, err := a.transport.Patch(ctx, endpoint, patch)
	if err != nil {
		return AccountUserProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return AccountUserProfile{}, fmt.Errorf("patch account user profile %d: status %d: %s", accountUserProfileID, resp.StatusCode, body)
	}

	var updated AccountUserProfile
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return AccountUserProfile{}, fmt.Errorf("decode patch response: %w", err)
	}
	updated.ProfileID = profileID

	a.logger.Debug().
		Int64("account_user_profile_id", updated.ID).
		Int64("profile_id", profileID).
		Msg("Account user profile patched")

	return updated, nil
}
