package adapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cmtools/profilesync/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transport is the HTTP surface the API operations need. *client.Client
// satisfies it.
type Transport interface {
	Get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error)
	Patch(ctx context.Context, endpoint string, body any) (*http.Response, error)
}

// API exposes the ad-platform operations over a Transport.
type API struct {
	transport Transport
	pages     pagination.Config
	logger    zerolog.Logger
}

// New creates an API bound to a transport with the default page cap.
func New(transport Transport) *API {
	return &API{
		transport: transport,
		pages:     pagination.DefaultConfig(),
		logger:    log.With().Str("component", "adapi").Logger(),
	}
}

// listResource binds a list endpoint path to a decoder for the response
// property carrying its items. Each entity kind names that property
// differently, so the pair travels as one strategy value into the shared
// page fetcher.
type listResource[T any] struct {
	path   string
	decode func(data []byte) (items []T, nextPageToken string, err error)
}

// envelope builds a decoder from a response envelope projection.
func envelope[E any, T any](project func(E) ([]T, string)) func([]byte) ([]T, string, error) {
	return func(data []byte) ([]T, string, error) {
		var env E
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, "", fmt.Errorf("decode list response: %w", err)
		}
		items, token := project(env)
		return items, token, nil
	}
}

// pageFunc wraps a listResource into a pagination.PageFunc issuing exactly
// one GET per call.
func pageFunc[T any](transport Transport, res listResource[T]) pagination.PageFunc[T] {
	return func(ctx context.Context, params url.Values) (pagination.Page[T], error) {
		resp, err := transport.Get(ctx, res.path, params)
		if err != nil {
			return pagination.Page[T]{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return pagination.Page[T]{}, fmt.Errorf("list %s: status %d: %s", res.path, resp.StatusCode, body)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return pagination.Page[T]{}, fmt.Errorf("read list response: %w", err)
		}

		items, token, err := res.decode(data)
		if err != nil {
			return pagination.Page[T]{}, err
		}
		return pagination.Page[T]{Items: items, NextPageToken: token}, nil
	}
}

type userProfilesEnvelope struct {
	Items         []UserProfile `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
}

type accountsEnvelope struct {
	Accounts      []Account `json:"accounts"`
	NextPageToken string    `json:"nextPageToken"`
}

type userRolesEnvelope struct {
	UserRoles     []UserRole `json:"userRoles"`
	NextPageToken string     `json:"nextPageToken"`
}

type accountUserProfilesEnvelope struct {
	AccountUserProfiles []AccountUserProfile `json:"accountUserProfiles"`
	NextPageToken       string               `json:"nextPageToken"`
}

// ListUserProfiles returns every user profile the caller can see.
func (a *API) ListUserProfiles(ctx context.Context) ([]UserProfile, error) {
	res := listResource[UserProfile]{
		path: "/userprofiles",
		decode: envelope(func(e userProfilesEnvelope) ([]UserProfile, string) {
			return e.Items, e.NextPageToken
		}),
	}
	return pagination.FetchAll(ctx, a.pages, pageFunc(a.transport, res), nil)
}

// ListAccounts returns all accounts reachable from the given profile scope.
func (a *API) ListAccounts(ctx context.Context, profileID int64, params url.Values) ([]Account, error) {
	res := listResource[Account]{
		path: fmt.Sprintf("/userprofiles/%d/accounts", profileID),
		decode: envelope(func(e accountsEnvelope) ([]Account, string) {
			return e.Accounts, e.NextPageToken
		}),
	}
	return pagination.FetchAll(ctx, a.pages, pageFunc(a.transport, res), params)
}

// ListAccountRefs returns the minimal {id, name} projection of all accounts
// reachable from the given profile scope.
func (a *API) ListAccountRefs(ctx context.Context, profileID int64) ([]AccountRef, error) {
	res := listResource[Account]{
		path: fmt.Sprintf("/userprofiles/%d/accounts", profileID),
		decode: envelope(func(e accountsEnvelope) ([]Account, string) {
			return e.Accounts, e.NextPageToken
		}),
	}
	return pagination.FetchAllMapped(ctx, a.pages, pageFunc(a.transport, res), nil,
		func(acct Account) (AccountRef, error) {
			return AccountRef{ID: acct.ID, Name: acct.Name}, nil
		})
}

// ListUserRoles returns user roles in the given profile scope. Recognized
// params: searchString, subaccountId, accountUserRoleOnly.
func (a *API) ListUserRoles(ctx context.Context, profileID int64, params url.Values) ([]UserRole, error) {
	res := listResource[UserRole]{
		path: fmt.Sprintf("/userprofiles/%d/userRoles", profileID),
		decode: envelope(func(e userRolesEnvelope) ([]UserRole, string) {
			return e.UserRoles, e.NextPageToken
		}),
	}
	return pagination.FetchAll(ctx, a.pages, pageFunc(a.transport, res), params)
}

// ListAccountUserProfiles returns account user profiles in the given profile
// scope. Recognized params: searchString, subaccountId.
func (a *API) ListAccountUserProfiles(ctx context.Context, profileID int64, params url.Values) ([]AccountUserProfile, error) {
	res := listResource[AccountUserProfile]{
		path: fmt.Sprintf("/userprofiles/%d/accountUserProfiles", profileID),
		decode: envelope(func(e accountUserProfilesEnvelope) ([]AccountUserProfile, string) {
			return e.AccountUserProfiles, e.NextPageToken
		}),
	}
	return pagination.FetchAll(ctx, a.pages, pageFunc(a.transport, res), params)
}
