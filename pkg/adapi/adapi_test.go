package adapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeTransport routes Get/Patch to test-provided functions.
type fakeTransport struct {
	get   func(ctx context.Context, endpoint string, query url.Values) (*http.Response, error)
	patch func(ctx context.Context, endpoint string, body any) (*http.Response, error)
}

func (f *fakeTransport) Get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	return f.get(ctx, endpoint, query)
}

func (f *fakeTransport) Patch(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	return f.patch(ctx, endpoint, body)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestListUserProfiles_ConcatenatesPages(t *testing.T) {
	pages := map[string]string{
		"":    `{"items":[{"profileId":"1","userName":"alice"}],"nextPageToken":"p2"}`,
		"p2":  `{"items":[{"profileId":"2","userName":"bob"}],"nextPageToken":"p3"}`,
		"p3": `{"items":[{"profileId":"3","userName":"carol"}]}`,
	}
	var paths []string
	transport := &fakeTransport{
		get: func(_ context.Context, endpoint string, query url.Values) (*http.Response, error) {
			paths = append(paths, endpoint)
			body, ok := pages[query.Get("pageToken")]
			if !ok {
				t.Fatalf("unexpected pageToken %q", query.Get("pageToken"))
			}
			return jsonResponse(http.StatusOK, body), nil
		},
	}

	profiles, err := New(transport).ListUserProfiles(context.Background())
	if err != nil {
		t.Fatalf("ListUserProfiles() error = %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("got %d profiles, want 3", len(profiles))
	}
	if profiles[0].UserName != "alice" || profiles[2].UserName != "carol" {
		t.Errorf("unexpected order: %+v", profiles)
	}
	for _, p := range paths {
		if p != "/userprofiles" {
			t.Errorf("unexpected path %q", p)
		}
	}
}

func TestListAccountUserProfiles_DecodesEntityProperty(t *testing.T) {
	transport := &fakeTransport{
		get: func(_ context.Context, endpoint string, _ url.Values) (*http.Response, error) {
			if endpoint != "/userprofiles/7/accountUserProfiles" {
				t.Errorf("endpoint = %q", endpoint)
			}
			return jsonResponse(http.StatusOK,
				`{"accountUserProfiles":[{"id":"100","name":"dev","email":"dev@x.io","accountId":"9","userRoleId":"5","active":true}]}`), nil
		},
	}

	recs, err := New(transport).ListAccountUserProfiles(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("ListAccountUserProfiles() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.ID != 100 || rec.AccountID != 9 || rec.UserRoleID != 5 || !rec.Active {
		t.Errorf("decoded record = %+v", rec)
	}
	if !rec.Timestamp.IsZero() {
		t.Error("listed record should have zero Timestamp")
	}
}

func TestListAccountRefs_ProjectsIDAndName(t *testing.T) {
	transport := &fakeTransport{
		get: func(_ context.Context, _ string, _ url.Values) (*http.Response, error) {
			return jsonResponse(http.StatusOK,
				`{"accounts":[{"id":"1","name":"Acme","active":true},{"id":"2","name":"Umbrella","active":false}]}`), nil
		},
	}

	refs, err := New(transport).ListAccountRefs(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListAccountRefs() error = %v", err)
	}
	want := []AccountRef{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Umbrella"}}
	if len(refs) != len(want) {
		t.Fatalf("got %d refs, want %d", len(refs), len(want))
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("refs[%d] = %+v, want %+v", i, refs[i], want[i])
		}
	}
}

func TestList_NonOKStatusFails(t *testing.T) {
	transport := &fakeTransport{
		get: func(_ context.Context, _ string, _ url.Values) (*http.Response, error) {
			return jsonResponse(http.StatusForbidden, `{"error":"no access"}`), nil
		},
	}

	recs, err := New(transport).ListAccounts(context.Background(), 1, nil)
	if err == nil {
		t.Fatal("expected error on 403")
	}
	if recs != nil {
		t.Errorf("expected nil results on error, got %v", recs)
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Errorf("error should carry status: %v", err)
	}
}

func TestFindUserRoleByName(t *testing.T) {
	roleList := `{"userRoles":[
		{"id":"10","name":"Admin","accountId":"1"},
		{"id":"11","name":"Administrator","accountId":"1"}]}`

	tests := []struct {
		name         string
		roleName     string
		subaccountID int64
		wantID       int64
		wantErr      error
		wantParams   url.Values
	}{
		{
			name:     "exact match among fuzzy results",
			roleName: "Admin",
			wantID:   10,
			wantParams: url.Values{
				"searchString":        []string{"Admin"},
				"accountUserRoleOnly": []string{"true"},
			},
		},
		{
			name:     "no exact match despite fuzzy hits",
			roleName: "Admi",
			wantErr:  ErrRoleNotFound,
			wantParams: url.Values{
				"searchString":        []string{"Admi"},
				"accountUserRoleOnly": []string{"true"},
			},
		},
		{
			name:         "subaccount scope drops accountUserRoleOnly",
			roleName:     "Admin",
			subaccountID: 42,
			wantID:       10,
			wantParams: url.Values{
				"searchString": []string{"Admin"},
				"subaccountId": []string{"42"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotParams url.Values
			transport := &fakeTransport{
				get: func(_ context.Context, _ string, query url.Values) (*http.Response, error) {
					gotParams = query
					return jsonResponse(http.StatusOK, roleList), nil
				},
			}

			role, err := New(transport).FindUserRoleByName(context.Background(), 1, tt.roleName, tt.subaccountID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("FindUserRoleByName() error = %v", err)
				}
				if role.ID != tt.wantID {
					t.Errorf("role.ID = %d, want %d", role.ID, tt.wantID)
				}
			}

			for key, want := range tt.wantParams {
				if got := gotParams.Get(key); got != want[0] {
					t.Errorf("param %s = %q, want %q", key, got, want[0])
				}
			}
			// pageToken is managed by the accumulator; nothing else may leak in.
			for key := range gotParams {
				if key == "pageToken" {
					continue
				}
				if _, ok := tt.wantParams[key]; !ok {
					t.Errorf("unexpected param %s=%q", key, gotParams.Get(key))
				}
			}
		})
	}
}

func TestPatchAccountUserProfile_ReattachesProfileID(t *testing.T) {
	transport := &fakeTransport{
		patch: func(_ context.Context, endpoint string, body any) (*http.Response, error) {
			if endpoint != "/userprofiles/7/accountUserProfiles/100" {
				t.Errorf("endpoint = %q", endpoint)
			}
			patch, ok := body.(AccountUserProfilePatch)
			if !ok || patch.Active == nil || *patch.Active {
				t.Errorf("patch body = %+v", body)
			}
			// Response omits profileId, as the live API does.
			return jsonResponse(http.StatusOK,
				`{"id":"100","name":"dev","email":"dev@x.io","accountId":"9","userRoleId":"5","active":false}`), nil
		},
	}

	updated, err := New(transport).PatchAccountUserProfile(context.Background(), 7, 100, ActivePatch(false))
	if err != nil {
		t.Fatalf("PatchAccountUserProfile() error = %v", err)
	}
	if updated.ProfileID != 7 {
		t.Errorf("ProfileID = %d, want 7 (re-attached)", updated.ProfileID)
	}
	if updated.Active {
		t.Error("Active should be false after patch")
	}
}

func TestPatchAccountUserProfile_ErrorStatus(t *testing.T) {
	transport := &fakeTransport{
		patch: func(_ context.Context, _ string, _ any) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"error":"bad field"}`), nil
		},
	}

	_, err := New(transport).PatchAccountUserProfile(context.Background(), 7, 100, ActivePatch(true))
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("error should carry status: %v", err)
	}
}

func bulkFixtureTransport(t *testing.T, byProfile map[int64]string) *fakeTransport {
	t.Helper()
	return &fakeTransport{
		get: func(_ context.Context, endpoint string, _ url.Values) (*http.Response, error) {
			var profileID int64
			if _, err := fmt.Sscanf(endpoint, "/userprofiles/%d/accountUserProfiles", &profileID); err != nil {
				t.Fatalf("unexpected endpoint %q", endpoint)
			}
			body, ok := byProfile[profileID]
			if !ok {
				t.Fatalf("no fixture for profile %d", profileID)
			}
			return jsonResponse(http.StatusOK, body), nil
		},
	}
}

func TestBulkCollect_MergesAndDeduplicates(t *testing.T) {
	transport := bulkFixtureTransport(t, map[int64]string{
		1: `{"accountUserProfiles":[
			{"id":"100","name":"dev","accountId":"9","userRoleId":"5","active":true},
			{"id":"101","name":"ops","accountId":"9","userRoleId":"5","active":true}]}`,
		2: `{"accountUserProfiles":[
			{"id":"100","name":"dev-renamed","accountId":"9","userRoleId":"5","active":true}]}`,
	})

	bulk := NewBulk(New(transport), DefaultBulkConfig())
	recs, err := bulk.CollectAccountUserProfiles(context.Background(), []int64{1, 2}, nil)
	if err != nil {
		t.Fatalf("CollectAccountUserProfiles() error = %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (100 deduplicated)", len(recs))
	}
	if recs[100].Name != "dev-renamed" {
		t.Errorf("duplicate id 100 should keep last scope's copy, got %q", recs[100].Name)
	}
	if recs[100].ProfileID != 2 || recs[101].ProfileID != 1 {
		t.Errorf("ProfileID routing scope not attached: %+v", recs)
	}
}

func TestBulkCollect_ExcludedAccountsDropped(t *testing.T) {
	transport := bulkFixtureTransport(t, map[int64]string{
		1: `{"accountUserProfiles":[
			{"id":"100","name":"dev","accountId":"9","userRoleId":"5","active":true},
			{"id":"101","name":"ops","accountId":"666","userRoleId":"5","active":true}]}`,
	})

	cfg := DefaultBulkConfig()
	cfg.ExcludedAccountIDs = []int64{666}
	bulk := NewBulk(New(transport), cfg)

	recs, err := bulk.CollectAccountUserProfiles(context.Background(), []int64{1}, nil)
	if err != nil {
		t.Fatalf("CollectAccountUserProfiles() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1 after exclusion", len(recs))
	}
	if _, ok := recs[101]; ok {
		t.Error("record on excluded account should be dropped")
	}
}

func TestBulkCollect_ListFaultAborts(t *testing.T) {
	transport := &fakeTransport{
		get: func(_ context.Context, _ string, _ url.Values) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}

	bulk := NewBulk(New(transport), DefaultBulkConfig())
	recs, err := bulk.CollectAccountUserProfiles(context.Background(), []int64{1}, nil)
	if err == nil {
		t.Fatal("expected error from failing list")
	}
	if recs != nil {
		t.Errorf("expected nil collection on fault, got %v", recs)
	}
}

func TestBulkSetActive_PartialFailure(t *testing.T) {
	transport := &fakeTransport{
		patch: func(_ context.Context, endpoint string, _ any) (*http.Response, error) {
			if strings.HasSuffix(endpoint, "/101") {
				return jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
			}
			return jsonResponse(http.StatusOK,
				`{"id":"100","name":"dev","accountId":"9","userRoleId":"5","active":false}`), nil
		},
	}

	recs := map[int64]AccountUserProfile{
		100: {ID: 100, ProfileID: 1, Name: "dev", AccountID: 9, UserRoleID: 5, Active: true},
		101: {ID: 101, ProfileID: 1, Name: "ops", AccountID: 9, UserRoleID: 5, Active: true},
	}

	bulk := NewBulk(New(transport), DefaultBulkConfig())
	before := time.Now()
	out, result := bulk.SetActive(context.Background(), recs, false)

	if len(out) != len(recs) {
		t.Fatalf("output size = %d, want %d", len(out), len(recs))
	}
	if result.AllSucceeded() {
		t.Error("expected a failure in the result report")
	}
	if len(result.Succeeded) != 1 || result.Succeeded[0] != 100 {
		t.Errorf("Succeeded = %v, want [100]", result.Succeeded)
	}
	if keys := result.FailedKeys(); len(keys) != 1 || keys[0] != 101 {
		t.Errorf("FailedKeys = %v, want [101]", keys)
	}

	patched := out[100]
	if patched.Active {
		t.Error("patched record should be inactive")
	}
	if patched.ProfileID != 1 {
		t.Errorf("patched record ProfileID = %d, want re-attached 1", patched.ProfileID)
	}
	if patched.Timestamp.Before(before) {
		t.Errorf("patched record should carry a fresh Timestamp, got %v", patched.Timestamp)
	}

	failed := out[101]
	if failed != recs[101] {
		t.Errorf("failed record should be unchanged: got %+v want %+v", failed, recs[101])
	}
	if !failed.Timestamp.IsZero() {
		t.Error("failed record must not carry a Timestamp")
	}
}

func TestBulkSetActive_RepeatRunRestamps(t *testing.T) {
	transport := &fakeTransport{
		patch: func(_ context.Context, _ string, _ any) (*http.Response, error) {
			return jsonResponse(http.StatusOK,
				`{"id":"100","name":"dev","accountId":"9","userRoleId":"5","active":true}`), nil
		},
	}

	recs := map[int64]AccountUserProfile{
		100: {ID: 100, ProfileID: 1, Name: "dev", AccountID: 9, UserRoleID: 5},
	}

	bulk := NewBulk(New(transport), DefaultBulkConfig())
	first, _ := bulk.SetActive(context.Background(), recs, true)
	time.Sleep(5 * time.Millisecond)
	second, _ := bulk.SetActive(context.Background(), first, true)

	if !second[100].Active {
		t.Error("record should stay active on repeat run")
	}
	if !second[100].Timestamp.After(first[100].Timestamp) {
		t.Errorf("repeat run should restamp: first %v, second %v",
			first[100].Timestamp, second[100].Timestamp)
	}
}

func TestBulkSetActive_LogsFailureDetail(t *testing.T) {
	transport := &fakeTransport{
		patch: func(_ context.Context, _ string, _ any) (*http.Response, error) {
			return nil, errors.New("dial tcp: timeout")
		},
	}

	recs := map[int64]AccountUserProfile{
		100: {ID: 100, ProfileID: 1, Name: "dev", AccountID: 9, UserRoleID: 5, Active: true},
	}

	var buf bytes.Buffer
	bulk := NewBulk(New(transport), DefaultBulkConfig())
	bulk.logger = zerolog.New(&buf)

	_, result := bulk.SetActive(context.Background(), recs, false)
	if result.AllSucceeded() {
		t.Fatal("expected failure")
	}

	out := buf.String()
	if !strings.Contains(out, "dial tcp: timeout") {
		t.Errorf("log should carry error detail: %s", out)
	}
	if !strings.Contains(out, `"run_id"`) {
		t.Errorf("log should carry run_id: %s", out)
	}
}
