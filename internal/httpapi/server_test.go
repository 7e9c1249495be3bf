package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"podcastify/internal/store"
	"podcastify/shared/go/models"
)

// stubTokens accepts tokens of the form "user-<id>".
type stubTokens struct{}

func (stubTokens) ParseToken(raw string) (int64, error) {
	id, found := strings.CutPrefix(raw, "user-")
	if !found {
		return 0, errors.New("bad token")
	}
	return strconv.ParseInt(id, 10, 64)
}

type stubPlaylistService struct {
	authorizeErr error
	listResponse []*models.Playlist
	listErr      error
	created      *models.Playlist
	createErr    error
	renameErr    error
	deleteErr    error
	addErr       error
	removeErr    error

	calls          []string
	lastUserID     int64
	lastPlaylistID int64
	lastEpisodeID  string
	lastName       string
	lastRename     *string
}

func (s *stubPlaylistService) record(call string, userID, playlistID int64) {
	s.calls = append(s.calls, call)
	s.lastUserID = userID
	s.lastPlaylistID = playlistID
}

func (s *stubPlaylistService) Authorize(_ context.Context, userID, playlistID int64) (*models.Playlist, error) {
	s.record("authorize", userID, playlistID)
	if s.authorizeErr != nil {
		return nil, s.authorizeErr
	}
	return &models.Playlist{ID: playlistID, UserID: userID}, nil
}

func (s *stubPlaylistService) List(_ context.Context, userID int64) ([]*models.Playlist, error) {
	s.record("list", userID, 0)
	return s.listResponse, s.listErr
}

func (s *stubPlaylistService) Get(_ context.Context, userID, playlistID int64) ([]*models.Playlist, error) {
	s.record("get", userID, playlistID)
	return s.listResponse, s.listErr
}

func (s *stubPlaylistService) Create(_ context.Context, userID int64, name string) (*models.Playlist, error) {
	s.record("create", userID, 0)
	s.lastName = name
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return &models.Playlist{ID: 1, Name: name, UserID: userID, Episodes: []models.Episode{}}, nil
}

func (s *stubPlaylistService) Rename(_ context.Context, userID, playlistID int64, name *string) error {
	s.record("rename", userID, playlistID)
	s.lastRename = name
	if name != nil {
		s.lastName = *name
	}
	return s.renameErr
}

func (s *stubPlaylistService) Delete(_ context.Context, userID, playlistID int64) error {
	s.record("delete", userID, playlistID)
	return s.deleteErr
}

func (s *stubPlaylistService) AddEpisode(_ context.Context, userID, playlistID int64, episodeID string) error {
	s.record("add", userID, playlistID)
	s.lastEpisodeID = episodeID
	return s.addErr
}

func (s *stubPlaylistService) RemoveEpisode(_ context.Context, playlistID int64, episodeID string) error {
	s.record("remove", 0, playlistID)
	s.lastEpisodeID = episodeID
	return s.removeErr
}

type envelope struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data"`
	ErrorMessage string          `json:"errorMessage"`
	Error        string          `json:"error"`
}

func doRequest(t *testing.T, svc *stubPlaylistService, method, path, token string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	server := New(svc, stubTokens{})

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)

	var payload envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, payload
}

func assertCalls(t *testing.T, svc *stubPlaylistService, want ...string) {
	t.Helper()
	if strings.Join(svc.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected calls %v, got %v", want, svc.calls)
	}
}

func TestHealth(t *testing.T) {
	rr, _ := doRequest(t, &stubPlaylistService{}, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestRequiresToken(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, _ := doRequest(t, svc, http.MethodGet, "/api/v1/playlists", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	assertCalls(t, svc)
}

func TestGetPlaylists(t *testing.T) {
	svc := &stubPlaylistService{
		listResponse: []*models.Playlist{
			{ID: 3, Name: "Favorites", Episodes: []models.Episode{{ID: "E1"}, {ID: "E2"}}},
		},
	}
	rr, payload := doRequest(t, svc, http.MethodGet, "/api/v1/playlists", "user-42", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var got []models.Playlist
	if err := json.Unmarshal(payload.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Favorites" || len(got[0].Episodes) != 2 || got[0].Episodes[0].ID != "E1" {
		t.Fatalf("unexpected playlists %#v", got)
	}
	if svc.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", svc.lastUserID)
	}
	assertCalls(t, svc, "list")
}

func TestGetSinglePlaylistEmptyIsNotAnError(t *testing.T) {
	svc := &stubPlaylistService{listResponse: []*models.Playlist{}}
	rr, payload := doRequest(t, svc, http.MethodGet, "/api/v1/playlists/99", "user-42", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if string(payload.Data) != "[]" {
		t.Fatalf("expected empty array, got %s", payload.Data)
	}
	if svc.lastPlaylistID != 99 {
		t.Fatalf("expected playlist 99, got %d", svc.lastPlaylistID)
	}
	assertCalls(t, svc, "get")
}

func TestGetPlaylistMalformedID(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodGet, "/api/v1/playlists/abc", "user-42", "")

	if rr.Code != http.StatusOK || string(payload.Data) != "[]" {
		t.Fatalf("expected 200 with empty array, got %d %s", rr.Code, payload.Data)
	}
	assertCalls(t, svc)
}

func TestGetPlaylistsStoreFailure(t *testing.T) {
	svc := &stubPlaylistService{listErr: errors.New("connection reset")}
	rr, payload := doRequest(t, svc, http.MethodGet, "/api/v1/playlists", "user-42", "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if payload.OK || payload.Error != "connection reset" {
		t.Fatalf("expected error to be attached, got %#v", payload)
	}
}

func TestAddPlaylist(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodPost, "/api/v1/playlists", "user-42", `{"name":"Favorites","userId":7}`)

	if rr.Code != http.StatusOK || !payload.OK {
		t.Fatalf("expected ok 200, got %d %#v", rr.Code, payload)
	}
	if svc.lastUserID != 42 || svc.lastName != "Favorites" {
		t.Fatalf("expected owner 42 and name Favorites, got %d %q", svc.lastUserID, svc.lastName)
	}
	var created models.Playlist
	if err := json.Unmarshal(payload.Data, &created); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if created.UserID != 42 {
		t.Fatalf("expected created playlist to belong to 42, got %d", created.UserID)
	}
}

func TestAddPlaylistLimitIsSoftRejection(t *testing.T) {
	svc := &stubPlaylistService{createErr: store.ErrPlaylistLimitReached}
	rr, payload := doRequest(t, svc, http.MethodPost, "/api/v1/playlists", "user-42", `{"name":"Second"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if payload.ErrorMessage != msgLimitReached || payload.OK {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestAddPlaylistErrors(t *testing.T) {
	rr, _ := doRequest(t, &stubPlaylistService{createErr: errors.New("boom")}, http.MethodPost, "/api/v1/playlists", "user-42", `{"name":"x"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}

	svc := &stubPlaylistService{}
	rr, _ = doRequest(t, svc, http.MethodPost, "/api/v1/playlists", "user-42", `{"name":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	assertCalls(t, svc)
}

func TestOwnershipGate(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "edit", method: http.MethodPatch, path: "/api/v1/playlists/5", body: `{"name":"x"}`},
		{name: "delete", method: http.MethodDelete, path: "/api/v1/playlists/5"},
		{name: "add episode", method: http.MethodPost, path: "/api/v1/playlists/5/episodes/E1"},
		{name: "remove episode", method: http.MethodDelete, path: "/api/v1/playlists/5/episodes/E1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPlaylistService{authorizeErr: store.ErrPlaylistNotOwned}
			rr, payload := doRequest(t, svc, tc.method, tc.path, "user-42", tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
			if payload.ErrorMessage != msgNotOwner {
				t.Fatalf("expected ownership message, got %q", payload.ErrorMessage)
			}
			assertCalls(t, svc, "authorize")
		})
	}
}

func TestOwnershipGateStoreFailure(t *testing.T) {
	svc := &stubPlaylistService{authorizeErr: errors.New("timeout")}
	rr, payload := doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/5", "user-42", "")

	if rr.Code != http.StatusInternalServerError || payload.Error != "timeout" {
		t.Fatalf("expected 500 with error, got %d %#v", rr.Code, payload)
	}
	assertCalls(t, svc, "authorize")
}

func TestOwnershipGateMalformedID(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/abc", "user-42", "")

	if rr.Code != http.StatusBadRequest || payload.ErrorMessage != msgNotOwner {
		t.Fatalf("expected ownership rejection, got %d %#v", rr.Code, payload)
	}
	assertCalls(t, svc)
}

func TestEditPlaylist(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodPatch, "/api/v1/playlists/5", "user-42", `{"name":"Renamed"}`)

	if rr.Code != http.StatusOK || !payload.OK {
		t.Fatalf("expected ok 200, got %d %#v", rr.Code, payload)
	}
	if svc.lastName != "Renamed" || svc.lastPlaylistID != 5 {
		t.Fatalf("unexpected rename args %q %d", svc.lastName, svc.lastPlaylistID)
	}
	assertCalls(t, svc, "authorize", "rename")
}

func TestEditPlaylistWithoutNameKeepsName(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodPatch, "/api/v1/playlists/5", "user-42", `{}`)

	if rr.Code != http.StatusOK || !payload.OK {
		t.Fatalf("expected ok 200, got %d %#v", rr.Code, payload)
	}
	if svc.lastRename != nil {
		t.Fatalf("expected no new name, got %q", *svc.lastRename)
	}
	assertCalls(t, svc, "authorize", "rename")
}

func TestEditAndDeleteMissingPlaylist(t *testing.T) {
	svc := &stubPlaylistService{renameErr: store.ErrPlaylistNotFound}
	rr, payload := doRequest(t, svc, http.MethodPut, "/api/v1/playlists/5", "user-42", `{"name":"Renamed"}`)
	if rr.Code != http.StatusBadRequest || payload.ErrorMessage != msgPlaylistMissing {
		t.Fatalf("expected missing playlist on edit, got %d %#v", rr.Code, payload)
	}

	svc = &stubPlaylistService{deleteErr: store.ErrPlaylistNotFound}
	rr, payload = doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/5", "user-42", "")
	if rr.Code != http.StatusBadRequest || payload.ErrorMessage != msgPlaylistMissing {
		t.Fatalf("expected missing playlist on delete, got %d %#v", rr.Code, payload)
	}
}

func TestDeletePlaylist(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/5", "user-42", "")

	if rr.Code != http.StatusOK || !payload.OK {
		t.Fatalf("expected ok 200, got %d %#v", rr.Code, payload)
	}
	assertCalls(t, svc, "authorize", "delete")

	svc = &stubPlaylistService{deleteErr: errors.New("boom")}
	rr, _ = doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/5", "user-42", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestAddEpisodeToPlaylist(t *testing.T) {
	tests := []struct {
		name       string
		addErr     error
		wantStatus int
		wantMsg    string
		wantError  string
	}{
		{name: "added", wantStatus: http.StatusOK},
		{name: "duplicate", addErr: store.ErrDuplicateEpisode, wantStatus: http.StatusBadRequest, wantMsg: msgDuplicateEpisode},
		{name: "playlist gone", addErr: store.ErrPlaylistNotOwned, wantStatus: http.StatusBadRequest, wantMsg: msgPlaylistMissing},
		{name: "store failure", addErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "boom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubPlaylistService{addErr: tc.addErr}
			rr, payload := doRequest(t, svc, http.MethodPost, "/api/v1/playlists/5/episodes/ep-abc", "user-42", "")

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if payload.ErrorMessage != tc.wantMsg || payload.Error != tc.wantError {
				t.Fatalf("unexpected payload %#v", payload)
			}
			if svc.lastEpisodeID != "ep-abc" || svc.lastUserID != 42 {
				t.Fatalf("unexpected add args %q %d", svc.lastEpisodeID, svc.lastUserID)
			}
			assertCalls(t, svc, "authorize", "add")
		})
	}
}

func TestRemoveEpisodeFromPlaylist(t *testing.T) {
	svc := &stubPlaylistService{}
	rr, payload := doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/5/episodes/ep-abc", "user-42", "")

	if rr.Code != http.StatusOK || !payload.OK {
		t.Fatalf("expected ok 200, got %d %#v", rr.Code, payload)
	}
	if svc.lastEpisodeID != "ep-abc" || svc.lastPlaylistID != 5 {
		t.Fatalf("unexpected remove args %q %d", svc.lastEpisodeID, svc.lastPlaylistID)
	}
	assertCalls(t, svc, "authorize", "remove")

	svc = &stubPlaylistService{removeErr: errors.New("boom")}
	rr, _ = doRequest(t, svc, http.MethodDelete, "/api/v1/playlists/5/episodes/ep-abc", "user-42", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}
