package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"podcastify/internal/store"
	"podcastify/shared/go/logging"
)

const (
	msgNotOwner         = "Cannot do the operation because this playlist does not belong to you."
	msgLimitReached     = "Number of playlists has reached limit, you may not add another one."
	msgPlaylistMissing  = "Playlist does not exist."
	msgDuplicateEpisode = "Duplicate episode in the playlist."
	msgInvalidBody      = "Invalid request body."
	msgUnauthenticated  = "Authorization required."
)

// playlistRequest is the create/edit body. Name is nil when the field is absent.
type playlistRequest struct {
	Name *string `json:"name"`
}

func (p playlistRequest) nameOrEmpty() string {
	if p.Name == nil {
		return ""
	}
	return *p.Name
}

// checkPlaylistOwnership stops the chain unless the caller owns {playlistId}.
func (s *Server) checkPlaylistOwnership(r *http.Request, in reply) (reply, *failure) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		return in, rejected(http.StatusUnauthorized, msgUnauthenticated)
	}
	playlistID, ok := playlistIDParam(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgNotOwner)
	}

	if _, err := s.playlists.Authorize(r.Context(), userID, playlistID); err != nil {
		if errors.Is(err, store.ErrPlaylistNotOwned) {
			return in, rejected(http.StatusBadRequest, msgNotOwner)
		}
		return in, storeFailure(r, err, "check playlist ownership")
	}
	return in, nil
}

func (s *Server) getPlaylists(r *http.Request, in reply) (reply, *failure) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		return in, rejected(http.StatusUnauthorized, msgUnauthenticated)
	}

	var (
		result any
		err    error
	)
	if _, present := mux.Vars(r)["playlistId"]; present {
		playlistID, valid := playlistIDParam(r)
		if !valid {
			// No playlist can match a malformed id.
			in.Data = []any{}
			return in, nil
		}
		result, err = s.playlists.Get(r.Context(), userID, playlistID)
	} else {
		result, err = s.playlists.List(r.Context(), userID)
	}
	if err != nil {
		return in, storeFailure(r, err, "list playlists")
	}

	in.Data = result
	return in, nil
}

func (s *Server) addPlaylist(r *http.Request, in reply) (reply, *failure) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		return in, rejected(http.StatusUnauthorized, msgUnauthenticated)
	}

	req, ok := decodePlaylistRequest(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgInvalidBody)
	}

	created, err := s.playlists.Create(r.Context(), userID, req.nameOrEmpty())
	if err != nil {
		if errors.Is(err, store.ErrPlaylistLimitReached) {
			return in, rejected(http.StatusOK, msgLimitReached)
		}
		return in, storeFailure(r, err, "create playlist")
	}

	in.Data = created
	return in, nil
}

func (s *Server) deletePlaylist(r *http.Request, in reply) (reply, *failure) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		return in, rejected(http.StatusUnauthorized, msgUnauthenticated)
	}
	playlistID, ok := playlistIDParam(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
	}

	if err := s.playlists.Delete(r.Context(), userID, playlistID); err != nil {
		if errors.Is(err, store.ErrPlaylistNotFound) {
			return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
		}
		return in, storeFailure(r, err, "delete playlist")
	}
	return in, nil
}

func (s *Server) editPlaylist(r *http.Request, in reply) (reply, *failure) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		return in, rejected(http.StatusUnauthorized, msgUnauthenticated)
	}
	playlistID, ok := playlistIDParam(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
	}
	req, ok := decodePlaylistRequest(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgInvalidBody)
	}

	if err := s.playlists.Rename(r.Context(), userID, playlistID, req.Name); err != nil {
		if errors.Is(err, store.ErrPlaylistNotFound) {
			return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
		}
		return in, storeFailure(r, err, "edit playlist")
	}
	return in, nil
}

func (s *Server) addEpisodeToPlaylist(r *http.Request, in reply) (reply, *failure) {
	userID, ok := logging.UserID(r.Context())
	if !ok {
		return in, rejected(http.StatusUnauthorized, msgUnauthenticated)
	}
	playlistID, ok := playlistIDParam(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
	}
	episodeID := mux.Vars(r)["episodeId"]

	err := s.playlists.AddEpisode(r.Context(), userID, playlistID, episodeID)
	switch {
	case err == nil:
		return in, nil
	case errors.Is(err, store.ErrPlaylistNotOwned):
		return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
	case errors.Is(err, store.ErrDuplicateEpisode):
		return in, rejected(http.StatusBadRequest, msgDuplicateEpisode)
	default:
		return in, storeFailure(r, err, "add episode to playlist")
	}
}

func (s *Server) removeEpisodeFromPlaylist(r *http.Request, in reply) (reply, *failure) {
	playlistID, ok := playlistIDParam(r)
	if !ok {
		return in, rejected(http.StatusBadRequest, msgPlaylistMissing)
	}
	episodeID := mux.Vars(r)["episodeId"]

	if err := s.playlists.RemoveEpisode(r.Context(), playlistID, episodeID); err != nil {
		return in, storeFailure(r, err, "remove episode from playlist")
	}
	return in, nil
}

func playlistIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["playlistId"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodePlaylistRequest reads the JSON body. An empty body is treated as an empty object.
func decodePlaylistRequest(r *http.Request) (playlistRequest, bool) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, false
	}
	return req, true
}
