package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"podcastify/shared/go/logging"
	"podcastify/shared/go/middleware"
	"podcastify/shared/go/models"
)

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	Authorize(ctx context.Context, userID, playlistID int64) (*models.Playlist, error)
	List(ctx context.Context, userID int64) ([]*models.Playlist, error)
	Get(ctx context.Context, userID, playlistID int64) ([]*models.Playlist, error)
	Create(ctx context.Context, userID int64, name string) (*models.Playlist, error)
	Rename(ctx context.Context, userID, playlistID int64, name *string) error
	Delete(ctx context.Context, userID, playlistID int64) error
	AddEpisode(ctx context.Context, userID, playlistID int64, episodeID string) error
	RemoveEpisode(ctx context.Context, playlistID int64, episodeID string) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	playlists PlaylistService
	tokens    middleware.TokenParser
}

// New configures a Server with the playlist service and the token verifier
// used to authenticate API routes.
func New(playlists PlaylistService, tokens middleware.TokenParser) *Server {
	return &Server{
		playlists: playlists,
		tokens:    tokens,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Authenticate(s.tokens))

	api.HandleFunc("/playlists", chain(s.getPlaylists)).Methods(http.MethodGet)
	api.HandleFunc("/playlists", chain(s.addPlaylist)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{playlistId}", chain(s.getPlaylists)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{playlistId}", chain(s.checkPlaylistOwnership, s.editPlaylist)).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/playlists/{playlistId}", chain(s.checkPlaylistOwnership, s.deletePlaylist)).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{playlistId}/episodes/{episodeId}", chain(s.checkPlaylistOwnership, s.addEpisodeToPlaylist)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{playlistId}/episodes/{episodeId}", chain(s.checkPlaylistOwnership, s.removeEpisodeFromPlaylist)).Methods(http.MethodDelete)

	return router
}

// reply is the success body threaded through a chain of stages.
type reply struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// failure ends a chain. Soft rejections use status 200.
type failure struct {
	Status       int    `json:"-"`
	OK           bool   `json:"ok"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// stage is one step of a route: it takes the reply built so far and returns
// the next one, or a failure that stops the chain.
type stage func(r *http.Request, in reply) (reply, *failure)

func chain(stages ...stage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := reply{OK: true}
		for _, st := range stages {
			next, fail := st(r, out)
			if fail != nil {
				writeJSON(w, fail.Status, fail)
				return
			}
			out = next
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func rejected(status int, message string) *failure {
	return &failure{Status: status, ErrorMessage: message}
}

// storeFailure logs err and reports it as a 500 with the error text attached.
func storeFailure(r *http.Request, err error, msg string) *failure {
	logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	return &failure{Status: http.StatusInternalServerError, Error: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
