package playlists

import (
	"context"

	"podcastify/shared/go/models"
)

// DefaultLimit is the number of playlists a user may own when no limit is configured.
const DefaultLimit = 1

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context, userID int64, playlistID *int64) ([]*models.Playlist, error)
	PlaylistForOwner(ctx context.Context, userID, playlistID int64) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, userID int64, name string, limit int) (*models.Playlist, error)
	RenamePlaylist(ctx context.Context, userID, playlistID int64, name *string) error
	DeletePlaylist(ctx context.Context, userID, playlistID int64) error
	EnsureEpisode(ctx context.Context, episodeID string) error
	AddEpisodeToPlaylist(ctx context.Context, playlistID int64, episodeID string) error
	RemoveEpisodeFromPlaylist(ctx context.Context, playlistID int64, episodeID string) error
}

// Service coordinates playlist-related operations.
type Service interface {
	Authorize(ctx context.Context, userID, playlistID int64) (*models.Playlist, error)
	List(ctx context.Context, userID int64) ([]*models.Playlist, error)
	Get(ctx context.Context, userID, playlistID int64) ([]*models.Playlist, error)
	Create(ctx context.Context, userID int64, name string) (*models.Playlist, error)
	Rename(ctx context.Context, userID, playlistID int64, name *string) error
	Delete(ctx context.Context, userID, playlistID int64) error
	AddEpisode(ctx context.Context, userID, playlistID int64, episodeID string) error
	RemoveEpisode(ctx context.Context, playlistID int64, episodeID string) error
}

type service struct {
	store Store
	limit int
}

// New constructs a Service backed by the provided Store. A limit below one
// falls back to DefaultLimit.
func New(store Store, limit int) Service {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &service{store: store, limit: limit}
}

// Authorize returns the playlist if userID owns it, or store.ErrPlaylistNotOwned.
func (s *service) Authorize(ctx context.Context, userID, playlistID int64) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.PlaylistForOwner(ctx, userID, playlistID)
}

func (s *service) List(ctx context.Context, userID int64) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, userID, nil)
}

// Get returns the playlist as a list of zero or one element, so a miss is not an error.
func (s *service) Get(ctx context.Context, userID, playlistID int64) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, userID, &playlistID)
}

func (s *service) Create(ctx context.Context, userID int64, name string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreatePlaylist(ctx, userID, name, s.limit)
}

// Rename updates the playlist name. A nil name leaves it unchanged.
func (s *service) Rename(ctx context.Context, userID, playlistID int64, name *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RenamePlaylist(ctx, userID, playlistID, name)
}

func (s *service) Delete(ctx context.Context, userID, playlistID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, userID, playlistID)
}

// AddEpisode makes sure the episode row exists, checks ownership, then inserts
// the membership. Duplicates surface as store.ErrDuplicateEpisode.
func (s *service) AddEpisode(ctx context.Context, userID, playlistID int64, episodeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.EnsureEpisode(ctx, episodeID); err != nil {
		return err
	}
	// The route gate already ran; this re-check catches a delete that raced the upsert.
	if _, err := s.Authorize(ctx, userID, playlistID); err != nil {
		return err
	}
	return s.store.AddEpisodeToPlaylist(ctx, playlistID, episodeID)
}

func (s *service) RemoveEpisode(ctx context.Context, playlistID int64, episodeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemoveEpisodeFromPlaylist(ctx, playlistID, episodeID)
}
