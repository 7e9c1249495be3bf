package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateEpisode is returned when the episode is already in the playlist.
var ErrDuplicateEpisode = errors.New("duplicate episode in playlist")

// EnsureEpisode creates the episode row if it does not exist yet.
func (s *Store) EnsureEpisode(ctx context.Context, episodeID string) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO episodes (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING`, episodeID); err != nil {
		return fmt.Errorf("ensure episode: %w", err)
	}
	return nil
}

// AddEpisodeToPlaylist appends an episode to a playlist.
// It returns ErrDuplicateEpisode if the pair already exists.
func (s *Store) AddEpisodeToPlaylist(ctx context.Context, playlistID int64, episodeID string) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_episodes (playlist_id, episode_id)
		VALUES ($1, $2)
		ON CONFLICT (playlist_id, episode_id) DO NOTHING`, playlistID, episodeID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEpisode
		}
		return fmt.Errorf("insert playlist episode: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDuplicateEpisode
	}
	return nil
}

// RemoveEpisodeFromPlaylist deletes the membership row. Removing an episode
// that is not in the playlist is not an error.
func (s *Store) RemoveEpisodeFromPlaylist(ctx context.Context, playlistID int64, episodeID string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_episodes
		WHERE playlist_id = $1 AND episode_id = $2`, playlistID, episodeID); err != nil {
		return fmt.Errorf("delete playlist episode: %w", err)
	}
	return nil
}
