package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"podcastify/shared/go/models"
)

var (
	// ErrPlaylistNotFound is returned when no playlist matches both id and owner.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrPlaylistNotOwned is returned when the caller does not own the playlist.
	// A missing playlist and another user's playlist are indistinguishable.
	ErrPlaylistNotOwned = errors.New("playlist does not belong to user")
	// ErrPlaylistLimitReached is returned when the owner already has the maximum number of playlists.
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
)

// ListPlaylists returns the user's playlists with their episode ids in insertion order.
// When playlistID is non-nil only that playlist is returned, if it belongs to the user.
func (s *Store) ListPlaylists(ctx context.Context, userID int64, playlistID *int64) ([]*models.Playlist, error) {
	query := `
		SELECT p.id, p.name,
			COALESCE(array_agg(pe.episode_id ORDER BY pe.id) FILTER (WHERE pe.episode_id IS NOT NULL), '{}')
		FROM playlists p
		LEFT JOIN playlist_episodes pe ON pe.playlist_id = p.id
		WHERE p.user_id = $1`
	args := []any{userID}
	if playlistID != nil {
		query += ` AND p.id = $2`
		args = append(args, *playlistID)
	}
	query += `
		GROUP BY p.id, p.name
		ORDER BY p.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*models.Playlist, 0)
	for rows.Next() {
		var (
			playlist   models.Playlist
			episodeIDs []string
		)
		if err := rows.Scan(&playlist.ID, &playlist.Name, pq.Array(&episodeIDs)); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlist.Episodes = models.EpisodesFromIDs(episodeIDs)
		playlists = append(playlists, &playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// PlaylistForOwner returns the playlist only if userID owns it.
func (s *Store) PlaylistForOwner(ctx context.Context, userID, playlistID int64) (*models.Playlist, error) {
	var playlist models.Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, user_id
		FROM playlists
		WHERE id = $1 AND user_id = $2`, playlistID, userID).Scan(&playlist.ID, &playlist.Name, &playlist.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("check playlist ownership: %w", err)
	}
	return &playlist, nil
}

// CreatePlaylist inserts a playlist for userID unless the user already owns limit playlists.
// The count and insert run under a per-user advisory lock so concurrent creates cannot overshoot.
func (s *Store) CreatePlaylist(ctx context.Context, userID int64, name string, limit int) (*models.Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return nil, fmt.Errorf("lock user playlists: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM playlists
		WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, fmt.Errorf("count playlists: %w", err)
	}
	if count >= limit {
		return nil, ErrPlaylistLimitReached
	}

	playlist := models.Playlist{Name: name, UserID: userID, Episodes: []models.Episode{}}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO playlists (name, user_id)
		VALUES ($1, $2)
		RETURNING id`, name, userID).Scan(&playlist.ID); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit playlist create: %w", err)
	}
	tx = nil

	return &playlist, nil
}

// RenamePlaylist sets the name of a playlist owned by userID. A nil name keeps
// the stored one and only touches updated_at.
func (s *Store) RenamePlaylist(ctx context.Context, userID, playlistID int64, name *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = COALESCE($1, name), updated_at = NOW()
		WHERE id = $2 AND user_id = $3`, name, playlistID, userID)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// DeletePlaylist removes a playlist owned by userID. Memberships are removed by cascade.
func (s *Store) DeletePlaylist(ctx context.Context, userID, playlistID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1 AND user_id = $2`, playlistID, userID)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
