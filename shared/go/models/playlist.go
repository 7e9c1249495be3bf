package models

// Episode is the identity record of a podcast episode. Ids come from the
// podcast catalogue and are opaque to this service.
type Episode struct {
	ID string `json:"id" db:"id"`
}

// Playlist is a user-owned, ordered set of episodes.
type Playlist struct {
	ID       int64     `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	UserID   int64     `json:"userId,omitempty" db:"user_id"`
	Episodes []Episode `json:"episodes"`
}

// PlaylistEpisode records that an episode belongs to a playlist.
type PlaylistEpisode struct {
	ID         int64  `json:"id" db:"id"`
	PlaylistID int64  `json:"playlistId" db:"playlist_id"`
	EpisodeID  string `json:"episodeId" db:"episode_id"`
}

// EpisodesFromIDs wraps bare ids in Episode values, preserving order.
func EpisodesFromIDs(ids []string) []Episode {
	episodes := make([]Episode, 0, len(ids))
	for _, id := range ids {
		episodes = append(episodes, Episode{ID: id})
	}
	return episodes
}
