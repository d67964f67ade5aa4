package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

// PlaylistRepository implements [models.Store] on SQLite.
//
// Playlists and their tracks keep collection order through position columns.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given (migrated) database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Load retrieves every playlist ordered by position, with tracks in append order.
func (r *PlaylistRepository) Load() (models.Collection, error) {
	rows, err := r.db.Query(`SELECT id, name FROM playlists ORDER BY position ASC`)
	if err != nil {
		return nil, r.fail("load", fmt.Errorf("failed to query playlists: %w", err))
	}
	defer rows.Close()

	collection := models.Collection{}
	var ids []string
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, r.fail("load", fmt.Errorf("failed to scan playlist: %w", err))
		}
		ids = append(ids, id)
		collection = append(collection, models.Playlist{Name: name, Tracks: []models.Track{}})
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("load", fmt.Errorf("row iteration error: %w", err))
	}

	for i, id := range ids {
		tracks, err := r.loadTracks(id)
		if err != nil {
			return nil, r.fail("load", err)
		}
		collection[i].Tracks = tracks
	}

	return collection, nil
}

func (r *PlaylistRepository) loadTracks(playlistID string) ([]models.Track, error) {
	query := `
		SELECT singer, title, song_url, song_id, true_url, duration
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.Singer, &t.Title, &t.SongURL, &t.SongID, &t.TrueURL, &t.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Save replaces all stored playlists with collection in a single transaction.
func (r *PlaylistRepository) Save(collection models.Collection) error {
	if err := collection.Validate(); err != nil {
		return r.fail("save", fmt.Errorf("validation failed: %w", err))
	}

	tx, err := r.db.Begin()
	if err != nil {
		return r.fail("save", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM playlists`); err != nil {
		return r.fail("save", fmt.Errorf("failed to clear playlists: %w", err))
	}

	for pos, p := range collection {
		id := shared.GenerateID()
		if _, err := tx.Exec(`INSERT INTO playlists (id, position, name) VALUES (?, ?, ?)`, id, pos, p.Name); err != nil {
			return r.fail("save", fmt.Errorf("failed to insert playlist %q: %w", p.Name, err))
		}

		for tpos, t := range p.Tracks {
			_, err := tx.Exec(`
				INSERT INTO playlist_tracks (playlist_id, position, singer, title, song_url, song_id, true_url, duration)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, id, tpos, t.Singer, t.Title, t.SongURL, t.SongID, t.TrueURL, t.Duration)
			if err != nil {
				return r.fail("save", fmt.Errorf("failed to insert track %q: %w", t.Title, err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return r.fail("save", fmt.Errorf("failed to commit playlists: %w", err))
	}

	return nil
}

// Close closes the underlying database.
func (r *PlaylistRepository) Close() error {
	return r.db.Close()
}

func (r *PlaylistRepository) fail(op string, err error) error {
	return &shared.StorageError{Op: op, Err: err}
}
