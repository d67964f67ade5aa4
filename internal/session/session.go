// package session holds the mutable state of one console session: search results, playlists and selection.
//
// Every playlist mutation is flushed to the [models.Store] before the operation returns.
// A failed flush keeps the in-memory change and is reported as an error matching [shared.ErrStorage].
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

// Current addresses the selected playlist in place of an explicit index.
const Current = -1

const none = -1

// Confirmer asks the user a yes/no question before a destructive change.
type Confirmer interface {
	Confirm(prompt string) bool
}

// State is owned by the foreground command loop.
//
// The only field written from a playlist traversal is the playing track, stored atomically as the
// song id of the track. Its position is resolved against the live selected playlist when read,
// so tracks deleted during a traversal shift it the same way they shift the selection.
type State struct {
	store     models.Store
	confirm   Confirmer
	logger    *log.Logger
	results   []models.Track
	playlists models.Collection
	selected  int
	playing   atomic.Pointer[string]
	gen       atomic.Int64 // bumped whenever the selection moves to another playlist
}

// New loads the persisted collection from store and returns a State with nothing selected.
func New(store models.Store, confirm Confirmer, logger *log.Logger) (*State, error) {
	playlists, err := store.Load()
	if err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = models.Collection{}
	}

	s := &State{
		store:     store,
		confirm:   confirm,
		logger:    shared.WithLogger(logger, "component", "session"),
		playlists: playlists,
		selected:  none,
	}
	return s, nil
}

// SetResults replaces the search result set wholesale.
func (s *State) SetResults(tracks []models.Track) {
	s.results = append([]models.Track{}, tracks...)
}

// Results returns a copy of the current search result set.
func (s *State) Results() []models.Track {
	return append([]models.Track{}, s.results...)
}

// Result returns the search result at i.
func (s *State) Result(i int) (models.Track, error) {
	if len(s.results) == 0 {
		return models.Track{}, shared.ErrNoSearchResults
	}
	if i < 0 || i >= len(s.results) {
		return models.Track{}, fmt.Errorf("%w: result %d, have %d", shared.ErrOutOfRange, i, len(s.results))
	}
	return s.results[i], nil
}

// Playlists returns a deep copy of the collection.
func (s *State) Playlists() models.Collection {
	return s.playlists.Clone()
}

// Playlist returns a copy of the playlist at idx, which may be [Current].
func (s *State) Playlist(idx int) (models.Playlist, error) {
	i, err := s.resolve(idx)
	if err != nil {
		return models.Playlist{}, err
	}
	return s.playlists[i].Clone(), nil
}

// Selected returns the selected playlist index.
func (s *State) Selected() (int, bool) {
	return s.selected, s.selected != none
}

// Playing returns the position of the currently playing track within the selected playlist.
func (s *State) Playing() (int, bool) {
	id := s.playing.Load()
	if id == nil || s.selected == none {
		return none, false
	}
	i := s.playlists[s.selected].IndexOfSong(*id)
	return i, i != none
}

// SetPlaying marks track pos of the selected playlist as the currently playing one.
// Out of range positions clear the mark.
func (s *State) SetPlaying(pos int) {
	if s.selected == none || pos < 0 || pos >= len(s.playlists[s.selected].Tracks) {
		s.ClearPlaying()
		return
	}
	id := s.playlists[s.selected].Tracks[pos].SongID
	s.playing.Store(&id)
}

// PlayingTracker returns a callback for a traversal of the selected playlist that records each
// track it reaches, until the selection moves to another playlist.
//
// The callback only touches the playing field, so it is safe to call from the traversal goroutine.
func (s *State) PlayingTracker() func(pos int, t models.Track) {
	gen := s.gen.Load()
	return func(_ int, t models.Track) {
		if s.gen.Load() == gen {
			id := t.SongID
			s.playing.Store(&id)
		}
	}
}

// ClearPlaying forgets the currently playing track.
func (s *State) ClearPlaying() {
	s.playing.Store(nil)
}

// SelectPlaylist makes idx the selected playlist. Re-selecting the selected playlist changes nothing.
func (s *State) SelectPlaylist(idx int) error {
	i, err := s.resolve(idx)
	if err != nil {
		return err
	}
	if i != s.selected {
		s.gen.Add(1)
		s.ClearPlaying()
	}
	s.selected = i
	return nil
}

// CreatePlaylist appends an empty playlist called name.
func (s *State) CreatePlaylist(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty playlist name", shared.ErrInvalidInput)
	}
	if s.playlists.IndexOf(name) >= 0 {
		return fmt.Errorf("%w: %q", shared.ErrPlaylistExists, name)
	}

	s.playlists = append(s.playlists, models.Playlist{Name: name, Tracks: []models.Track{}})
	return s.persist("create playlist")
}

// DeletePlaylist removes the playlist at idx after confirmation and reports whether it was removed.
//
// Deleting the selected playlist clears the selection; deleting one before it shifts the selection down.
func (s *State) DeletePlaylist(idx int) (bool, error) {
	i, err := s.resolve(idx)
	if err != nil {
		return false, err
	}

	name := s.playlists[i].Name
	if !s.confirm.Confirm(fmt.Sprintf("delete playlist %q? (y/n) ", name)) {
		return false, nil
	}

	prev := s.selected
	s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
	s.selected = reindex(s.selected, i)
	if s.selected == none && i == prev {
		s.gen.Add(1)
		s.ClearPlaying()
	}

	return true, s.persist("delete playlist")
}

// AddTrack appends search result resultIdx to the playlist at idx. Tracks are unique by song id.
func (s *State) AddTrack(resultIdx, idx int) error {
	track, err := s.Result(resultIdx)
	if err != nil {
		return err
	}
	i, err := s.resolve(idx)
	if err != nil {
		return err
	}

	pl := &s.playlists[i]
	if pl.IndexOfSong(track.SongID) >= 0 {
		return fmt.Errorf("%w: %s in %q", shared.ErrDuplicateTrack, track.Label(), pl.Name)
	}

	pl.Tracks = append(pl.Tracks, track)
	return s.persist("add track")
}

// RemoveTrack deletes track trackIdx of the playlist at idx after confirmation and reports whether it was removed.
func (s *State) RemoveTrack(trackIdx, idx int) (bool, error) {
	i, err := s.resolve(idx)
	if err != nil {
		return false, err
	}

	pl := &s.playlists[i]
	if trackIdx < 0 || trackIdx >= len(pl.Tracks) {
		return false, fmt.Errorf("%w: track %d, %q has %d", shared.ErrOutOfRange, trackIdx, pl.Name, len(pl.Tracks))
	}

	prompt := fmt.Sprintf("delete %s from %q? (y/n) ", pl.Tracks[trackIdx].Label(), pl.Name)
	if !s.confirm.Confirm(prompt) {
		return false, nil
	}

	removed := pl.Tracks[trackIdx].SongID
	pl.Tracks = append(pl.Tracks[:trackIdx], pl.Tracks[trackIdx+1:]...)
	if i == s.selected {
		// Only clear the mark if it still names the removed track; a traversal may have moved on.
		if cur := s.playing.Load(); cur != nil && *cur == removed {
			s.playing.CompareAndSwap(cur, nil)
		}
	}

	return true, s.persist("remove track")
}

// Close releases the store.
func (s *State) Close() error {
	return s.store.Close()
}

func (s *State) resolve(idx int) (int, error) {
	if len(s.playlists) == 0 {
		return none, shared.ErrNoPlaylists
	}
	if idx == Current {
		if s.selected == none {
			return none, shared.ErrNoPlaylistSelected
		}
		return s.selected, nil
	}
	if idx < 0 || idx >= len(s.playlists) {
		return none, fmt.Errorf("%w: playlist %d, have %d", shared.ErrOutOfRange, idx, len(s.playlists))
	}
	return idx, nil
}

func (s *State) persist(op string) error {
	err := s.store.Save(s.playlists.Clone())
	if err == nil {
		return nil
	}

	s.logger.Error("failed to persist playlists", "op", op, "err", err)
	if !errors.Is(err, shared.ErrStorage) {
		err = &shared.StorageError{Op: "save", Err: err}
	}
	return err
}

// reindex returns where cur points after the element at deleted is removed.
func reindex(cur, deleted int) int {
	switch {
	case cur == none:
		return none
	case cur == deleted:
		return none
	case deleted < cur:
		return cur - 1
	default:
		return cur
	}
}
