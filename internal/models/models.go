// package models defines the data model for the music station console
package models

import "fmt"

// Track describes one song returned by a music source.
type Track struct {
	Singer   string `yaml:"singer" json:"singer"`
	Title    string `yaml:"title" json:"title"`
	SongURL  string `yaml:"song_url" json:"song_url"`
	SongID   string `yaml:"song_id" json:"song_id"`
	TrueURL  string `yaml:"true_url" json:"true_url"`
	Duration int    `yaml:"duration" json:"duration"` // Duration in whole seconds
}

// Label renders the track as "singer - title".
func (t Track) Label() string {
	return fmt.Sprintf("%s - %s", t.Singer, t.Title)
}

// Playlist is a named, ordered list of tracks.
type Playlist struct {
	Name   string  `yaml:"name" json:"name"`
	Tracks []Track `yaml:"tracks" json:"tracks"`
}

// IndexOfSong returns the position of the track with songID, or -1.
func (p *Playlist) IndexOfSong(songID string) int {
	for i, t := range p.Tracks {
		if t.SongID == songID {
			return i
		}
	}
	return -1
}

// Clone returns a copy of p that shares no track storage with it.
func (p Playlist) Clone() Playlist {
	tracks := make([]Track, len(p.Tracks))
	copy(tracks, p.Tracks)
	return Playlist{Name: p.Name, Tracks: tracks}
}

// Collection is the ordered sequence of all playlists. Names are unique.
type Collection []Playlist

// Names returns playlist names in collection order.
func (c Collection) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name
	}
	return names
}

// IndexOf returns the index of the playlist called name (exact match), or -1.
func (c Collection) IndexOf(name string) int {
	for i, p := range c {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, p := range c {
		out[i] = p.Clone()
	}
	return out
}

// Validate checks that playlist names are unique and durations non-negative.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, p := range c {
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate playlist name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		for _, t := range p.Tracks {
			if t.Duration < 0 {
				return fmt.Errorf("track %q in playlist %q has negative duration", t.Title, p.Name)
			}
		}
	}
	return nil
}

// Store defines full-document persistence for the playlist collection.
//
// Load returns an empty collection when nothing has been saved yet.
// Save replaces everything previously stored; the last full write wins.
type Store interface {
	Load() (Collection, error)
	Save(Collection) error
	Close() error
}
