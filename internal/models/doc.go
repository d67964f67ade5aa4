// Package models defines the domain values shared by the console, the session state and the playlist stores.
//
//   - [Track] : immutable descriptor of one searchable, playable song, copied by value
//   - [Playlist] : named, ordered, user curated list of tracks (duplicates rejected by song id)
//   - [Collection] : ordered set of playlists with unique names, persisted as a whole
//
// The [Store] interface is the persistence contract: load everything, save everything.
// Field names of the YAML encoding are the persisted document layout.
package models
