// package services defines the [MusicSource] contract and its station adapters
//
// NetEase (JSON search API), generic HTML stations (CSS selectors)
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/fishstation/internal/models"
)

const (
	keywordPlaceholder = "$keyword$"
	songIDPlaceholder  = "$song_id$"
)

// MusicSource turns keywords into tracks and drives the playback surface.
//
// Every failure is reported as a [shared.SourceError].
type MusicSource interface {
	// Search runs a keyword search and returns the station's result count hint.
	// A subsequent FetchResults call returns the rows of this search.
	Search(ctx context.Context, keyword string) (int, error)

	// FetchResults returns the ordered tracks of the last search. It may be empty.
	FetchResults(ctx context.Context) ([]models.Track, error)

	// Play attempts to start playback of the playable url.
	// Returns false when the station refuses playback (e.g. the track needs a VIP account).
	Play(ctx context.Context, url string) (bool, error)

	// GoHome returns the playback surface to the station's home page.
	GoHome(ctx context.Context) error

	// Name returns the station name (e.g. "net_ease")
	Name() string
}

// Searcher is the search half of a [MusicSource].
type Searcher interface {
	Search(ctx context.Context, keyword string) (int, error)
	FetchResults(ctx context.Context) ([]models.Track, error)
}

// Surface is the playback half of a [MusicSource].
type Surface interface {
	Play(ctx context.Context, url string) (bool, error)
	GoHome(ctx context.Context) error
}

// fillKeyword substitutes the query-escaped keyword into a search URL template.
func fillKeyword(tpl, keyword string) string {
	return strings.ReplaceAll(tpl, keywordPlaceholder, url.QueryEscape(keyword))
}

// fillSongID substitutes a song id into a song or playable URL template.
func fillSongID(tpl, songID string) string {
	return strings.ReplaceAll(tpl, songIDPlaceholder, songID)
}

// SongIDFromURL returns the value of the last "id" query parameter in a song URL, including ones in a "#/song?id=" fragment.
func SongIDFromURL(songURL string) string {
	id := ""
	for i := strings.Index(songURL, "id="); i >= 0; {
		if i > 0 && (songURL[i-1] == '?' || songURL[i-1] == '&') {
			id = songURL[i+len("id="):]
			if end := strings.IndexAny(id, "&#"); end >= 0 {
				id = id[:end]
			}
		}
		next := strings.Index(songURL[i+1:], "id=")
		if next < 0 {
			break
		}
		i += next + 1
	}
	return id
}

// ParseDuration converts a "mm:ss" or "hh:mm:ss" display duration into whole seconds.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}

	return total, nil
}
