// NetEase Cloud Music [Searcher] implementation
//
// Uses the public web search API, which returns JSON rather than a rendered page.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

// neteaseSearchResult is the subset of the search API response the console needs.
type neteaseSearchResult struct {
	Code   int `json:"code"`
	Result struct {
		SongCount int `json:"songCount"`
		Songs     []struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Duration int `json:"duration"` // milliseconds
		} `json:"songs"`
	} `json:"result"`
}

// NeteaseSearcher implements [Searcher] for NetEase Cloud Music.
type NeteaseSearcher struct {
	client  *StationClient
	station shared.StationConfig
	logger  *log.Logger
	last    []models.Track
}

// NewNeteaseSearcher creates a NeteaseSearcher for the station templates.
func NewNeteaseSearcher(client *StationClient, station shared.StationConfig, logger *log.Logger) *NeteaseSearcher {
	return &NeteaseSearcher{client: client, station: station, logger: logger}
}

// Search queries the API and remembers the returned songs for [NeteaseSearcher.FetchResults].
func (n *NeteaseSearcher) Search(ctx context.Context, keyword string) (int, error) {
	endpoint := fillKeyword(n.station.SearchURL, keyword)
	n.logger.Debug("searching netease", "keyword", keyword, "url", endpoint)

	body, err := n.client.Get(ctx, endpoint)
	if err != nil {
		return 0, shared.NewSourceError("search", err)
	}

	var result neteaseSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, shared.NewSourceError("search", fmt.Errorf("failed to decode search response: %w", err))
	}
	if result.Code != 0 && result.Code != 200 {
		return 0, shared.NewSourceError("search", fmt.Errorf("station returned code %d", result.Code))
	}

	tracks := make([]models.Track, 0, len(result.Result.Songs))
	for _, song := range result.Result.Songs {
		if n.station.ResultLimit > 0 && len(tracks) >= n.station.ResultLimit {
			break
		}

		artists := make([]string, 0, len(song.Artists))
		for _, a := range song.Artists {
			artists = append(artists, a.Name)
		}

		id := strconv.FormatInt(song.ID, 10)
		tracks = append(tracks, models.Track{
			Singer:   strings.Join(artists, "/"),
			Title:    song.Name,
			SongURL:  fillSongID(n.station.SongURL, id),
			SongID:   id,
			TrueURL:  fillSongID(n.station.TrueURL, id),
			Duration: song.Duration / 1000,
		})
	}
	n.last = tracks

	count := result.Result.SongCount
	if count == 0 {
		count = len(tracks)
	}
	return count, nil
}

// FetchResults returns the songs of the last search.
func (n *NeteaseSearcher) FetchResults(context.Context) ([]models.Track, error) {
	out := make([]models.Track, len(n.last))
	copy(out, n.last)
	return out, nil
}
