// Scraping [Searcher] for stations that render search results server side
package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

// HTMLSearcher implements [Searcher] by parsing the station's search page with [goquery] selectors.
type HTMLSearcher struct {
	client  *StationClient
	station shared.StationConfig
	logger  *log.Logger
	page    *goquery.Document
	pageURL *url.URL
}

// NewHTMLSearcher creates an HTMLSearcher. The station must define selector result_list.
func NewHTMLSearcher(client *StationClient, station shared.StationConfig, logger *log.Logger) (*HTMLSearcher, error) {
	sel := station.Selectors
	if sel.ResultList == "" || sel.Title == "" || sel.SongURL == "" {
		return nil, fmt.Errorf("%w: html station needs result_list, title and song_url selectors", shared.ErrInvalidConfig)
	}
	return &HTMLSearcher{client: client, station: station, logger: logger}, nil
}

// Search loads the result page and returns the displayed result count, or the row count when the page shows none.
func (h *HTMLSearcher) Search(ctx context.Context, keyword string) (int, error) {
	pageURL := fillKeyword(h.station.SearchURL, keyword)
	h.logger.Debug("loading search page", "keyword", keyword, "url", pageURL)

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return 0, shared.NewSourceError("search", fmt.Errorf("invalid search url: %w", err))
	}

	body, err := h.client.Get(ctx, pageURL)
	if err != nil {
		return 0, shared.NewSourceError("search", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, shared.NewSourceError("search", fmt.Errorf("failed to parse HTML: %w", err))
	}

	h.page = doc
	h.pageURL = parsedURL

	if sel := h.station.Selectors.ResultCount; sel != "" {
		if n, ok := leadingNumber(doc.Find(sel).First().Text()); ok {
			return n, nil
		}
	}

	return doc.Find(h.station.Selectors.ResultList).Length(), nil
}

// FetchResults parses the rows of the last loaded page. Rows missing a title or song link are skipped.
func (h *HTMLSearcher) FetchResults(context.Context) ([]models.Track, error) {
	if h.page == nil {
		return []models.Track{}, nil
	}

	sel := h.station.Selectors
	tracks := []models.Track{}

	h.page.Find(sel.ResultList).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if h.station.ResultLimit > 0 && len(tracks) >= h.station.ResultLimit {
			return false
		}

		track, err := h.parseRow(row)
		if err != nil {
			h.logger.Debug("skipping result row", "row", i, "err", err)
			return true
		}

		tracks = append(tracks, track)
		return true
	})

	return tracks, nil
}

func (h *HTMLSearcher) parseRow(row *goquery.Selection) (models.Track, error) {
	sel := h.station.Selectors

	titleNode := row.Find(sel.Title).First()
	title := strings.TrimSpace(titleNode.Text())
	if sel.TitleAttr != "" {
		if v, ok := titleNode.Attr(sel.TitleAttr); ok && strings.TrimSpace(v) != "" {
			title = strings.TrimSpace(v)
		}
	}
	if title == "" {
		return models.Track{}, fmt.Errorf("missing title")
	}

	href, ok := row.Find(sel.SongURL).First().Attr("href")
	if !ok || href == "" {
		return models.Track{}, fmt.Errorf("missing song link")
	}
	songURL := href
	if ref, err := url.Parse(href); err == nil && h.pageURL != nil {
		songURL = h.pageURL.ResolveReference(ref).String()
	}

	songID := SongIDFromURL(songURL)
	if songID == "" {
		return models.Track{}, fmt.Errorf("no song id in %s", songURL)
	}

	duration := 0
	if sel.Duration != "" {
		d, err := ParseDuration(row.Find(sel.Duration).First().Text())
		if err != nil {
			return models.Track{}, err
		}
		duration = d
	}

	return models.Track{
		Singer:   firstText(row, sel.Singer),
		Title:    title,
		SongURL:  songURL,
		SongID:   songID,
		TrueURL:  fillSongID(h.station.TrueURL, songID),
		Duration: duration,
	}, nil
}

// firstText returns the text of the first selector in the fallback list that matches something non-empty.
func firstText(row *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(row.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// leadingNumber extracts the first run of digits in s, ignoring thousands separators.
func leadingNumber(s string) (int, bool) {
	var digits strings.Builder
	started := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			started = true
		case started && r == ',':
		case started:
			n, err := strconv.Atoi(digits.String())
			return n, err == nil
		}
	}
	if !started {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	return n, err == nil
}
