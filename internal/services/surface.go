package services

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/shared"
)

// Opener displays a URL on the playback surface, normally [shared.OpenBrowser].
type Opener func(url string) error

// BrowserSurface implements [Surface] with the system browser.
//
// Play first probes the playable URL: stations redirect tracks that need a paid account to an
// HTML page, so only an audio or video response counts as playback having started.
type BrowserSurface struct {
	client   *StationClient
	homePage string
	open     Opener
	logger   *log.Logger
}

// NewBrowserSurface creates a BrowserSurface. A nil opener probes without displaying anything.
func NewBrowserSurface(client *StationClient, homePage string, open Opener, logger *log.Logger) *BrowserSurface {
	if open == nil {
		open = func(string) error { return nil }
	}
	return &BrowserSurface{client: client, homePage: homePage, open: open, logger: logger}
}

// Play probes url and opens it on the surface when it serves media.
func (b *BrowserSurface) Play(ctx context.Context, url string) (bool, error) {
	playable, err := b.probe(ctx, url)
	if err != nil {
		return false, shared.NewSourceError("play", err)
	}
	if !playable {
		b.logger.Info("track refused playback", "url", url)
		return false, nil
	}

	if err := b.open(url); err != nil {
		return false, shared.NewSourceError("play", err)
	}

	b.logger.Debug("playback started", "url", url)
	return true, nil
}

// GoHome shows the station home page, leaving any active playback.
func (b *BrowserSurface) GoHome(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return shared.NewSourceError("home", err)
	}
	if b.homePage == "" {
		return nil
	}
	if err := b.open(b.homePage); err != nil {
		return shared.NewSourceError("home", err)
	}
	return nil
}

func (b *BrowserSurface) probe(ctx context.Context, url string) (bool, error) {
	resp, err := b.client.Do(ctx, url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 || resp.StatusCode == 403 {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false, nil
	}

	return strings.HasPrefix(mediaType, "audio/") || strings.HasPrefix(mediaType, "video/"), nil
}
