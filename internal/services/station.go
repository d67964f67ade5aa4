package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

// Station composes a [Searcher], a [Surface] and a [KeywordNormalizer] into a [MusicSource].
type Station struct {
	name       string
	searcher   Searcher
	surface    Surface
	normalizer KeywordNormalizer
}

var _ MusicSource = (*Station)(nil)

// NewStation assembles a Station from its parts. A nil normalizer leaves keywords unchanged.
func NewStation(name string, searcher Searcher, surface Surface, normalizer KeywordNormalizer) *Station {
	if normalizer == nil {
		normalizer = identityNormalizer{}
	}
	return &Station{name: name, searcher: searcher, surface: surface, normalizer: normalizer}
}

// StationOpts contains configuration for [NewStationFromConfig].
type StationOpts struct {
	Name     string
	Station  shared.StationConfig
	Playback shared.PlaybackConfig
	Search   shared.SearchConfig
	Client   *StationClient // Defaults to one built from Playback
	Opener   Opener         // Defaults to shared.OpenBrowser when Playback.LaunchBrowser is set
	Logger   *log.Logger
}

// NewStationFromConfig builds the adapter selected by the station kind.
func NewStationFromConfig(opts StationOpts) (*Station, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "station", opts.Name)

	client := opts.Client
	if client == nil {
		client = NewStationClient(nil, opts.Playback.ProbeTimeout.Duration, opts.Playback.RequestsPerSecond)
	}

	var searcher Searcher
	switch strings.ToLower(opts.Station.Kind) {
	case "", "netease":
		searcher = NewNeteaseSearcher(client, opts.Station, logger)
	case "html":
		s, err := NewHTMLSearcher(client, opts.Station, logger)
		if err != nil {
			return nil, err
		}
		searcher = s
	default:
		return nil, fmt.Errorf("%w: unknown station kind %q", shared.ErrInvalidConfig, opts.Station.Kind)
	}

	opener := opts.Opener
	if opener == nil && opts.Playback.LaunchBrowser {
		opener = shared.OpenBrowser
	}

	surface := NewBrowserSurface(client, opts.Station.HomePage, opener, logger)
	normalizer := NewKeywordNormalizer(opts.Search.TraditionalToSimplified, logger)

	return NewStation(opts.Name, searcher, surface, normalizer), nil
}

func (s *Station) Name() string { return s.name }

func (s *Station) Search(ctx context.Context, keyword string) (int, error) {
	return s.searcher.Search(ctx, s.normalizer.Normalize(keyword))
}

func (s *Station) FetchResults(ctx context.Context) ([]models.Track, error) {
	return s.searcher.FetchResults(ctx)
}

func (s *Station) Play(ctx context.Context, url string) (bool, error) {
	return s.surface.Play(ctx, url)
}

func (s *Station) GoHome(ctx context.Context) error {
	return s.surface.GoHome(ctx)
}
