package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Station  StationRef               `toml:"station"`
	Stations map[string]StationConfig `toml:"stations"`
	Storage  StorageConfig            `toml:"storage"`
	Playback PlaybackConfig           `toml:"playback"`
	Search   SearchConfig             `toml:"search"`
	Logging  LoggingConfig            `toml:"logging"`
}

// StationRef names the station table used for the session.
type StationRef struct {
	Name string `toml:"name"`
}

// StationConfig contains the URL templates and page selectors for one music station.
//
// Templates use $keyword$ and $song_id$ placeholders.
type StationConfig struct {
	Kind        string          `toml:"kind"`
	SearchURL   string          `toml:"search_url"`
	SongURL     string          `toml:"song_url"`
	TrueURL     string          `toml:"true_url"`
	HomePage    string          `toml:"home_page"`
	ResultLimit int             `toml:"result_limit"`
	Selectors   SelectorsConfig `toml:"selectors"`
}

// SelectorsConfig contains CSS selectors for stations whose search page is scraped.
type SelectorsConfig struct {
	ResultCount string   `toml:"result_count"`
	ResultList  string   `toml:"result_list"`
	Title       string   `toml:"title"`
	TitleAttr   string   `toml:"title_attr"`
	Singer      []string `toml:"singer"`
	SongURL     string   `toml:"song_url"`
	Duration    string   `toml:"duration"`
}

// StorageConfig selects the playlist store backend.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// PlaybackConfig contains playback surface settings.
type PlaybackConfig struct {
	ProbeTimeout      Duration `toml:"probe_timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	LaunchBrowser     bool     `toml:"launch_browser"`
}

// SearchConfig contains keyword handling settings.
type SearchConfig struct {
	TraditionalToSimplified bool `toml:"traditional_to_simplified"`
}

// LoggingConfig contains diagnostic log settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Duration is a [time.Duration] that decodes from TOML strings like "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads a .env file when present and overlays FISH_* variables onto the config.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("FISH_STATION"); v != "" {
		c.Station.Name = v
	}
	if v := os.Getenv("FISH_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("FISH_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("FISH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ActiveStation returns the station table selected by [StationRef.Name].
func (c *Config) ActiveStation() (StationConfig, error) {
	name := strings.TrimSpace(c.Station.Name)
	station, ok := c.Stations[name]
	if !ok {
		return StationConfig{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	if station.SearchURL == "" || station.TrueURL == "" {
		return StationConfig{}, fmt.Errorf("%w: station %q needs search_url and true_url", ErrInvalidConfig, name)
	}
	return station, nil
}
