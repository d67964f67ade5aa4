// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/fishstation/internal/models"
)

// MockSource is a test double for services.MusicSource.
//
// Play reports true unless the URL is listed in Refuse or Fail. Safe for use from a playback goroutine.
type MockSource struct {
	Results   []models.Track
	Count     int // Hint returned by Search, defaults to len(Results)
	SearchErr error
	FetchErr  error
	HomeErr   error
	Refuse    map[string]bool
	Fail      map[string]error

	mu       sync.Mutex
	keywords []string
	played   []string
	homes    int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Search(ctx context.Context, keyword string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywords = append(m.keywords, keyword)
	if m.SearchErr != nil {
		return 0, m.SearchErr
	}
	if m.Count > 0 {
		return m.Count, nil
	}
	return len(m.Results), nil
}

func (m *MockSource) FetchResults(ctx context.Context) ([]models.Track, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	out := make([]models.Track, len(m.Results))
	copy(out, m.Results)
	return out, nil
}

func (m *MockSource) Play(ctx context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, url)
	if err := m.Fail[url]; err != nil {
		return false, err
	}
	return !m.Refuse[url], nil
}

func (m *MockSource) GoHome(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.homes++
	return m.HomeErr
}

// Keywords returns the keywords passed to Search.
func (m *MockSource) Keywords() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keywords...)
}

// Played returns every URL passed to Play, refused ones included.
func (m *MockSource) Played() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.played...)
}

// HomeCalls returns how many times GoHome was called.
func (m *MockSource) HomeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.homes
}

// MemoryStore is an in-memory [models.Store]. SaveErr makes every Save fail.
type MemoryStore struct {
	Data    models.Collection
	LoadErr error
	SaveErr error
	Saves   int
	Closed  bool
}

func (m *MemoryStore) Load() (models.Collection, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Data == nil {
		return models.Collection{}, nil
	}
	return m.Data.Clone(), nil
}

func (m *MemoryStore) Save(c models.Collection) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Data = c.Clone()
	return nil
}

func (m *MemoryStore) Close() error {
	m.Closed = true
	return nil
}

// Confirmer answers every confirmation with Answer and records the prompts.
type Confirmer struct {
	Answer  bool
	Prompts []string
}

func (c *Confirmer) Confirm(prompt string) bool {
	c.Prompts = append(c.Prompts, prompt)
	return c.Answer
}

// ScriptedPrompter replays Lines as user input, returning [io.EOF] once they run out.
type ScriptedPrompter struct {
	Lines   []string
	Prompts []string
}

func NewScriptedPrompter(lines ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Lines: lines}
}

func (s *ScriptedPrompter) ReadLine(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Lines) == 0 {
		return "", io.EOF
	}
	line := s.Lines[0]
	s.Lines = s.Lines[1:]
	return strings.TrimSpace(line), nil
}

func (s *ScriptedPrompter) Confirm(prompt string) bool {
	line, err := s.ReadLine(prompt)
	return err == nil && (line == "y" || line == "Y")
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// SampleTracks returns n distinct tracks with ids "1".."n" and durations of one second.
func SampleTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := strconv.Itoa(i + 1)
		tracks[i] = models.Track{
			Singer:   "singer " + id,
			Title:    "title " + id,
			SongURL:  "https://music.example.com/song?id=" + id,
			SongID:   id,
			TrueURL:  "https://music.example.com/media/outer?id=" + id,
			Duration: 1,
		}
	}
	return tracks
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}
