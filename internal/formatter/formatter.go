// package formatter renders tracks and playlists for the console and exports playlists to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertthunder/fishstation/internal/models"
)

// Format names a playlist export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat maps user input to a [Format]. Empty input selects CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format %q (csv, markdown, text)", s)
	}
}

// FormatDuration renders whole seconds as m:ss, or h:mm:ss from one hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ResultLine renders search result i.
func ResultLine(i int, t models.Track) string {
	return fmt.Sprintf("%d singer: %s\ttitle: %s\turl: %s", i, t.Singer, t.Title, t.SongURL)
}

// TrackLine renders track i of a playlist, marking the currently playing one.
func TrackLine(i int, t models.Track, playing bool) string {
	marker := " "
	if playing {
		marker = ">"
	}
	return fmt.Sprintf("%s %d %s [%s]", marker, i, t.Label(), FormatDuration(t.Duration))
}

// PlaylistLine renders playlist i, marking the selected one.
func PlaylistLine(i int, p models.Playlist, selected bool) string {
	marker := " "
	if selected {
		marker = "*"
	}
	return fmt.Sprintf("%s %d %s (%d tracks)", marker, i, p.Name, len(p.Tracks))
}

// TotalDuration sums track durations in seconds.
func TotalDuration(p models.Playlist) int {
	total := 0
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// ExportToCSV converts a Playlist to CSV format with columns: Position, Singer, Title, Duration, SongID, SongURL, TrueURL
func ExportToCSV(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Singer", "Title", "Duration", "SongID", "SongURL", "TrueURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range p.Tracks {
		record := []string{
			strconv.Itoa(i),
			track.Singer,
			track.Title,
			strconv.Itoa(track.Duration),
			track.SongID,
			track.SongURL,
			track.TrueURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Playlist to Markdown with one linked line per track
func ExportToMarkdown(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", p.Name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(p.Tracks)))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n\n", FormatDuration(TotalDuration(p))))

	buf.WriteString("## Tracks\n\n")
	for i, track := range p.Tracks {
		title := track.Title
		if track.SongURL != "" {
			title = fmt.Sprintf("[%s](%s)", track.Title, track.SongURL)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, track.Singer, title, FormatDuration(track.Duration)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Playlist to plain text format
func ExportToText(p models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", p.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(p.Tracks)))

	for i, track := range p.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track.Label()))
	}

	return buf.Bytes(), nil
}

// playlistMetadata is the JSON sidecar written next to a CSV export
type playlistMetadata struct {
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
	Duration   int    `json:"duration"`
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(p models.Playlist) ([]byte, error) {
	return json.MarshalIndent(playlistMetadata{
		Name:       p.Name,
		TrackCount: len(p.Tracks),
		Duration:   TotalDuration(p),
	}, "", "  ")
}

// Slug turns a playlist name into a file name: letters and digits are kept, runs of anything else become "_".
func Slug(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			sep = false
			continue
		}
		if !sep && b.Len() > 0 {
			b.WriteByte('_')
			sep = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		return "playlist"
	}
	return slug
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to the slug of the playlist name as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(p models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(p.Name)
	}

	csvData, err := ExportToCSV(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to {dir}/README.md, defaulting dir to the slug of the playlist name.
func WriteMarkdownExport(p models.Playlist, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = Slug(p.Name)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {slug}_tracks.txt as the filename.
func WriteTextExport(p models.Playlist, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", Slug(p.Name))
	}

	textData, err := ExportToText(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteExport writes p in format f under base (or the default name when empty) and returns the files created.
func WriteExport(p models.Playlist, f Format, base string) ([]string, error) {
	switch f {
	case FormatCSV:
		res, err := WriteCSVExport(p, base)
		if err != nil {
			return nil, err
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(p, base)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(p, base)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}
