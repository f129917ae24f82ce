package tagging

import (
	"encoding/json"
	"os"

	"github.com/tuneport/ferry/internal/errors"
)

// Metadata is the subset of the yt-dlp info-json sidecar used for tagging.
// Read once, consumed by Embed, then discarded.
type Metadata struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Uploader   string `json:"uploader"`
	Album      string `json:"album"`
	WebpageURL string `json:"webpage_url"`
}

// LoadMetadata decodes the sidecar file produced next to the audio output.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewTaggingError("failed to read metadata sidecar", "SIDECAR_READ_FAILED", err)
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.NewTaggingError("failed to parse metadata sidecar", "SIDECAR_PARSE_FAILED", err)
	}
	return &md, nil
}

// ArtistOrUploader prefers the explicit artist field and falls back to the
// uploader name.
func (m *Metadata) ArtistOrUploader() string {
	if m.Artist != "" {
		return m.Artist
	}
	return m.Uploader
}

// AlbumOrDefault falls back to a fixed album name when the source carries
// none.
func (m *Metadata) AlbumOrDefault() string {
	if m.Album != "" {
		return m.Album
	}
	return "YouTube"
}
