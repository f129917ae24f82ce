package extractor

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuneport/ferry/internal/errors"
)

// thumbnailExts are the image formats yt-dlp may leave behind even when
// asked to convert thumbnails to jpg.
var thumbnailExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// ScanOutputDir classifies the files an extraction left behind. yt-dlp
// derives names from the video title, so artifacts are found by
// extension, not by a fixed name: the audio file (required), the
// info-json sidecar (optional, warn when absent) and a thumbnail
// (optional). audioFormat is the extension without the dot, e.g. "mp3".
func ScanOutputDir(dir, audioFormat string, logger *slog.Logger) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewInternalError("failed to read job directory", "JOB_DIR_READ_FAILED", err)
	}

	audioExt := "." + strings.ToLower(audioFormat)
	res := &Result{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch ext := strings.ToLower(filepath.Ext(entry.Name())); {
		case ext == audioExt:
			res.AudioPath = path
		case ext == ".json":
			res.InfoPath = path
		case thumbnailExts[ext]:
			res.ThumbPath = path
		}
	}

	if res.AudioPath == "" {
		return nil, errors.NewExtractionError("no audio file produced", "NO_AUDIO_OUTPUT", nil)
	}
	if res.InfoPath == "" {
		logger.Warn("no metadata sidecar produced, skipping tag embedding", "dir", dir)
	}
	return res, nil
}
