package tagging

import (
	"log/slog"
	"os"

	"github.com/bogem/id3v2/v2"

	"github.com/tuneport/ferry/internal/errors"
)

// id3Version is written explicitly rather than taking the library default:
// v2.3 is what most players and car stereos still expect.
const id3Version = 3

// Embedder writes descriptive tags and cover art into produced audio files.
// Its failures are logged by the orchestrator and never fail a conversion.
type Embedder struct {
	logger *slog.Logger
}

func NewEmbedder(logger *slog.Logger) *Embedder {
	return &Embedder{logger: logger}
}

// Embed writes title, artist, album and the source URL into the file's tag
// container, then attaches the thumbnail as front-cover art when one
// exists. Cover attachment failure is logged and swallowed here; only a
// failure to write the text tags is returned.
func (e *Embedder) Embed(audioPath string, md *Metadata, thumbPath string) error {
	tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true})
	if err != nil {
		return errors.NewTaggingError("failed to open tag container", "TAG_OPEN_FAILED", err)
	}
	defer tag.Close()

	tag.SetVersion(id3Version)
	tag.SetDefaultEncoding(id3v2.EncodingUTF16)

	if md.Title != "" {
		tag.SetTitle(md.Title)
	}
	if artist := md.ArtistOrUploader(); artist != "" {
		tag.SetArtist(artist)
	}
	tag.SetAlbum(md.AlbumOrDefault())
	if md.WebpageURL != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF16,
			Description: "WEBSITE",
			Value:       md.WebpageURL,
		})
	}

	if err := tag.Save(); err != nil {
		return errors.NewTaggingError("failed to save tags", "TAG_SAVE_FAILED", err)
	}

	if thumbPath != "" {
		e.attachCover(audioPath, thumbPath)
	}
	return nil
}

// attachCover re-opens the tag container and embeds the thumbnail as
// front-cover art. Any failure is logged and swallowed: a malformed
// thumbnail must never fail the conversion.
func (e *Embedder) attachCover(audioPath, thumbPath string) {
	img, err := os.ReadFile(thumbPath)
	if err != nil {
		e.logger.Warn("failed to read thumbnail, skipping cover art", "path", thumbPath, "error", err)
		return
	}

	tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true})
	if err != nil {
		e.logger.Warn("failed to re-open tag container for cover art", "path", audioPath, "error", err)
		return
	}
	defer tag.Close()

	tag.SetVersion(id3Version)
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF16,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     img,
	})

	if err := tag.Save(); err != nil {
		e.logger.Warn("failed to save cover art", "path", audioPath, "error", err)
	}
}
