package converter

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
)

// ArchiveName is the fixed download name for multi-file responses.
const ArchiveName = "downloads.zip"

// BuildArchive packs the given audio files into a flat DEFLATE zip at
// dest. Entries are named by base name only, no directory nesting.
func BuildArchive(paths []string, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, p := range paths {
		if err := addEntry(zw, p); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addEntry(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
