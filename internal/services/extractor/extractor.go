package extractor

import (
	"context"
)

// Result points at the artifacts one extraction left in its job directory.
// InfoPath and ThumbPath are empty when the external tool produced no
// sidecar or thumbnail.
type Result struct {
	AudioPath string
	InfoPath  string
	ThumbPath string
}

// Extractor downloads one URL and transcodes it to audio inside an
// exclusively-owned directory.
type Extractor interface {
	// Extract runs to completion and returns the classified artifacts.
	Extract(ctx context.Context, url, dir string) (*Result, error)

	// ExtractStream behaves like Extract but calls onLine for every line
	// the tool writes to stdout, in emission order, as it appears.
	ExtractStream(ctx context.Context, url, dir string, onLine func(string)) (*Result, error)
}
