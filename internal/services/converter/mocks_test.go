package converter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/tuneport/ferry/internal/services/extractor"
	"github.com/tuneport/ferry/internal/services/tagging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockExtractor implements extractor.Extractor without running yt-dlp.
type mockExtractor struct {
	extractFn func(ctx context.Context, url, dir string) (*extractor.Result, error)
	streamFn  func(ctx context.Context, url, dir string, onLine func(string)) (*extractor.Result, error)

	extractCalls []string
	streamCalls  []string
}

func (m *mockExtractor) Extract(ctx context.Context, url, dir string) (*extractor.Result, error) {
	m.extractCalls = append(m.extractCalls, url)
	return m.extractFn(ctx, url, dir)
}

func (m *mockExtractor) ExtractStream(ctx context.Context, url, dir string, onLine func(string)) (*extractor.Result, error) {
	m.streamCalls = append(m.streamCalls, url)
	return m.streamFn(ctx, url, dir, onLine)
}

// produceAudio drops a named mp3 into dir and returns the matching Result,
// mimicking what a successful yt-dlp run leaves behind.
func produceAudio(t *testing.T, dir, name string) *extractor.Result {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio-bytes-"+name), 0644); err != nil {
		t.Fatal(err)
	}
	return &extractor.Result{AudioPath: path}
}

func newTestService(m *mockExtractor) *Service {
	return NewService(m, tagging.NewEmbedder(testLogger()), testLogger())
}
