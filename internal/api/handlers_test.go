package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuneport/ferry/internal/config"
	"github.com/tuneport/ferry/internal/errors"
	"github.com/tuneport/ferry/internal/services/converter"
	"github.com/tuneport/ferry/internal/services/extractor"
	"github.com/tuneport/ferry/internal/services/tagging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeExtractor implements extractor.Extractor for handler tests. A URL
// listed in fail produces an extraction error; anything else drops an mp3
// named after the last path segment.
type fakeExtractor struct {
	fail  map[string]string
	calls int
}

func (f *fakeExtractor) produce(url, dir string) (*extractor.Result, error) {
	f.calls++
	if msg, ok := f.fail[url]; ok {
		return nil, errors.NewExtractionError(msg, "YTDLP_EXIT", nil)
	}
	name := url[strings.LastIndex(url, "/")+1:] + ".mp3"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio:"+name), 0644); err != nil {
		return nil, err
	}
	return &extractor.Result{AudioPath: path}, nil
}

func (f *fakeExtractor) Extract(_ context.Context, url, dir string) (*extractor.Result, error) {
	return f.produce(url, dir)
}

func (f *fakeExtractor) ExtractStream(_ context.Context, url, dir string, onLine func(string)) (*extractor.Result, error) {
	onLine("[download] 100%")
	return f.produce(url, dir)
}

func newTestServer(fake *fakeExtractor) *Server {
	logger := testLogger()
	conv := converter.NewService(fake, tagging.NewEmbedder(logger), logger)
	return NewServer(&config.Config{}, conv, logger)
}

func postConvert(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/convert", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.HandleConvert(rr, req)
	return rr
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&fakeExtractor{})
	req := httptest.NewRequest("GET", "/api/health", nil)
	rr := httptest.NewRecorder()

	srv.HandleHealth(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["cookies"])
}

func TestHandleConvert_InvalidBody(t *testing.T) {
	fake := &fakeExtractor{}
	srv := newTestServer(fake)

	req := httptest.NewRequest("POST", "/api/convert", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	srv.HandleConvert(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, fake.calls)
}

func TestHandleConvert_EmptyBatch(t *testing.T) {
	fake := &fakeExtractor{}
	srv := newTestServer(fake)

	rr := postConvert(t, srv, ConvertRequest{URLs: []string{}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "detail")
	assert.Zero(t, fake.calls, "the extractor must never run for an invalid batch")
}

func TestHandleConvert_TooManyURLs(t *testing.T) {
	fake := &fakeExtractor{}
	srv := newTestServer(fake)

	urls := make([]string, 11)
	for i := range urls {
		urls[i] = "https://youtu.be/v"
	}
	rr := postConvert(t, srv, ConvertRequest{URLs: urls})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, fake.calls)
}

func TestHandleConvert_DisallowedURL(t *testing.T) {
	fake := &fakeExtractor{}
	srv := newTestServer(fake)

	rr := postConvert(t, srv, ConvertRequest{URLs: []string{"https://notyoutube.example/x"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["detail"], "notyoutube.example")
	assert.Zero(t, fake.calls)
}

func TestHandleConvert_SingleFile(t *testing.T) {
	srv := newTestServer(&fakeExtractor{})

	rr := postConvert(t, srv, ConvertRequest{URLs: []string{"https://youtu.be/videoA"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/mpeg", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "videoA.mp3")
	assert.Equal(t, "audio:videoA.mp3", rr.Body.String())
}

func TestHandleConvert_OneSuccessRestFailed_StillSingleFile(t *testing.T) {
	fake := &fakeExtractor{fail: map[string]string{
		"https://youtu.be/bad": "yt-dlp failed: Video unavailable",
	}}
	srv := newTestServer(fake)

	rr := postConvert(t, srv, ConvertRequest{URLs: []string{"https://youtu.be/bad", "https://youtu.be/good"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/mpeg", rr.Header().Get("Content-Type"), "one success must yield a file, not an archive")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "good.mp3")
}

func TestHandleConvert_TwoSuccesses_Archive(t *testing.T) {
	srv := newTestServer(&fakeExtractor{})

	rr := postConvert(t, srv, ConvertRequest{URLs: []string{"https://youtu.be/A", "https://youtu.be/B"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/zip", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), converter.ArchiveName)

	zr, err := zip.NewReader(bytes.NewReader(rr.Body.Bytes()), int64(rr.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["A.mp3"])
	assert.True(t, names["B.mp3"])
}

func TestHandleConvert_AllFailed(t *testing.T) {
	fake := &fakeExtractor{fail: map[string]string{
		"https://youtu.be/a": "yt-dlp failed: Video unavailable",
		"https://youtu.be/b": "no audio file produced",
	}}
	srv := newTestServer(fake)

	urls := []string{"https://youtu.be/a", "https://youtu.be/b"}
	rr := postConvert(t, srv, ConvertRequest{URLs: urls})

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp struct {
		Detail  string              `json:"detail"`
		Results []converter.Outcome `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Detail)
	// one result per input URL so the caller can diagnose each
	require.Len(t, resp.Results, len(urls))
	for i, res := range resp.Results {
		assert.Equal(t, urls[i], res.URL)
		assert.NotEmpty(t, res.Error)
	}
}

func TestHandleConvert_CleansUpJobDir(t *testing.T) {
	srv := newTestServer(&fakeExtractor{})

	before, err := filepath.Glob(filepath.Join(os.TempDir(), "ferry-*"))
	require.NoError(t, err)

	rr := postConvert(t, srv, ConvertRequest{URLs: []string{"https://youtu.be/videoA"}})
	require.Equal(t, http.StatusOK, rr.Code)

	after, err := filepath.Glob(filepath.Join(os.TempDir(), "ferry-*"))
	require.NoError(t, err)
	assert.Len(t, after, len(before), "job directories must be removed once the response is sent")
}
