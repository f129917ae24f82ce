package converter

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tuneport/ferry/internal/validation"
)

// Event is one entry in the progress stream. Type is one of "progress",
// "done", "error", "finished" or "end".
type Event struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Line  string `json:"line,omitempty"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// EmitFunc delivers one event to the caller. Returning an error signals
// the caller is gone and relaying should stop.
type EmitFunc func(Event) error

// ConvertStream processes URLs sequentially, relaying every line of the
// external tool's output as a progress event the moment it appears.
// Unlike ConvertBatch, URLs are independent here: an invalid URL yields
// an immediate error event and the next URL proceeds. Produced files are
// not returned on this path; the done event carries the file name so a
// client can fetch it through the synchronous endpoint.
func (s *Service) ConvertStream(ctx context.Context, urls []string, emit EmitFunc) error {
	for _, u := range urls {
		if err := s.streamOne(ctx, u, emit); err != nil {
			return err
		}
		if err := emit(Event{Type: "finished", URL: u}); err != nil {
			return err
		}
	}
	return emit(Event{Type: "end"})
}

func (s *Service) streamOne(ctx context.Context, u string, emit EmitFunc) error {
	if !validation.IsAllowedURL(u) {
		return emit(Event{Type: "error", URL: u, Error: "URL not allowed"})
	}

	jobDir, err := os.MkdirTemp("", "ferry-stream-"+uuid.New().String()[:8]+"-")
	if err != nil {
		return emit(Event{Type: "error", URL: u, Error: "failed to create working directory"})
	}
	defer func() {
		if err := os.RemoveAll(jobDir); err != nil {
			s.logger.Warn("failed to remove job directory", "dir", jobDir, "error", err)
		}
	}()

	// emit errors inside the relay mean the client disconnected; remember
	// the first one and stop forwarding, but let the subprocess finish.
	var emitErr error
	res, err := s.extractor.ExtractStream(ctx, u, jobDir, func(line string) {
		if emitErr != nil {
			return
		}
		emitErr = emit(Event{Type: "progress", URL: u, Line: line})
	})
	if emitErr != nil {
		return emitErr
	}
	if err != nil {
		s.logger.Error("stream conversion failed", "url", u, "error", err)
		return emit(Event{Type: "error", URL: u, Error: err.Error()})
	}

	s.embedTags(u, res)
	return emit(Event{Type: "done", URL: u, File: filepath.Base(res.AudioPath)})
}
