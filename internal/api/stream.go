package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tuneport/ferry/internal/services/converter"
	"github.com/tuneport/ferry/internal/validation"
)

// HandleConvertStream relays yt-dlp progress to the caller as a
// server-sent-event stream, one JSON event per data line. This path is
// observational only: the done event names the produced file but the
// bytes must be fetched through the synchronous endpoint.
func (s *Server) HandleConvertStream(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// arity bounds fail fast; per-URL allow-list checks happen inside the
	// stream so one bad URL does not silence the rest
	if len(req.URLs) == 0 {
		writeDetail(w, http.StatusBadRequest, "no URLs provided")
		return
	}
	if len(req.URLs) > validation.MaxBatchSize {
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("too many URLs: %d (maximum %d per request)", len(req.URLs), validation.MaxBatchSize))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	emit := func(e converter.Event) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := s.converter.ConvertStream(ctx, req.URLs, emit); err != nil {
		// the client went away mid-stream; nothing left to tell them
		s.logger.Debug("progress stream ended early", "error", err)
	}
}
