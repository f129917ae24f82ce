package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tuneport/ferry/internal/config"
	"github.com/tuneport/ferry/internal/services/converter"
	"github.com/tuneport/ferry/internal/utils"
	"github.com/tuneport/ferry/internal/validation"
)

type Server struct {
	cfg       *config.Config
	converter *converter.Service
	logger    *slog.Logger
}

func NewServer(cfg *config.Config, conv *converter.Service, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		converter: conv,
		logger:    logger,
	}
}

// ConvertRequest is the body of both conversion endpoints.
type ConvertRequest struct {
	URLs []string `json:"urls"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Cookies bool   `json:"cookies"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Cookies: s.cfg.CookieFileAvailable(),
	})
}

// HandleConvert runs the whole batch synchronously and answers with a
// single audio file, a zip archive, or a 500 carrying every per-URL
// failure.
func (s *Server) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// fail fast: nothing runs until the whole batch validates
	if appErr := validation.ValidateBatch(req.URLs); appErr != nil {
		writeDetail(w, appErr.StatusCode, appErr.Message)
		return
	}

	result, err := s.converter.ConvertBatch(r.Context(), req.URLs)
	if err != nil {
		s.logger.Error("failed to start conversion job", "error", err)
		writeDetail(w, http.StatusInternalServerError, "failed to create job directory")
		return
	}
	defer s.removeJobDir(result.JobDir)

	successes := result.Successes()
	switch {
	case len(successes) == 0:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"detail":  "no URLs could be converted",
			"results": result.Outcomes,
		})
	case len(successes) == 1:
		s.serveFile(w, r, successes[0].Path(), "audio/mpeg")
	default:
		zipPath := filepath.Join(result.JobDir, converter.ArchiveName)
		paths := make([]string, len(successes))
		for i, o := range successes {
			paths[i] = o.Path()
		}
		if err := converter.BuildArchive(paths, zipPath); err != nil {
			s.logger.Error("failed to build archive", "job_id", result.JobID, "error", err)
			writeDetail(w, http.StatusInternalServerError, "failed to build archive")
			return
		}
		s.serveFile(w, r, zipPath, "application/zip")
	}
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", utils.ContentDisposition(filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func (s *Server) removeJobDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("failed to remove job directory", "dir", dir, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
