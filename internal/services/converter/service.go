package converter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tuneport/ferry/internal/services/extractor"
	"github.com/tuneport/ferry/internal/services/tagging"
)

// Outcome is the tagged per-URL result of one conversion. Exactly one of
// File or Error is set. Outcomes are produced once, never mutated, and
// collected in input order.
type Outcome struct {
	URL   string `json:"url"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`

	path string
}

// Path returns the filesystem location of a successful outcome's audio
// file, or "" for failures.
func (o Outcome) Path() string {
	return o.path
}

// BatchResult aggregates all per-URL outcomes for one request.
// len(Outcomes) always equals the number of input URLs.
type BatchResult struct {
	JobID    string
	JobDir   string
	Outcomes []Outcome
}

// Successes returns the successful outcomes in input order.
func (b *BatchResult) Successes() []Outcome {
	var ok []Outcome
	for _, o := range b.Outcomes {
		if o.Error == "" {
			ok = append(ok, o)
		}
	}
	return ok
}

// Service orchestrates the extract→tag pipeline for URL batches.
type Service struct {
	extractor extractor.Extractor
	embedder  *tagging.Embedder
	logger    *slog.Logger
}

func NewService(ext extractor.Extractor, embedder *tagging.Embedder, logger *slog.Logger) *Service {
	return &Service{
		extractor: ext,
		embedder:  embedder,
		logger:    logger,
	}
}

// ConvertBatch processes every URL sequentially inside a fresh job
// directory and records one outcome per URL. A URL's failure never aborts
// its siblings. The caller owns the returned JobDir and must remove it
// once the response is sent.
func (s *Service) ConvertBatch(ctx context.Context, urls []string) (*BatchResult, error) {
	jobID := uuid.New().String()
	jobDir, err := os.MkdirTemp("", "ferry-"+jobID[:8]+"-")
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		JobID:    jobID,
		JobDir:   jobDir,
		Outcomes: make([]Outcome, 0, len(urls)),
	}

	for i, u := range urls {
		urlDir := filepath.Join(jobDir, "url-"+uuid.New().String()[:8])
		if err := os.Mkdir(urlDir, 0755); err != nil {
			result.Outcomes = append(result.Outcomes, Outcome{URL: u, Error: "failed to create working directory"})
			continue
		}

		s.logger.Info("converting URL", "job_id", jobID, "index", i, "url", u)
		audioPath, err := s.convertOne(ctx, u, urlDir)
		if err != nil {
			s.logger.Error("conversion failed", "job_id", jobID, "url", u, "error", err)
			result.Outcomes = append(result.Outcomes, Outcome{URL: u, Error: err.Error()})
			continue
		}
		result.Outcomes = append(result.Outcomes, Outcome{
			URL:  u,
			File: filepath.Base(audioPath),
			path: audioPath,
		})
	}

	return result, nil
}

// convertOne runs the extract→tag pipeline for a single URL inside its
// own directory and returns the produced audio file path.
func (s *Service) convertOne(ctx context.Context, url, dir string) (string, error) {
	res, err := s.extractor.Extract(ctx, url, dir)
	if err != nil {
		return "", err
	}
	s.embedTags(url, res)
	return res.AudioPath, nil
}

// embedTags loads the sidecar and writes tags plus cover art. Every
// failure here is logged and swallowed: a tagless audio file is still a
// successful outcome.
func (s *Service) embedTags(url string, res *extractor.Result) {
	if res.InfoPath == "" {
		return
	}
	md, err := tagging.LoadMetadata(res.InfoPath)
	if err != nil {
		s.logger.Warn("skipping tag embedding", "url", url, "error", err)
		return
	}
	if err := s.embedder.Embed(res.AudioPath, md, res.ThumbPath); err != nil {
		s.logger.Warn("tag embedding failed, keeping untagged audio", "url", url, "error", err)
	}
}
