package extractor

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tuneport/ferry/internal/config"
	"github.com/tuneport/ferry/internal/errors"
	"github.com/tuneport/ferry/internal/utils"
)

// maxStderrBytes bounds how much yt-dlp diagnostic text travels in an error.
const maxStderrBytes = 200

// authCheckPhrases are matched against yt-dlp stderr to recognize a
// sign-in or bot challenge. Known fragility: yt-dlp wording changes
// between releases.
var authCheckPhrases = []string{
	"sign in to confirm",
	"not a bot",
	"--cookies",
}

// YtDlp invokes the yt-dlp binary.
type YtDlp struct {
	binary     string
	format     string
	quality    string
	thumbnail  string
	timeout    time.Duration
	cookieFile string
	logger     *slog.Logger
}

// NewYtDlp creates an Extractor backed by the yt-dlp binary. cookieFile
// may be empty; when set, it is copied into each job directory before the
// run so the subprocess never touches the shared file.
func NewYtDlp(cfg config.ExtractorConfig, cookieFile string, logger *slog.Logger) *YtDlp {
	return &YtDlp{
		binary:     cfg.Binary,
		format:     cfg.AudioFormat,
		quality:    cfg.AudioQuality,
		thumbnail:  cfg.ThumbnailFormat,
		timeout:    cfg.Timeout(),
		cookieFile: cookieFile,
		logger:     logger,
	}
}

// Extract runs yt-dlp to completion inside dir and classifies the output.
func (y *YtDlp) Extract(ctx context.Context, url, dir string) (*Result, error) {
	return y.run(ctx, url, dir, nil)
}

// ExtractStream runs yt-dlp and relays each stdout line to onLine as it
// appears. No whole-output buffering happens on the stdout path.
func (y *YtDlp) ExtractStream(ctx context.Context, url, dir string, onLine func(string)) (*Result, error) {
	return y.run(ctx, url, dir, onLine)
}

func (y *YtDlp) run(ctx context.Context, url, dir string, onLine func(string)) (*Result, error) {
	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	cookiePath, err := y.stageCookies(dir)
	if err != nil {
		return nil, errors.NewInternalError("failed to stage cookie file", "COOKIE_STAGE_FAILED", err)
	}

	args := y.buildArgs(url, dir, cookiePath)
	cmd := exec.CommandContext(ctx, y.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if onLine == nil {
		cmd.Stdout = io.Discard
		if err := cmd.Run(); err != nil {
			return nil, y.classifyFailure(stderr.String(), err)
		}
	} else {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, errors.NewInternalError("failed to open stdout pipe", "STDOUT_PIPE_FAILED", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, errors.NewExtractionError("failed to start yt-dlp", "YTDLP_START_FAILED", err)
		}
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			onLine(scanner.Text())
		}
		if err := cmd.Wait(); err != nil {
			return nil, y.classifyFailure(stderr.String(), err)
		}
	}

	return ScanOutputDir(dir, y.format, y.logger)
}

// buildArgs assembles the yt-dlp invocation for one URL. Output names are
// derived from the video title, truncated so long titles stay within
// filesystem limits.
func (y *YtDlp) buildArgs(url, dir, cookiePath string) []string {
	outTemplate := filepath.Join(dir, "%(title).200s [%(id)s].%(ext)s")
	args := []string{
		"--no-playlist",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", y.format,
		"--audio-quality", y.quality,
		"--output", outTemplate,
		"--write-info-json",
		"--write-thumbnail",
		"--convert-thumbnails", y.thumbnail,
		"--no-warnings",
	}
	if cookiePath != "" {
		args = append(args, "--cookies", cookiePath)
	}
	return append(args, url)
}

// stageCookies copies the shared cookie file into the job directory and
// returns the copy's path. yt-dlp rewrites the cookie file it is given,
// so it must never point at the shared original. Returns "" when no
// cookie file is configured.
func (y *YtDlp) stageCookies(dir string) (string, error) {
	if y.cookieFile == "" {
		return "", nil
	}
	src, err := os.Open(y.cookieFile)
	if err != nil {
		if os.IsNotExist(err) {
			y.logger.Warn("configured cookie file missing, continuing without cookies", "path", y.cookieFile)
			return "", nil
		}
		return "", err
	}
	defer src.Close()

	dstPath := filepath.Join(dir, "cookies.txt")
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return dstPath, nil
}

// classifyFailure turns a nonzero yt-dlp exit into a per-URL error,
// upgrading recognizable sign-in challenges to an auth-check error.
func (y *YtDlp) classifyFailure(stderr string, cause error) *errors.AppError {
	lower := strings.ToLower(stderr)
	for _, phrase := range authCheckPhrases {
		if strings.Contains(lower, phrase) {
			return errors.NewAuthCheckError(cause)
		}
	}
	detail := utils.TruncateError(stderr, maxStderrBytes)
	if detail == "" {
		detail = cause.Error()
	}
	return errors.NewExtractionError("yt-dlp failed: "+detail, "YTDLP_EXIT", cause)
}
