package validation

import (
	"fmt"
	"strings"

	"github.com/tuneport/ferry/internal/errors"
)

// MaxBatchSize caps how many URLs one conversion request may carry.
const MaxBatchSize = 10

// allowedHosts are matched as lowercase substrings, not parsed hosts.
// A URL whose query string happens to contain one of these is accepted;
// that tolerance is deliberate and keeps the check dependency-free.
var allowedHosts = []string{
	"youtube.com",
	"youtu.be",
}

// IsAllowedURL reports whether the URL points at a supported source.
func IsAllowedURL(u string) bool {
	lower := strings.ToLower(u)
	for _, host := range allowedHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// ValidateBatch checks a conversion request's URL list before any external
// process runs. It fails fast: the first offending URL aborts the whole
// batch. Returns nil when the batch is acceptable.
func ValidateBatch(urls []string) *errors.AppError {
	if len(urls) == 0 {
		return errors.NewValidationError(
			"no URLs provided",
			"EMPTY_BATCH",
			"Send at least one URL in the urls array.",
		)
	}
	if len(urls) > MaxBatchSize {
		return errors.NewValidationError(
			fmt.Sprintf("too many URLs: %d (maximum %d per request)", len(urls), MaxBatchSize),
			"BATCH_TOO_LARGE",
			fmt.Sprintf("Split the request into batches of at most %d URLs.", MaxBatchSize),
		)
	}
	for _, u := range urls {
		if !IsAllowedURL(u) {
			return errors.NewValidationError(
				fmt.Sprintf("URL not allowed: %s", u),
				"URL_NOT_ALLOWED",
				"Only youtube.com and youtu.be links are supported.",
			)
		}
	}
	return nil
}
