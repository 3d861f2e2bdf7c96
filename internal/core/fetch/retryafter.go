package fetch

import (
	"net/http"
	"time"
)

// retryAfterHeader reads a server-provided Retry-After hint, accepting both
// the delta-seconds and HTTP-date forms.
func retryAfterHeader(resp *http.Response) (time.Duration, string) {
	if resp == nil || resp.Header == nil {
		return 0, ""
	}

	retry := resp.Header.Get("Retry-After")
	if retry == "" {
		return 0, ""
	}

	if seconds, err := time.ParseDuration(retry + "s"); err == nil {
		return seconds, retry
	}
	if parsed, err := http.ParseTime(retry); err == nil {
		return time.Until(parsed), retry
	}

	return 0, retry
}
