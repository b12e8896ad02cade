package upstream

import (
	"fmt"
	"net/url"

	"github.com/mozilla-ai/mcpconnect/internal/errors"
)

// ValidateBaseURL normalizes a base URL and checks that it is an absolute http(s) URL.
// Errors wrap errors.ErrBadRequest.
func ValidateBaseURL(baseURL string) (string, error) {
	normalized := NormalizeBaseURL(baseURL)
	if normalized == "" {
		return "", fmt.Errorf("%w: base URL cannot be empty", errors.ErrBadRequest)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base URL '%s': %w", errors.ErrBadRequest, normalized, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: base URL '%s' must use http or https", errors.ErrBadRequest, normalized)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: base URL '%s' is missing a host", errors.ErrBadRequest, normalized)
	}

	return normalized, nil
}
