package engine

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is a validated absolute HTTP(S) URL. The only way to obtain one is
// ParseTarget, so holders never need to re-validate.
type Target struct {
	url *url.URL
}

func ParseTarget(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidURL)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return &Target{url: parsed}, nil
}

func (t *Target) String() string {
	return t.url.String()
}
