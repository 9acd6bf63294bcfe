// Package fetch retrieves feeds and episode enclosures over HTTP. Every
// request is a single attempt; callers decide what a failure means.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fuzable/podkey/pkg/model"
)

// Fetcher opens a remote resource for reading.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// StatusError is returned when the server answers with a non 2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

type HTTP struct {
	client    *http.Client
	userAgent string
}

var _ Fetcher = (*HTTP)(nil)

func NewHTTP(cfg Config) *HTTP {
	if cfg.Timeout == 0 {
		cfg.Timeout = model.DefaultFetchTimeout
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = model.DefaultUserAgent
	}

	return &HTTP{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

func (h *HTTP) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", url)
	}

	req.Header.Set("User-Agent", h.userAgent)

	log.Debugf("GET %s", url)
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}
