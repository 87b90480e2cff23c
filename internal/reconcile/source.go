// Package reconcile pulls the canonical tag set from the external
// source of record, validates and diffs it against the current
// snapshot, and republishes.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fathomline/taxa/internal/tags"
	"github.com/fathomline/taxa/pkg/retry"
)

const (
	// PageSize is the fixed per-page fetch size.
	PageSize = 200
	// MaxPages caps pagination as a runaway-source safety net.
	MaxPages = 100
)

// Source supplies the canonical tag set.
type Source interface {
	FetchAll(ctx context.Context) ([]tags.Tag, error)
}

type tagPage struct {
	Tags    []tags.Tag `json:"tags"`
	HasMore bool       `json:"has_more"`
}

// rateLimitError carries the server-indicated retry delay from a 429.
type rateLimitError struct {
	delay time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %v", e.delay)
}

func (e *rateLimitError) RetryDelay() time.Duration {
	return e.delay
}

// HTTPSource fetches tags from a paginated REST endpoint.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	token   string
	policy  retry.Policy
	logger  *slog.Logger
}

// NewHTTPSource creates a source over the given endpoint. A nil client
// uses a 30-second-timeout default.
func NewHTTPSource(baseURL, token string, client *http.Client, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{
		client:  client,
		baseURL: baseURL,
		token:   token,
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
		},
		logger: logger.With("system", "reconcile"),
	}
}

// FetchAll drains the source page by page. A rate-limit response sleeps
// for the server-indicated duration and retries the same page; hitting
// the page cap is an error rather than a silent truncation.
func (s *HTTPSource) FetchAll(ctx context.Context) ([]tags.Tag, error) {
	var all []tags.Tag

	for page := 1; ; page++ {
		if page > MaxPages {
			return nil, fmt.Errorf("%w: %d pages", ErrPageCapExceeded, MaxPages)
		}

		var result tagPage
		err := s.policy.Do(ctx, func() error {
			fetched, err := s.fetchPage(ctx, page)
			if err != nil {
				return err
			}
			result = *fetched
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrSourceUnavailable, page, err)
		}

		all = append(all, result.Tags...)

		if !result.HasMore {
			break
		}
	}

	s.logger.Info("tag source drained", "tags", len(all))
	return all, nil
}

func (s *HTTPSource) fetchPage(ctx context.Context, page int) (*tagPage, error) {
	url := fmt.Sprintf("%s?page=%d&per_page=%d", s.baseURL, page, PageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &rateLimitError{delay: retryAfter(resp)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result tagPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}

	return &result, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 10 * time.Second
}
