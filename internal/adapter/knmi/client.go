// Package knmi is a client for the KNMI Open Data API dataset file endpoints.
package knmi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/radar-rain-labeler/internal/config"
	"github.com/couchcryptid/radar-rain-labeler/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second

	// timeLayout is the offset form the API accepts for begin and end.
	timeLayout = "2006-01-02T15:04:05+00:00"
)

// File is one entry of a dataset file listing.
type File struct {
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	Created      string `json:"created"`
	LastModified string `json:"lastModified"`
}

// ListParams filters a file listing. Zero fields are omitted.
type ListParams struct {
	MaxKeys int
	OrderBy string
	Begin   time.Time
	End     time.Time
}

// APIError is a non-200 response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("knmi API error: status %d: %s", e.StatusCode, e.Body)
}

// Client lists and downloads dataset files. Requests to the API are paced
// and transient failures are retried with exponential backoff.
type Client struct {
	token      string
	baseURL    string
	dataset    string
	version    string
	httpClient *http.Client
	clock      clockwork.Clock
	delay      time.Duration
	maxRetries int
	backoff    time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the configured dataset.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      cfg.KDPToken,
		baseURL:    cfg.KNMIBaseURL,
		dataset:    cfg.KNMIDataset,
		version:    cfg.KNMIDatasetVersion,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		clock:      clockwork.NewRealClock(),
		delay:      cfg.FetchRequestDelay,
		maxRetries: cfg.FetchMaxRetries,
		backoff:    initialBackoff,
		metrics:    metrics,
		logger:     logger,
	}
}

func (c *Client) filesURL() string {
	return fmt.Sprintf("%s/datasets/%s/versions/%s/files",
		c.baseURL, url.PathEscape(c.dataset), url.PathEscape(c.version))
}

type listResponse struct {
	IsTruncated   bool   `json:"isTruncated"`
	ResultCount   int    `json:"resultCount"`
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken"`
}

// ListFiles returns every file matching p, following pagination.
func (c *Client) ListFiles(ctx context.Context, p ListParams) ([]File, error) {
	params := url.Values{}
	if p.MaxKeys > 0 {
		params.Set("maxKeys", strconv.Itoa(p.MaxKeys))
	}
	if p.OrderBy != "" {
		params.Set("orderBy", p.OrderBy)
	}
	if !p.Begin.IsZero() {
		params.Set("begin", p.Begin.UTC().Format(timeLayout))
	}
	if !p.End.IsZero() {
		params.Set("end", p.End.UTC().Format(timeLayout))
	}

	var files []File
	for {
		var page listResponse
		if err := c.getJSON(ctx, "list", c.filesURL()+"?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		files = append(files, page.Files...)
		c.logger.Debug("listed dataset files", "page_files", len(page.Files), "total", len(files))

		if !page.IsTruncated || page.NextPageToken == "" {
			return files, nil
		}
		params.Set("nextPageToken", page.NextPageToken)
	}
}

// TemporaryURL returns a short-lived download URL for filename.
func (c *Client) TemporaryURL(ctx context.Context, filename string) (string, error) {
	u := fmt.Sprintf("%s/%s/url", c.filesURL(), url.PathEscape(filename))

	var resp struct {
		TemporaryDownloadURL string `json:"temporaryDownloadUrl"`
	}
	if err := c.getJSON(ctx, "url", u, &resp); err != nil {
		return "", fmt.Errorf("download url for %s: %w", filename, err)
	}
	if resp.TemporaryDownloadURL == "" {
		return "", fmt.Errorf("download url for %s: empty temporaryDownloadUrl", filename)
	}
	return resp.TemporaryDownloadURL, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, u string, out any) error {
	return c.do(ctx, endpoint, u, true, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// transientError marks a failure worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var t *transientError
	if errors.As(err, &t) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}

// do performs a GET with retries. API calls (authorized) are paced by the
// configured delay; presigned downloads are not.
func (c *Client) do(ctx context.Context, endpoint, u string, api bool, handle func(*http.Response) error) error {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if api && !c.sleep(ctx, c.delay) {
			return ctx.Err()
		}

		start := c.clock.Now()
		err := c.once(ctx, u, api, handle)
		c.metrics.FetchAPIDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
		if err == nil {
			return nil
		}
		c.metrics.FetchAPIErrors.Inc()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) || attempt >= c.maxRetries {
			return err
		}
		c.logger.Warn("knmi request failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err,
		)
		if !c.sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

func (c *Client) once(ctx context.Context, u string, authorize bool, handle func(*http.Response) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if authorize {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return handle(resp)
}

// sleep waits d on the client clock. Returns false if ctx ends first.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}
