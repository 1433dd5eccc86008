package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Fetch defaults
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; PortfolioBackoffice/1.0)"
	maxPostingBytes     = 5 << 20
)

// FetchError describes a failed posting download.
type FetchError struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Fetcher downloads job postings over HTTP.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewFetcher returns a Fetcher with the default timeout and user agent.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: DefaultFetchTimeout},
		UserAgent: DefaultUserAgent,
	}
}

// FetchPosting downloads rawURL and extracts the posting text using the
// selectors for the detected platform.
func (f *Fetcher) FetchPosting(ctx context.Context, rawURL string) (string, *Metadata, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", nil, &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPostingBytes))
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	platform := DetectPlatform(rawURL)
	text, err := ExtractMainText(string(body), ContentSelectors(platform), NoiseSelectors(platform)...)
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "content extraction failed", Cause: err}
	}
	if text == "" {
		return "", nil, &FetchError{URL: rawURL, Message: "no readable text in page"}
	}

	meta := NewMetadata(text, rawURL)
	meta.Platform = platform
	return text, meta, nil
}
