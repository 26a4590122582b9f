package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/local-events/app/feed"
)

type Client struct {
	httpClient *http.Client
	parser     *feed.Parser
	userAgent  string
	timeout    time.Duration
	now        func() time.Time
}

func NewClient(httpClient *http.Client, parser *feed.Parser, userAgent string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if parser == nil {
		parser = feed.NewParser()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Events queries one calendar feed. Unset window bounds default to
// now -/+ 30 days. Failures come back as *RejectionError, *TransportError
// or *ParseError and a nil feed.
func (c *Client) Events(ctx context.Context, calendar FeedURL, window Window) (*feed.Feed, error) {
	query := NewQuery(calendar, window.WithDefaults(c.now()))

	uri, err := query.URI()
	if err != nil {
		return nil, &TransportError{Feed: calendar, Err: err}
	}
	slog.Debug("Calendar query", "feed", calendar, "uri", uri, "start_min", query.StartMin, "start_max", query.StartMax)

	data, err := c.fetch(ctx, calendar, uri)
	if err != nil {
		return nil, err
	}

	result, err := c.parser.Run(data)
	if err != nil {
		return nil, &ParseError{Feed: calendar, Err: err}
	}
	result.Source = string(calendar)

	for i, entry := range result.Entries {
		slog.Debug("Calendar entry", "feed", calendar, "index", i, "title", entry.Title)
		for _, o := range entry.Occurrences {
			slog.Debug("Calendar occurrence", "feed", calendar, "index", i, "start", o.Start, "end", o.End)
		}
	}

	return result, nil
}

func (c *Client) fetch(ctx context.Context, calendar FeedURL, uri string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{Feed: calendar, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Feed: calendar, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectionError{Feed: calendar, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Feed: calendar, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}
