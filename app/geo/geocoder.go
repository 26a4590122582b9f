package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "http://maps.google.com/maps/geo"

	// StatusSuccess is the code the service reports for a resolved address.
	StatusSuccess = 200
)

var ErrMissingAPIKey = errors.New("geocoder API key is not configured")

// Coordinate is one geocoding answer: code,accuracy,lat,long.
type Coordinate struct {
	Code     int     `json:"code"`
	Accuracy int     `json:"accuracy"`
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
}

func (c Coordinate) OK() bool {
	return c.Code == StatusSuccess
}

func (c Coordinate) Point() Point {
	return Point{Lat: c.Lat, Long: c.Long}
}

type TransportError struct {
	Address string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Address, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ParseError struct {
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse geocoder response %q: %v", e.Body, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Options struct {
	HTTPClient *http.Client
	Endpoint   string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
	timeout    time.Duration
}

func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		endpoint:   opts.Endpoint,
		apiKey:     opts.APIKey,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	return c
}

// Geocode resolves a free-text address. Errors are *TransportError,
// *ParseError or ErrMissingAPIKey.
func (c *Client) Geocode(ctx context.Context, address string) (Coordinate, error) {
	if c.apiKey == "" {
		return Coordinate{}, ErrMissingAPIKey
	}

	params := url.Values{
		"output": {"csv"},
		"key":    {c.apiKey},
		"sensor": {"false"},
		"q":      {address},
	}
	uri := c.endpoint + "?" + params.Encode()
	slog.Debug("Geocoding address", "address", address, "endpoint", c.endpoint)

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, uri, nil)
	if err != nil {
		return Coordinate{}, &TransportError{Address: address, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Coordinate{}, &TransportError{Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, &TransportError{Address: address, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinate{}, &TransportError{Address: address, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return ParseCSV(string(body))
}

// ParseCSV parses "code,accuracy,lat,long".
func ParseCSV(body string) (Coordinate, error) {
	fields := strings.Split(strings.TrimSpace(body), ",")
	if len(fields) != 4 {
		return Coordinate{}, &ParseError{Body: body, Err: fmt.Errorf("expected 4 fields, got %d", len(fields))}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return Coordinate{}, &ParseError{Body: body, Err: fmt.Errorf("invalid code: %w", err)}
	}
	accuracy, err := strconv.Atoi(fields[1])
	if err != nil {
		return Coordinate{}, &ParseError{Body: body, Err: fmt.Errorf("invalid accuracy: %w", err)}
	}
	lat, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Coordinate{}, &ParseError{Body: body, Err: fmt.Errorf("invalid latitude: %w", err)}
	}
	long, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Coordinate{}, &ParseError{Body: body, Err: fmt.Errorf("invalid longitude: %w", err)}
	}

	return Coordinate{Code: code, Accuracy: accuracy, Lat: lat, Long: long}, nil
}
