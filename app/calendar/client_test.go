package calendar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const calendarFeedXML = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gd='http://schemas.google.com/g/2005'>
  <title>Test Calendar</title>
  <entry>
    <id>evt1</id>
    <title>Open Mic</title>
    <summary type='html'>Where: The Hall</summary>
    <gd:when startTime='2008-01-15T19:00:00.000Z' endTime='2008-01-15T21:00:00.000Z'/>
  </entry>
</feed>`

// recordingTransport answers every request with a fixed response and keeps
// the requested URLs.
type recordingTransport struct {
	status int
	body   string
	err    error
	urls   []*url.URL
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.urls = append(rt.urls, req.URL)
	if rt.err != nil {
		return nil, rt.err
	}
	return &http.Response{
		StatusCode: rt.status,
		Status:     http.StatusText(rt.status),
		Body:       io.NopCloser(strings.NewReader(rt.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(rt http.RoundTripper) *Client {
	c := NewClient(&http.Client{Transport: rt}, nil, "Test Agent", time.Second)
	c.now = func() time.Time { return time.Unix(1200000000, 0) }
	return c
}

func TestClientEvents(t *testing.T) {
	var gotQuery url.Values
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAgent = r.UserAgent()
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(calendarFeedXML))
	}))
	defer server.Close()

	client := NewClient(server.Client(), nil, "Test Agent", time.Second)
	client.now = func() time.Time { return time.Unix(1200000000, 0) }

	result, err := client.Events(context.Background(), FeedURL(server.URL+"/feeds/x/public/basic"), Window{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Source != server.URL+"/feeds/x/public/basic" {
		t.Errorf("Expected source to be the feed URL, got %s", result.Source)
	}
	if len(result.Entries) != 1 || result.Entries[0].Title != "Open Mic" {
		t.Fatalf("Unexpected entries: %+v", result.Entries)
	}
	if result.Entries[0].Location != "The Hall" {
		t.Errorf("Expected location 'The Hall', got %q", result.Entries[0].Location)
	}

	if gotAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got %q", gotAgent)
	}
	expected := map[string]string{
		"start-min": "2007-12-11T21:20:00",
		"start-max": "2008-02-09T21:20:00",
		"orderby":   "starttime",
		"sortorder": "descending",
	}
	for key, want := range expected {
		if got := gotQuery.Get(key); got != want {
			t.Errorf("Expected %s=%s, got %q", key, want, got)
		}
	}
}

func TestClientEventsExplicitWindow(t *testing.T) {
	rt := &recordingTransport{status: http.StatusOK, body: calendarFeedXML}
	client := newTestClient(rt)

	_, err := client.Events(context.Background(), "http://example.com/feed?alt=atom", Window{Start: 0, End: "2009-01-01T00:00:00"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	q := rt.urls[0].Query()
	if q.Get("start-min") != "1970-01-01T00:00:00" {
		t.Errorf("Unexpected start-min: %q", q.Get("start-min"))
	}
	if q.Get("start-max") != "2009-01-01T00:00:00" {
		t.Errorf("Expected preformatted start-max to pass through, got %q", q.Get("start-max"))
	}
	if q.Get("alt") != "atom" {
		t.Error("Expected existing feed query parameters to be kept")
	}
}

func TestClientEventsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid request URI", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.Client(), nil, "", time.Second)

	result, err := client.Events(context.Background(), FeedURL(server.URL), Window{})
	if result != nil {
		t.Error("Expected nil feed on rejection")
	}
	if !errors.Is(err, ErrServiceRejected) {
		t.Fatalf("Expected ErrServiceRejected, got: %v", err)
	}
	var rejection *RejectionError
	if !errors.As(err, &rejection) || rejection.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected RejectionError with status 400, got: %v", err)
	}
}

func TestClientEventsTransportError(t *testing.T) {
	rt := &recordingTransport{err: errors.New("connection refused")}
	client := newTestClient(rt)

	result, err := client.Events(context.Background(), "http://example.com/feed", Window{})
	if result != nil {
		t.Error("Expected nil feed on transport failure")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got: %v", err)
	}
	if errors.Is(err, ErrServiceRejected) {
		t.Error("Transport failure must not be reported as a rejection")
	}
}

func TestClientEventsParseError(t *testing.T) {
	rt := &recordingTransport{status: http.StatusOK, body: "<html><body>maintenance</body></html>"}
	client := newTestClient(rt)

	_, err := client.Events(context.Background(), "http://example.com/feed", Window{})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got: %v", err)
	}
}

func TestClientEventsInvalidFeedURL(t *testing.T) {
	rt := &recordingTransport{status: http.StatusOK, body: calendarFeedXML}
	client := newTestClient(rt)

	_, err := client.Events(context.Background(), "not-a-url", Window{})
	if err == nil {
		t.Fatal("Expected error for relative feed URL")
	}
	if len(rt.urls) != 0 {
		t.Error("Expected no request for an invalid feed URL")
	}
}

func TestCalendarFileToQueryUsesResolvedFeed(t *testing.T) {
	set, err := ReadCalendars(strings.NewReader("alice@example.com\nbob # gmail user\n"))
	if err != nil {
		t.Fatal(err)
	}

	rt := &recordingTransport{status: http.StatusOK, body: calendarFeedXML}
	client := newTestClient(rt)

	for feed := range ResolveAll(set) {
		if _, err := client.Events(context.Background(), feed, Window{}); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	paths := make(map[string]bool)
	for _, u := range rt.urls {
		if u.Host != "www.google.com" {
			t.Errorf("Expected request to the calendar service, got host %s", u.Host)
		}
		paths[u.EscapedPath()] = true
	}

	for _, want := range []string{
		"/calendar/feeds/alice%40example.com/public/basic",
		"/calendar/feeds/bob%40gmail.com/public/basic",
	} {
		if !paths[want] {
			t.Errorf("Expected a request for %s, got %v", want, paths)
		}
	}
}

func TestQueryURI(t *testing.T) {
	q := NewQuery("http://www.google.com/calendar/feeds/a%40gmail.com/public/basic", Window{Start: 0, End: 86400})

	uri, err := q.URI()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := "http://www.google.com/calendar/feeds/a%40gmail.com/public/basic?orderby=starttime&sortorder=descending&start-max=1970-01-02T00%3A00%3A00&start-min=1970-01-01T00%3A00%3A00"
	if uri != want {
		t.Errorf("Unexpected URI:\n got: %s\nwant: %s", uri, want)
	}
	if q.Visibility != "private" || q.Projection != "full" {
		t.Errorf("Unexpected scope %s/%s", q.Visibility, q.Projection)
	}
}

func TestNewQueryUnsignedBounds(t *testing.T) {
	q := NewQuery("http://example.com/feed", Window{Start: uint(0), End: uint16(3600)})

	if q.StartMin != "1970-01-01T00:00:00" || q.StartMax != "1970-01-01T01:00:00" {
		t.Errorf("Unexpected bounds %q, %q", q.StartMin, q.StartMax)
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Unix(1000000000, 0)
	w := DefaultWindow(now, 30)

	if w.Start != int64(1000000000-30*86400) || w.End != int64(1000000000+30*86400) {
		t.Errorf("Unexpected window: %+v", w)
	}

	partial := Window{Start: 5}.WithDefaults(now)
	if partial.Start != 5 {
		t.Error("Expected explicit start to be kept")
	}
	if partial.End != int64(1000000000+30*86400) {
		t.Errorf("Expected default end, got %v", partial.End)
	}
}
