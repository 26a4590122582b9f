package calendar

import (
	"fmt"
	"net/url"
	"time"
)

const (
	OrderByStartTime    = "starttime"
	SortOrderDescending = "descending"

	VisibilityPrivate = "private"
	ProjectionFull    = "full"

	DefaultWindowDays = 30
)

// Window bounds a query. Start and End are epoch seconds (any numeric
// type) or already formatted text; they go through FormatTimestamp as is.
// Start <= End is not enforced.
type Window struct {
	Start any
	End   any
}

// DefaultWindow spans days before and after now.
func DefaultWindow(now time.Time, days int) Window {
	span := int64(days) * 86400
	return Window{
		Start: now.Unix() - span,
		End:   now.Unix() + span,
	}
}

// WithDefaults fills unset bounds with now -/+ DefaultWindowDays.
func (w Window) WithDefaults(now time.Time) Window {
	def := DefaultWindow(now, DefaultWindowDays)
	if w.Start == nil {
		w.Start = def.Start
	}
	if w.End == nil {
		w.End = def.End
	}
	return w
}

type Query struct {
	Feed       FeedURL
	StartMin   string
	StartMax   string
	OrderBy    string
	SortOrder  string
	Visibility string
	Projection string
}

func NewQuery(feed FeedURL, window Window) Query {
	return Query{
		Feed:       feed,
		StartMin:   FormatTimestamp(window.Start),
		StartMax:   FormatTimestamp(window.End),
		OrderBy:    OrderByStartTime,
		SortOrder:  SortOrderDescending,
		Visibility: VisibilityPrivate,
		Projection: ProjectionFull,
	}
}

// URI is the feed URL with the query parameters added. Visibility and
// projection only matter for the service's default feed; an explicit feed
// URL already encodes them in its path.
func (q Query) URI() (string, error) {
	u, err := url.Parse(string(q.Feed))
	if err != nil {
		return "", fmt.Errorf("invalid feed URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid feed URL: %q is not absolute", q.Feed)
	}

	params := u.Query()
	params.Set("start-min", q.StartMin)
	params.Set("start-max", q.StartMax)
	params.Set("orderby", q.OrderBy)
	params.Set("sortorder", q.SortOrder)
	u.RawQuery = params.Encode()

	return u.String(), nil
}
