package tasks

import (
	"context"

	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/feed"
)

// EventsFetcher is the calendar query used by FetchCalendarTask.
// *calendar.Client implements it.
type EventsFetcher interface {
	Events(ctx context.Context, feed calendar.FeedURL, window calendar.Window) (*feed.Feed, error)
}

var _ EventsFetcher = (*calendar.Client)(nil)
