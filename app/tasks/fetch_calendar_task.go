package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/feed"
)

type FetchCalendarTask struct {
	Task
	FeedURL calendar.FeedURL
	Window  calendar.Window
	fetcher EventsFetcher

	Result *feed.Feed
}

func NewFetchCalendarTask(feedURL calendar.FeedURL, window calendar.Window, fetcher EventsFetcher) *FetchCalendarTask {
	return &FetchCalendarTask{
		Task:    NewTask(TaskTypeFetchCalendar, string(feedURL)),
		FeedURL: feedURL,
		Window:  window,
		fetcher: fetcher,
	}
}

func (t *FetchCalendarTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.fetcher.Events(ctx, t.FeedURL, t.Window)
	if err != nil {
		return err
	}
	t.Result = result

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedURL,
		"duration", t.GetDuration(),
		"entries", len(result.Entries))

	return nil
}
