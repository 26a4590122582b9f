package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/feed"
)

// Batch maps every requested feed to its result. Failed feeds map to nil
// and have their error in Errors.
type Batch struct {
	Feeds  map[calendar.FeedURL]*feed.Feed
	Errors map[calendar.FeedURL]error
}

// Failed reports whether the feed was requested but produced no result.
func (b Batch) Failed(feedURL calendar.FeedURL) bool {
	f, ok := b.Feeds[feedURL]
	return ok && f == nil
}

// Pool fetches calendars with a fixed number of workers.
type Pool struct {
	fetcher     EventsFetcher
	window      calendar.Window
	workerCount int
}

func NewPool(fetcher EventsFetcher, window calendar.Window, workerCount int) *Pool {
	return &Pool{
		fetcher:     fetcher,
		window:      window,
		workerCount: max(workerCount, 1),
	}
}

// Run fetches each distinct feed once. One feed failing never stops the
// others; when ctx is cancelled, feeds not yet fetched fail with ctx.Err().
func (p *Pool) Run(ctx context.Context, feeds []calendar.FeedURL) Batch {
	batch := Batch{
		Feeds:  make(map[calendar.FeedURL]*feed.Feed, len(feeds)),
		Errors: make(map[calendar.FeedURL]error),
	}

	queue := make(chan TaskInterface, len(feeds))
	for _, feedURL := range feeds {
		if _, queued := batch.Feeds[feedURL]; queued {
			continue
		}
		batch.Feeds[feedURL] = nil
		queue <- NewFetchCalendarTask(feedURL, p.window, p.fetcher)
	}
	close(queue)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	workers := min(p.workerCount, len(batch.Feeds))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for task := range queue {
				fetchTask := task.(*FetchCalendarTask)
				err := p.executeTask(ctx, id, task)

				mu.Lock()
				if err != nil {
					batch.Errors[fetchTask.FeedURL] = err
				} else {
					batch.Feeds[fetchTask.FeedURL] = fetchTask.Result
				}
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	return batch
}

func (p *Pool) executeTask(ctx context.Context, workerID int, task TaskInterface) error {
	task.Start()

	err := task.Execute(ctx)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, calendar.ErrServiceRejected):
		slog.Warn("Calendar rejected the query", "worker_id", workerID, "feed", task.GetFeed(), "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Calendar fetch cancelled", "worker_id", workerID, "feed", task.GetFeed(), "error", err)
	default:
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "feed", task.GetFeed(), "error", err)
	}

	return err
}
