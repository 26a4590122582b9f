package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/local-events/app/api"
	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/cfg"
	"github.com/lysyi3m/local-events/app/database"
	"github.com/lysyi3m/local-events/app/feed"
	"github.com/lysyi3m/local-events/app/geo"
	"github.com/lysyi3m/local-events/app/report"
	"github.com/lysyi3m/local-events/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: appCfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg, os.Stdout); err != nil {
		slog.Error("Fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run performs one query round and writes the report to out. With a serve
// address it then serves the report until ctx is done.
func run(ctx context.Context, appCfg *cfg.Cfg, out io.Writer) error {
	calendars, err := loadCalendars(appCfg)
	if err != nil {
		return err
	}
	slog.Info("Calendars loaded", "count", len(calendars))

	var (
		eventRepo database.EventRepository
		locator   geo.Locator
	)

	httpClient := &http.Client{Timeout: appCfg.RequestTimeout()}
	locator = geo.NewClient(geo.Options{
		HTTPClient: httpClient,
		Endpoint:   appCfg.GeocoderURL,
		APIKey:     appCfg.GeocoderKey,
		UserAgent:  appCfg.UserAgent,
		Timeout:    appCfg.RequestTimeout(),
	})

	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		slog.Info("Connected to database", "path", appCfg.DBPath)

		eventRepo = database.NewEventStore(db)
		locator = geo.NewCachedLocator(locator, database.NewGeocodeStore(db))
	}

	identifiers := calendar.ResolveAll(calendars)
	feedURLs := make([]calendar.FeedURL, 0, len(identifiers))
	for _, id := range calendars.Sorted() {
		feedURLs = append(feedURLs, calendar.Resolve(id))
	}

	now := time.Now()
	client := calendar.NewClient(httpClient, feed.NewParser(), appCfg.UserAgent, appCfg.RequestTimeout())
	pool := tasks.NewPool(client, calendar.DefaultWindow(now, appCfg.WindowDays), appCfg.WorkerCount)

	slog.Info("Fetching calendars", "feeds", len(identifiers), "workers", appCfg.WorkerCount, "window_days", appCfg.WindowDays)
	batch := pool.Run(ctx, feedURLs)

	if eventRepo != nil {
		if err := saveSnapshots(eventRepo, batch, now); err != nil {
			return err
		}
	}

	result := report.Build(appCfg.Me, identifiers, batch, now)
	rankNearby(ctx, result, locator, appCfg, batch)

	if appCfg.JSON {
		err = result.WriteJSON(out)
	} else {
		err = result.WriteText(out)
	}
	if err != nil {
		return err
	}

	if appCfg.ServeAddr != "" {
		return serve(ctx, appCfg, api.NewHandler(result, eventRepo, appCfg.Version))
	}

	return nil
}

// loadCalendars merges -c calendars with the calendar file. A missing
// default file is tolerated when calendars were given on the command line.
func loadCalendars(appCfg *cfg.Cfg) (calendar.Set, error) {
	calendars := calendar.NewSet(appCfg.Calendars...)

	fromFile, err := calendar.LoadCalendarFile(appCfg.CalFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !appCfg.CalFileSet && len(calendars) > 0 {
			slog.Warn("Default calendar file not found, using command line calendars only", "path", appCfg.CalFile)
			return calendars, nil
		}
		return nil, fmt.Errorf("failed to load calendars from %s: %w", appCfg.CalFile, err)
	}

	calendars.Union(fromFile)
	return calendars, nil
}

func saveSnapshots(eventRepo database.EventRepository, batch tasks.Batch, fetchedAt time.Time) error {
	saved := 0
	for feedURL, f := range batch.Feeds {
		if f == nil {
			continue
		}
		if err := eventRepo.ReplaceCalendarEvents(string(feedURL), f, fetchedAt); err != nil {
			return fmt.Errorf("failed to save events for %s: %w", feedURL, err)
		}
		saved++
	}
	slog.Info("Saved calendar snapshots", "count", saved)
	return nil
}

// rankNearby locates me and orders the fetched events around it. Lookup
// and ranking failures are recorded in the report rather than failing the
// run.
func rankNearby(ctx context.Context, result *report.Report, locator geo.Locator, appCfg *cfg.Cfg, batch tasks.Batch) {
	origin, err := locator.Geocode(ctx, appCfg.Me)
	if err == nil && !origin.OK() {
		err = fmt.Errorf("location not found (code %d)", origin.Code)
	}
	if err != nil {
		slog.Warn("Failed to locate me, skipping ranking", "me", appCfg.Me, "error", err)
		result.SetOriginError(err)
		return
	}
	result.SetOrigin(origin)

	ranked, err := geo.NewRanker(locator, appCfg.Radius).Rank(ctx, batch.Feeds, origin)
	if err != nil {
		slog.Warn("Failed to rank events", "error", err)
		result.SetRankError(err)
		return
	}
	result.SetNearby(ranked)
}

func serve(ctx context.Context, appCfg *cfg.Cfg, handler *api.Handler) error {
	httpServer := &http.Server{
		Addr:         appCfg.ServeAddr,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", appCfg.ServeAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	slog.Info("HTTP server stopped")

	return nil
}
