package database

import (
	"time"

	"github.com/lysyi3m/local-events/app/feed"
	"github.com/lysyi3m/local-events/app/geo"
)

type EventRepository interface {
	ReplaceCalendarEvents(feedURL string, f *feed.Feed, fetchedAt time.Time) error
	GetCalendarEvents(feedURL string) ([]StoredEvent, error)
	GetEventCount() (int, error)
}

type GeocodeRepository interface {
	GetGeocode(address string) (*geo.Coordinate, error)
	SaveGeocode(address string, coord geo.Coordinate) error
}

var (
	_ EventRepository   = (*EventStore)(nil)
	_ GeocodeRepository = (*GeocodeStore)(nil)
	_ geo.GeocodeCache  = (*GeocodeStore)(nil)
)

// StoredEvent is one occurrence row of a snapshotted calendar entry.
type StoredEvent struct {
	ID        int64
	FeedURL   string
	EntryID   string
	Title     string
	Body      string
	Location  string
	Link      string
	StartsAt  *time.Time
	EndsAt    *time.Time
	AllDay    bool
	FetchedAt time.Time
}
