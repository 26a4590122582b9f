package geo

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/feed"
)

// Locator turns an address into a coordinate. *Client and *CachedLocator
// implement it.
type Locator interface {
	Geocode(ctx context.Context, address string) (Coordinate, error)
}

var (
	_ Locator = (*Client)(nil)
	_ Locator = (*CachedLocator)(nil)
)

// Ranked is an event with its distance from the reference point.
type Ranked struct {
	Calendar calendar.FeedURL `json:"calendar"`
	Entry    feed.Entry       `json:"entry"`
	Point    Point            `json:"point"`
	Distance float64          `json:"distance"`

	sqDistance float64
}

type Ranker struct {
	locator Locator
	radius  float64
}

// NewRanker builds a ranker. radius <= 0 keeps every located event.
func NewRanker(locator Locator, radius float64) *Ranker {
	return &Ranker{locator: locator, radius: radius}
}

// Rank locates every entry of the fetched feeds and orders them by
// ascending distance from ref. Entries without a location, or whose
// location cannot be geocoded, are left out. Nil feeds are skipped.
func (r *Ranker) Rank(ctx context.Context, feeds map[calendar.FeedURL]*feed.Feed, ref Coordinate) ([]Ranked, error) {
	origin := ref.Point()
	located := make(map[string]*Point)
	radiusSq := r.radius * r.radius

	var ranked []Ranked
	for cal, f := range feeds {
		if f == nil {
			continue
		}
		for _, entry := range f.Entries {
			address := strings.TrimSpace(entry.Location)
			if address == "" {
				continue
			}

			point, seen := located[address]
			if !seen {
				var err error
				point, err = r.locate(ctx, address)
				if err != nil {
					return nil, err
				}
				located[address] = point
			}
			if point == nil {
				continue
			}

			sq := SqEuclidean(origin, *point)
			if r.radius > 0 && sq > radiusSq {
				continue
			}

			ranked = append(ranked, Ranked{
				Calendar:   cal,
				Entry:      entry,
				Point:      *point,
				sqDistance: sq,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.sqDistance != b.sqDistance {
			return a.sqDistance < b.sqDistance
		}
		if a.Calendar != b.Calendar {
			return a.Calendar < b.Calendar
		}
		return a.Entry.Title < b.Entry.Title
	})

	for i := range ranked {
		ranked[i].Distance = Distance(origin, ranked[i].Point)
	}

	return ranked, nil
}

// locate returns nil for addresses that cannot be placed. Only context
// cancellation and a missing API key abort the ranking.
func (r *Ranker) locate(ctx context.Context, address string) (*Point, error) {
	coord, err := r.locator.Geocode(ctx, address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrMissingAPIKey) {
			return nil, err
		}
		slog.Warn("Failed to geocode event location", "address", address, "error", err)
		return nil, nil
	}
	if !coord.OK() {
		slog.Info("Event location not found", "address", address, "code", coord.Code)
		return nil, nil
	}
	p := coord.Point()
	return &p, nil
}
