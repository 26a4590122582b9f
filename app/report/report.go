package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/feed"
	"github.com/lysyi3m/local-events/app/geo"
	"github.com/lysyi3m/local-events/app/tasks"
)

// Report is the outcome of one run, printed or served over HTTP.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Me          string            `json:"me"`
	Origin      *geo.Coordinate   `json:"origin,omitempty"`
	OriginError string            `json:"origin_error,omitempty"`
	RankError   string            `json:"rank_error,omitempty"`
	Calendars   []CalendarSummary `json:"calendars"`
	Nearby      []geo.Ranked      `json:"nearby"`

	feeds map[calendar.FeedURL]*feed.Feed
}

type CalendarSummary struct {
	Feed        calendar.FeedURL `json:"feed"`
	Identifiers []string         `json:"identifiers"`
	Title       string           `json:"title,omitempty"`
	Entries     int              `json:"entries"`
	Available   bool             `json:"available"`
	Error       string           `json:"error,omitempty"`
}

// Build summarizes a batch. identifiers maps each feed to the identifiers
// that resolved to it; calendars are listed in feed order.
func Build(me string, identifiers map[calendar.FeedURL][]string, batch tasks.Batch, generatedAt time.Time) *Report {
	r := &Report{
		GeneratedAt: generatedAt,
		Me:          me,
		Calendars:   make([]CalendarSummary, 0, len(batch.Feeds)),
		Nearby:      []geo.Ranked{},
		feeds:       batch.Feeds,
	}

	for feedURL, f := range batch.Feeds {
		summary := CalendarSummary{
			Feed:        feedURL,
			Identifiers: identifiers[feedURL],
			Available:   f != nil,
		}
		if f != nil {
			summary.Title = f.Title
			summary.Entries = len(f.Entries)
		}
		if err := batch.Errors[feedURL]; err != nil {
			summary.Error = err.Error()
		}
		r.Calendars = append(r.Calendars, summary)
	}

	sort.Slice(r.Calendars, func(i, j int) bool {
		return r.Calendars[i].Feed < r.Calendars[j].Feed
	})

	return r
}

func (r *Report) SetOrigin(coord geo.Coordinate) {
	r.Origin = &coord
	r.OriginError = ""
}

func (r *Report) SetOriginError(err error) {
	r.Origin = nil
	r.OriginError = err.Error()
}

// SetRankError records a ranking that could not complete. The origin is
// kept and no events are listed as nearby.
func (r *Report) SetRankError(err error) {
	r.RankError = err.Error()
	r.Nearby = []geo.Ranked{}
}

func (r *Report) SetNearby(ranked []geo.Ranked) {
	if ranked == nil {
		ranked = []geo.Ranked{}
	}
	r.Nearby = ranked
}

// Feed returns the fetched feed for a calendar; nil when it failed or was
// not part of the run.
func (r *Report) Feed(feedURL calendar.FeedURL) *feed.Feed {
	return r.feeds[feedURL]
}

// Entries returns every fetched entry keyed by calendar.
func (r *Report) Entries() map[calendar.FeedURL][]feed.Entry {
	out := make(map[calendar.FeedURL][]feed.Entry, len(r.feeds))
	for feedURL, f := range r.feeds {
		if f != nil {
			out[feedURL] = f.Entries
		}
	}
	return out
}

func (r *Report) FailedCount() int {
	count := 0
	for _, c := range r.Calendars {
		if !c.Available {
			count++
		}
	}
	return count
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Calendars (%d, %d unavailable)\n", len(r.Calendars), r.FailedCount())
	for _, c := range r.Calendars {
		name := strings.Join(c.Identifiers, ", ")
		if name == "" {
			name = string(c.Feed)
		}
		if c.Available {
			fmt.Fprintf(tw, "  %s\t%d events\t%s\n", name, c.Entries, c.Title)
		} else {
			fmt.Fprintf(tw, "  %s\tunavailable\t%s\n", name, c.Error)
		}
	}

	fmt.Fprintln(tw)
	switch {
	case r.Origin != nil:
		fmt.Fprintf(tw, "Nearby %q (%.5f, %.5f)\n", r.Me, r.Origin.Lat, r.Origin.Long)
	case r.OriginError != "":
		fmt.Fprintf(tw, "Nearby %q: location unavailable: %s\n", r.Me, r.OriginError)
	default:
		fmt.Fprintf(tw, "Nearby %q\n", r.Me)
	}

	if r.RankError != "" {
		fmt.Fprintf(tw, "  ranking unavailable: %s\n", r.RankError)
	}

	for i, ranked := range r.Nearby {
		when := ""
		if start := ranked.Entry.FirstStart(); !start.IsZero() {
			when = start.In(time.Local).Format("Mon Jan 2 15:04")
		}
		fmt.Fprintf(tw, "  %d.\t%.4f\t%s\t%s\t%s\n", i+1, ranked.Distance, when, ranked.Entry.Title, ranked.Entry.Location)
	}
	if len(r.Nearby) == 0 && r.Origin != nil && r.RankError == "" {
		fmt.Fprintln(tw, "  (no located events)")
	}

	return tw.Flush()
}
