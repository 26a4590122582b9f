package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/local-events/app/calendar"
	"github.com/lysyi3m/local-events/app/database"
	"github.com/lysyi3m/local-events/app/feed"
	"github.com/lysyi3m/local-events/app/report"
)

// NewHandler serves a finished run. eventRepo may be nil when no snapshot
// database is configured.
func NewHandler(r *report.Report, eventRepo database.EventRepository, version string) *Handler {
	return &Handler{
		report:    r,
		eventRepo: eventRepo,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":    time.Now().In(time.Local).Format(time.RFC3339),
		"generated_at": h.report.GeneratedAt.Format(time.RFC3339),
		"calendars":    len(h.report.Calendars),
		"unavailable":  h.report.FailedCount(),
		"nearby":       len(h.report.Nearby),
	}

	if h.eventRepo != nil {
		count, err := h.eventRepo.GetEventCount()
		if err != nil {
			slog.Error("Database error", "operation", "get_event_count", "error", err)
			health["database"] = "error"
		} else {
			health["database"] = "ok"
			health["stored_events"] = count
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListCalendars(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"calendars": h.report.Calendars,
		"total":     len(h.report.Calendars),
	})
}

// ListEvents returns fetched entries, for one calendar when ?feed= is given.
func (h *Handler) ListEvents(c *gin.Context) {
	feedParam := c.Query("feed")
	if feedParam == "" {
		entries := h.report.Entries()
		total := 0
		for _, list := range entries {
			total += len(list)
		}
		c.JSON(http.StatusOK, gin.H{
			"events": entries,
			"total":  total,
		})
		return
	}

	feedURL := calendar.FeedURL(feedParam)
	summary, ok := h.findCalendar(feedURL)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Calendar not found"})
		return
	}

	f := h.report.Feed(feedURL)
	if f == nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "Calendar unavailable",
			"calendar": summary,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calendar": summary,
		"events":   f.Entries,
		"total":    len(f.Entries),
	})
}

func (h *Handler) ListNearby(c *gin.Context) {
	nearby := h.report.Nearby

	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if limit < len(nearby) {
			nearby = nearby[:limit]
		}
	}

	response := gin.H{
		"me":     h.report.Me,
		"events": nearby,
		"total":  len(h.report.Nearby),
	}
	if h.report.Origin != nil {
		response["origin"] = h.report.Origin
	}
	if h.report.OriginError != "" {
		response["origin_error"] = h.report.OriginError
	}
	if h.report.RankError != "" {
		response["rank_error"] = h.report.RankError
	}

	c.JSON(http.StatusOK, response)
}

// GetSnapshot reads the stored occurrences of one calendar.
func (h *Handler) GetSnapshot(c *gin.Context) {
	feedParam := c.Query("feed")
	if feedParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feed parameter is required"})
		return
	}

	events, err := h.eventRepo.GetCalendarEvents(feedParam)
	if err != nil {
		slog.Error("Database error", "operation", "get_calendar_events", "feed", feedParam, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":   feedParam,
		"events": toSnapshotEvents(events),
		"total":  len(events),
	})
}

func (h *Handler) findCalendar(feedURL calendar.FeedURL) (report.CalendarSummary, bool) {
	for _, summary := range h.report.Calendars {
		if summary.Feed == feedURL {
			return summary, true
		}
	}
	return report.CalendarSummary{}, false
}

type snapshotEvent struct {
	EntryID    string           `json:"entry_id"`
	Title      string           `json:"title"`
	Location   string           `json:"location,omitempty"`
	Link       string           `json:"link,omitempty"`
	Occurrence *feed.Occurrence `json:"occurrence,omitempty"`
	FetchedAt  string           `json:"fetched_at"`
}

func toSnapshotEvents(events []database.StoredEvent) []snapshotEvent {
	out := make([]snapshotEvent, 0, len(events))
	for _, e := range events {
		item := snapshotEvent{
			EntryID:   e.EntryID,
			Title:     e.Title,
			Location:  e.Location,
			Link:      e.Link,
			FetchedAt: e.FetchedAt.Format(time.RFC3339),
		}
		if e.StartsAt != nil {
			occ := feed.Occurrence{Start: *e.StartsAt, AllDay: e.AllDay}
			if e.EndsAt != nil {
				occ.End = *e.EndsAt
			}
			item.Occurrence = &occ
		}
		out = append(out, item)
	}
	return out
}
