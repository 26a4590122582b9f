package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/local-events/app/feed"
)

// EventStore keeps the latest fetched snapshot of each calendar
type EventStore struct {
	db *DB
}

func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// ReplaceCalendarEvents swaps the stored snapshot of one calendar for f.
// Every occurrence gets its own row; entries without occurrences get one
// row with no times.
func (r *EventStore) ReplaceCalendarEvents(feedURL string, f *feed.Feed, fetchedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM calendar_events WHERE feed_url = ?`, feedURL); err != nil {
		return fmt.Errorf("failed to clear calendar events: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO calendar_events (
			feed_url, entry_id, title, body, location, link,
			starts_at, ends_at, all_day, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	fetched := formatTime(fetchedAt)

	if f != nil {
		for _, entry := range f.Entries {
			occurrences := entry.Occurrences
			if len(occurrences) == 0 {
				occurrences = []feed.Occurrence{{}}
			}
			for _, o := range occurrences {
				_, err := stmt.Exec(feedURL, entry.ID, entry.Title, entry.Body, entry.Location, entry.Link,
					nullableTime(o.Start), nullableTime(o.End), o.AllDay, fetched)
				if err != nil {
					return fmt.Errorf("failed to insert calendar event: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calendar events: %w", err)
	}

	return nil
}

// GetCalendarEvents returns the stored rows of one calendar, earliest first
func (r *EventStore) GetCalendarEvents(feedURL string) ([]StoredEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, feed_url, entry_id, title, body, location, link,
		       starts_at, ends_at, all_day, fetched_at
		FROM calendar_events
		WHERE feed_url = ?
		ORDER BY starts_at IS NULL, starts_at, id
	`, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var (
			event            StoredEvent
			startsAt, endsAt sql.NullString
			fetchedAt        string
		)
		err := rows.Scan(
			&event.ID, &event.FeedURL, &event.EntryID, &event.Title, &event.Body, &event.Location, &event.Link,
			&startsAt, &endsAt, &event.AllDay, &fetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event row: %w", err)
		}

		if event.StartsAt, err = parseNullableTime(startsAt); err != nil {
			return nil, err
		}
		if event.EndsAt, err = parseNullableTime(endsAt); err != nil {
			return nil, err
		}
		if event.FetchedAt, err = time.Parse(storedTimeLayout, fetchedAt); err != nil {
			return nil, fmt.Errorf("invalid fetched_at %q: %w", fetchedAt, err)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar event rows: %w", err)
	}

	return events, nil
}

func (r *EventStore) GetEventCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM calendar_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}

// storedTimeLayout is fixed-width UTC so stored times sort as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(storedTimeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored time %q: %w", s.String, err)
	}
	return &t, nil
}
