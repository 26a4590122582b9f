package feed

import (
	"time"
)

// Feed is a parsed calendar feed. Entries keep document order.
type Feed struct {
	Source  string     `json:"source"`
	Title   string     `json:"title"`
	Link    string     `json:"link,omitempty"`
	Updated *time.Time `json:"updated,omitempty"`
	Entries []Entry    `json:"entries"`
}

type Entry struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Body        string       `json:"body,omitempty"` // plain text of content, or summary when content is empty
	Link        string       `json:"link,omitempty"`
	Location    string       `json:"location,omitempty"`
	Published   *time.Time   `json:"published,omitempty"`
	Updated     *time.Time   `json:"updated,omitempty"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Occurrence is one start/end window of an entry.
type Occurrence struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
}

// FirstStart returns the earliest occurrence start, or the zero time.
func (e Entry) FirstStart() time.Time {
	var first time.Time
	for _, o := range e.Occurrences {
		if first.IsZero() || o.Start.Before(first) {
			first = o.Start
		}
	}
	return first
}
