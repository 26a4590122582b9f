package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Feed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &Feed{
		Title:   parsed.Title,
		Link:    parsed.Link,
		Updated: parsed.UpdatedParsed,
	}

	gdPrefixes := namespacePrefixes(data, gdNamespace)

	result.Entries = make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		result.Entries = append(result.Entries, p.normalizeItem(item, gdPrefixes))
	}

	return result, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, gdPrefixes []string) Entry {
	summary := textLines(item.Description)

	body := summary
	if item.Content != "" {
		body = textLines(item.Content)
	}

	entry := Entry{
		ID:        cmp.Or(item.GUID, item.Link),
		Title:     strings.TrimSpace(item.Title),
		Body:      strings.Join(body, "\n"),
		Link:      item.Link,
		Published: item.PublishedParsed,
		Updated:   item.UpdatedParsed,
	}

	var wheres, whens []ext.Extension
	for _, prefix := range gdPrefixes {
		gd := item.Extensions[prefix]
		wheres = append(wheres, gd["where"]...)
		whens = append(whens, gd["when"]...)
	}

	entry.Location = cmp.Or(
		firstAttr(wheres, "valueString"),
		summaryField(summary, "Where"),
	)

	for _, when := range whens {
		occurrence, ok := parseWhen(when)
		if ok {
			entry.Occurrences = append(entry.Occurrences, occurrence)
		}
	}

	return entry
}

func firstAttr(extensions []ext.Extension, attr string) string {
	for _, e := range extensions {
		if value := strings.TrimSpace(e.Attrs[attr]); value != "" {
			return value
		}
	}
	return ""
}

func parseWhen(when ext.Extension) (Occurrence, bool) {
	start, startAllDay, err := parseFeedTime(when.Attrs["startTime"])
	if err != nil {
		return Occurrence{}, false
	}

	occurrence := Occurrence{Start: start, End: start, AllDay: startAllDay}

	if raw := when.Attrs["endTime"]; raw != "" {
		end, _, err := parseFeedTime(raw)
		if err == nil {
			occurrence.End = end
		}
	}

	return occurrence, true
}

// parseFeedTime accepts RFC 3339 date-times (fractional seconds allowed)
// and bare dates, which mark all-day events.
func parseFeedTime(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid feed time %q", raw)
	}
	return t, true, nil
}
