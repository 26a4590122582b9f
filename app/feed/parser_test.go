package feed

import (
	"testing"
	"time"
)

const basicCalendarFeed = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gd='http://schemas.google.com/g/2005'>
  <id>http://www.google.com/calendar/feeds/alice%40example.com/public/basic</id>
  <updated>2008-01-10T18:00:00.000Z</updated>
  <title type='text'>Alice's Calendar</title>
  <link rel='alternate' type='text/html' href='http://www.google.com/calendar/embed?src=alice@example.com'/>
  <entry>
    <id>http://www.google.com/calendar/feeds/alice%40example.com/public/basic/evt1</id>
    <published>2008-01-01T10:00:00.000Z</published>
    <updated>2008-01-02T10:00:00.000Z</updated>
    <title type='text'>Poetry Night</title>
    <summary type='html'>When: Tue Jan 15, 2008 7pm to 9pm&amp;nbsp;
CST&lt;br&gt;

&lt;br&gt;Where: May Day Cafe, Minneapolis&lt;br&gt;Event Status: confirmed</summary>
    <link rel='alternate' type='text/html' href='http://www.google.com/calendar/event?eid=evt1'/>
    <gd:when startTime='2008-01-15T19:00:00.000-06:00' endTime='2008-01-15T21:00:00.000-06:00'/>
  </entry>
  <entry>
    <id>evt2</id>
    <updated>2008-01-03T10:00:00.000Z</updated>
    <title type='text'>Garden Day</title>
    <content type='html'>Bring &lt;b&gt;gloves&lt;/b&gt;&lt;br/&gt;and water</content>
    <gd:where valueString='Powderhorn Park'/>
    <gd:when startTime='2008-01-20' endTime='2008-01-21'/>
    <gd:when startTime='2008-01-27'/>
    <gd:when startTime='not a time'/>
  </entry>
</feed>`

func TestParseBasicCalendarFeed(t *testing.T) {
	parser := NewParser()
	result, err := parser.Run([]byte(basicCalendarFeed))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Title != "Alice's Calendar" {
		t.Errorf("Expected title 'Alice's Calendar', got: %s", result.Title)
	}
	if result.Updated == nil {
		t.Error("Expected feed updated time to be parsed")
	}
	if len(result.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(result.Entries))
	}

	first := result.Entries[0]
	if first.Title != "Poetry Night" {
		t.Errorf("Expected title 'Poetry Night', got: %s", first.Title)
	}
	if first.Location != "May Day Cafe, Minneapolis" {
		t.Errorf("Expected location from summary, got: %q", first.Location)
	}
	if first.Link != "http://www.google.com/calendar/event?eid=evt1" {
		t.Errorf("Unexpected link: %s", first.Link)
	}
	if len(first.Occurrences) != 1 {
		t.Fatalf("Expected 1 occurrence, got: %d", len(first.Occurrences))
	}
	wantStart := time.Date(2008, 1, 16, 1, 0, 0, 0, time.UTC)
	if !first.Occurrences[0].Start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, first.Occurrences[0].Start)
	}
	if first.Occurrences[0].End.Sub(first.Occurrences[0].Start) != 2*time.Hour {
		t.Errorf("Expected a two hour occurrence, got %v", first.Occurrences[0].End.Sub(first.Occurrences[0].Start))
	}
	if first.Occurrences[0].AllDay {
		t.Error("Expected timed occurrence")
	}

	second := result.Entries[1]
	if second.ID != "evt2" {
		t.Errorf("Expected ID 'evt2', got: %s", second.ID)
	}
	if second.Location != "Powderhorn Park" {
		t.Errorf("Expected location from gd:where, got: %q", second.Location)
	}
	if second.Body != "Bring gloves\nand water" {
		t.Errorf("Expected plain text body, got: %q", second.Body)
	}
	if len(second.Occurrences) != 2 {
		t.Fatalf("Expected 2 valid occurrences, got: %d", len(second.Occurrences))
	}
	if !second.Occurrences[0].AllDay {
		t.Error("Expected all-day occurrence for bare date")
	}
	if !second.Occurrences[1].End.Equal(second.Occurrences[1].Start) {
		t.Error("Expected missing end time to default to start")
	}
	if got := second.FirstStart(); !got.Equal(time.Date(2008, 1, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected first start: %v", got)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	if _, err := parser.Run([]byte(`<html><body>This is not a feed</body></html>`)); err == nil {
		t.Error("Expected error for invalid feed data")
	}
}

func TestParseEmptyFeed(t *testing.T) {
	data := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Empty</title></feed>`

	result, err := NewParser().Run([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(result.Entries))
	}
}

func TestSummaryField(t *testing.T) {
	lines := textLines("When: tomorrow<br>Where:  The Park <br/>Event Status: confirmed")

	if got := summaryField(lines, "When"); got != "tomorrow" {
		t.Errorf("Expected 'tomorrow', got %q", got)
	}
	if got := summaryField(lines, "Where"); got != "The Park" {
		t.Errorf("Expected 'The Park', got %q", got)
	}
	if got := summaryField(lines, "Who"); got != "" {
		t.Errorf("Expected empty value, got %q", got)
	}
}

func TestTextLinesEmpty(t *testing.T) {
	if lines := textLines("   "); lines != nil {
		t.Errorf("Expected nil, got %v", lines)
	}
}

func TestParseCustomDataPrefix(t *testing.T) {
	data := `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:g='http://schemas.google.com/g/2005'>
  <title>Custom prefix</title>
  <entry>
    <id>evt1</id>
    <title>Poetry Night</title>
    <g:where valueString='May Day Cafe'/>
    <g:when startTime='2008-01-15T19:00:00.000-06:00' endTime='2008-01-15T21:00:00.000-06:00'/>
  </entry>
</feed>`

	result, err := NewParser().Run([]byte(data))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(result.Entries))
	}

	entry := result.Entries[0]
	if entry.Location != "May Day Cafe" {
		t.Errorf("Expected location from g:where, got: %q", entry.Location)
	}
	if len(entry.Occurrences) != 1 {
		t.Fatalf("Expected 1 occurrence, got: %d", len(entry.Occurrences))
	}
	if want := time.Date(2008, 1, 16, 1, 0, 0, 0, time.UTC); !entry.Occurrences[0].Start.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, entry.Occurrences[0].Start)
	}
}

func TestNamespacePrefixes(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"conventional", `<feed xmlns:gd='http://schemas.google.com/g/2005'/>`, []string{"gd"}},
		{"custom", `<feed xmlns:G='http://schemas.google.com/g/2005'/>`, []string{"g"}},
		{"nested", `<feed><entry xmlns:x='http://schemas.google.com/g/2005'/><entry xmlns:y='http://schemas.google.com/g/2005'/></feed>`, []string{"x", "y"}},
		{"undeclared", `<feed xmlns='http://www.w3.org/2005/Atom'/>`, []string{"gd"}},
		{"not xml", `not xml at all <`, []string{"gd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := namespacePrefixes([]byte(tt.data), gdNamespace)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}
