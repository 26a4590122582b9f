package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textLines renders an HTML fragment as trimmed, non-empty text lines.
// <br> elements and newlines in text nodes both break lines.
func textLines(fragment string) []string {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return splitLines(fragment)
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").AppendHtml("\n")

	return splitLines(doc.Text())
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// summaryField returns the value of a "Name: value" line, as found in
// basic calendar feed summaries ("When: ...", "Where: ...").
func summaryField(lines []string, name string) string {
	prefix := name + ":"
	for _, line := range lines {
		if value, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
