package feed

import (
	"bytes"
	"slices"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// gdNamespace is the Google Data namespace carrying gd:when and gd:where.
const gdNamespace = "http://schemas.google.com/g/2005"

// gdPrefix is the conventional prefix for gdNamespace, used when the
// document's declarations cannot be read.
const gdPrefix = "gd"

// namespacePrefixes lists the prefixes the document binds to space, in
// declaration order. gofeed keys extensions by the declared prefix
// (lowercased), so a feed using xmlns:g for gdNamespace needs "g".
func namespacePrefixes(data []byte, space string) []string {
	p := xpp.NewXMLPullParser(bytes.NewReader(data), false, charset.NewReaderLabel)

	var prefixes []string
	for {
		event, err := p.Next()
		if err != nil || event == xpp.EndDocument {
			break
		}
		if event != xpp.StartTag {
			continue
		}
		if prefix, ok := p.Spaces[space]; ok && !slices.Contains(prefixes, prefix) {
			prefixes = append(prefixes, prefix)
		}
	}

	if len(prefixes) == 0 {
		return []string{gdPrefix}
	}
	return prefixes
}
