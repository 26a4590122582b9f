package calendar

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	feedURLTemplatePrefix = "http://www.google.com/calendar/feeds/"
	feedURLTemplateSuffix = "/public/basic"
	defaultMailDomain     = "@gmail.com"
)

// FeedURL is a resolved calendar feed address. The query client only
// accepts this type, so raw identifiers must go through Resolve first.
type FeedURL string

func (f FeedURL) String() string {
	return string(f)
}

type Kind int

const (
	KindEmail Kind = iota
	KindURL
)

func (k Kind) String() string {
	if k == KindURL {
		return "url"
	}
	return "email"
}

// Classify treats anything not starting with http: or https: as an email.
func Classify(identifier string) Kind {
	if strings.HasPrefix(identifier, "http:") || strings.HasPrefix(identifier, "https:") {
		return KindURL
	}
	return KindEmail
}

// ToFeedURL maps an email (or a bare account name, which gets @gmail.com)
// to its public basic feed.
func ToFeedURL(email string) FeedURL {
	if !strings.Contains(email, "@") {
		email += defaultMailDomain
	}
	return FeedURL(feedURLTemplatePrefix + quote(email) + feedURLTemplateSuffix)
}

// Resolve normalizes an identifier and returns the feed it refers to.
func Resolve(identifier string) FeedURL {
	identifier = Normalize(identifier)
	if Classify(identifier) == KindURL {
		return FeedURL(identifier)
	}
	return ToFeedURL(identifier)
}

// ResolveAll resolves a set of identifiers; identifiers that resolve to the
// same feed collapse into one entry.
func ResolveAll(identifiers Set) map[FeedURL][]string {
	feeds := make(map[FeedURL][]string, len(identifiers))
	for _, id := range identifiers.Sorted() {
		feed := Resolve(id)
		feeds[feed] = append(feeds[feed], id)
	}
	return feeds
}

func Normalize(identifier string) string {
	return norm.NFC.String(strings.TrimSpace(identifier))
}

// quote percent-encodes everything outside the unreserved set, including
// '@'. Spaces become %20 rather than '+'.
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
