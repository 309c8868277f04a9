package keywords

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reTag        = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9]*)[^<>]*>`)
)

var voidElements = map[string]bool{"br": true, "hr": true, "img": true, "wbr": true}

// Cleaner normalises names and URLs before they enter a keyword set.
type Cleaner struct {
	stripMarkup   bool
	normalizeURLs bool
}

// NewCleaner returns a Cleaner. stripMarkup removes HTML tags and entities
// left over from scraping; normalizeURLs canonicalises movie URLs.
func NewCleaner(stripMarkup, normalizeURLs bool) *Cleaner {
	return &Cleaner{stripMarkup: stripMarkup, normalizeURLs: normalizeURLs}
}

// Name returns the display text of a scraped name with whitespace collapsed.
// Angle brackets that do not form balanced tags are part of the name and
// are kept as is.
func (c *Cleaner) Name(name string) string {
	raw := normalizeText(name)
	if !c.stripMarkup || !strings.ContainsAny(raw, "<&") || !wellFormedMarkup(raw) {
		return raw
	}
	if text := normalizeText(markupText(raw)); text != "" {
		return text
	}
	return raw
}

// URL removes whitespace from a movie URL and, if enabled, normalises it.
func (c *Cleaner) URL(raw string) string {
	raw = strings.Join(strings.Fields(raw), "")
	if raw == "" || !c.normalizeURLs {
		return raw
	}
	return NormalizeURL(raw)
}

// wellFormedMarkup reports whether every '<' in s opens a tag and every
// non-void tag is closed in order.
func wellFormedMarkup(s string) bool {
	tags := reTag.FindAllStringSubmatch(s, -1)
	if len(tags) != strings.Count(s, "<") {
		return false
	}

	var open []string
	for _, tag := range tags {
		name := strings.ToLower(tag[1])
		switch {
		case strings.HasPrefix(tag[0], "</"):
			if len(open) == 0 || open[len(open)-1] != name {
				return false
			}
			open = open[:len(open)-1]
		case strings.HasSuffix(tag[0], "/>") || voidElements[name]:
		default:
			open = append(open, name)
		}
	}
	return len(open) == 0
}

func markupText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}

func normalizeText(text string) string {
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeURL drops the fragment and a leading "www." and defaults the
// scheme to https.
func NormalizeURL(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	parsed.Fragment = ""
	parsed.Host = strings.TrimPrefix(parsed.Host, "www.")
	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}

	return parsed.String()
}
