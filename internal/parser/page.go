package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"golang.org/x/net/html"
)

// anchoredRe matches the GOV.UK wording, e.g. "The threat to the UK (England,
// Wales, Scotland and Northern Ireland) from terrorism is substantial". The
// qualifier between "UK" and "from" may not cross a sentence end.
var anchoredRe = regexp.MustCompile(`(?i)\bthreat\s+to\s+the\s+UK\b[^.]{0,200}?\bfrom\s+terrorism\s+is\s+([a-z]+)\b`)

// skippedElements never contribute visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// PageParser extracts a level from an HTML or plain-text page.
type PageParser struct {
	// AllowLoose enables a whole-page scan for the first bare level word when
	// the anchored phrase is missing. Matches found this way are tagged
	// domain.MatchLoose.
	AllowLoose bool
}

// Parse tries the anchored phrase first, then the loose scan if enabled.
func (p *PageParser) Parse(body []byte) (Result, bool) {
	text := VisibleText(body)

	if level, ok := parseAnchored(text); ok {
		return Result{Level: level, Match: domain.MatchAnchored}, true
	}
	if !p.AllowLoose {
		return Result{}, false
	}
	if level, ok := domain.NormalizeLevel(text); ok {
		return Result{Level: level, Match: domain.MatchLoose}, true
	}
	return Result{}, false
}

// ParsePage runs only the anchored match against body.
func ParsePage(body []byte) (domain.Level, bool) {
	return parseAnchored(VisibleText(body))
}

func parseAnchored(text string) (domain.Level, bool) {
	for _, m := range anchoredRe.FindAllStringSubmatch(text, -1) {
		if level, ok := domain.NormalizeLevel(m[1]); ok {
			return level, true
		}
	}
	return "", false
}

// VisibleText reduces markup to the whitespace-collapsed text a reader would
// see. Plain text passes through with only whitespace collapsed.
func VisibleText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return strings.Join(strings.Fields(string(body)), " ")
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
