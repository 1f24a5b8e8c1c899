package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"golang.org/x/net/html/charset"
)

// defaultTitleElements are the element names whose text is checked for a level.
var defaultTitleElements = []string{"title"}

// FeedParser reads an XML feed (RSS, Atom or a bare document) and checks the
// text of every title-bearing element in document order.
type FeedParser struct {
	TitleElements []string
}

// NewFeedParser creates a FeedParser that inspects <title> elements.
func NewFeedParser() *FeedParser {
	return &FeedParser{TitleElements: defaultTitleElements}
}

// Parse returns the first level named by a title node. The whole document must
// be well-formed; a truncated or invalid feed yields ok == false.
func (p *FeedParser) Parse(body []byte) (Result, bool) {
	titles, err := p.collectTitles(body)
	if err != nil {
		return Result{}, false
	}
	for _, title := range titles {
		if level, ok := domain.NormalizeLevel(title); ok {
			return Result{Level: level, Match: domain.MatchFeed}, true
		}
	}
	return Result{}, false
}

// ParseFeed is shorthand for NewFeedParser().Parse(body).
func ParseFeed(body []byte) (domain.Level, bool) {
	res, ok := NewFeedParser().Parse(body)
	return res.Level, ok
}

func (p *FeedParser) collectTitles(body []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		titles  []string
		sawRoot bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if !p.isTitle(se.Name.Local) {
			continue
		}
		var text string
		if err := decoder.DecodeElement(&text, &se); err != nil {
			return nil, err
		}
		if text = strings.TrimSpace(text); text != "" {
			titles = append(titles, text)
		}
	}

	if !sawRoot {
		return nil, errors.New("feed has no root element")
	}
	return titles, nil
}

func (p *FeedParser) isTitle(local string) bool {
	for _, name := range p.TitleElements {
		if strings.EqualFold(local, name) {
			return true
		}
	}
	return false
}
