// Package parser extracts a canonical threat level from fetched source bodies.
//
// Parsers never return errors: a body that cannot be read as the expected
// format, or that names no level, yields ok == false so the pipeline can move
// on to the next source.
package parser

import "github.com/couchcryptid/threat-level-monitor/internal/domain"

// Result is a level extracted from a body together with how it was found.
type Result struct {
	Level domain.Level
	Match domain.MatchKind
}

// Parser extracts a level from a raw response body.
type Parser interface {
	Parse(body []byte) (Result, bool)
}

// ForKind returns the parser that understands bodies of the given source kind.
// allowLoose enables the whole-page level scan for unstructured pages.
func ForKind(kind domain.SourceKind, allowLoose bool) (Parser, bool) {
	switch kind {
	case domain.SourceStructuredFeed:
		return NewFeedParser(), true
	case domain.SourceUnstructuredPage:
		return &PageParser{AllowLoose: allowLoose}, true
	default:
		return nil, false
	}
}
