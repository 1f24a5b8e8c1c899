package domain

import "time"

// SourceKind tells the pipeline which parser understands a source's body.
type SourceKind string

const (
	SourceStructuredFeed   SourceKind = "structured-feed"
	SourceUnstructuredPage SourceKind = "unstructured-page"
)

// SourceDescriptor identifies a fetch target.
type SourceDescriptor struct {
	Name    string            // short identifier used in logs and metrics, e.g. "mi5-feed"
	URL     string
	Kind    SourceKind
	Headers map[string]string // extra request headers layered over the client defaults
}

// MatchKind records how confidently a level was extracted.
type MatchKind string

const (
	MatchFeed     MatchKind = "feed"     // title node of the structured feed
	MatchAnchored MatchKind = "anchored" // "threat to the UK ... from terrorism is <level>"
	MatchLoose    MatchKind = "loose"    // first bare level word anywhere on the page
)

// ThreatReading is the immutable result of one successful update cycle.
type ThreatReading struct {
	Level      Level     `json:"level"`
	Ordinal    int       `json:"ordinal"`
	Source     string    `json:"source"`
	SourceName string    `json:"source_name"`
	Match      MatchKind `json:"match"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NewReading builds a reading for level from src. It returns false for a
// level outside the canonical set so callers never publish a corrupt reading.
func NewReading(level Level, src SourceDescriptor, match MatchKind) (ThreatReading, bool) {
	if !level.Known() {
		return ThreatReading{}, false
	}
	return ThreatReading{
		Level:      level,
		Ordinal:    level.Ordinal(),
		Source:     src.URL,
		SourceName: src.Name,
		Match:      match,
		FetchedAt:  clock.Now().UTC(),
	}, true
}
