// Package domain models the UK national terrorism threat level.
//
// # Threat Levels
//
// The UK publishes one of five levels, ordered from least to most severe:
//
//	LOW          an attack is highly unlikely              ordinal 1
//	MODERATE     an attack is possible but not likely      ordinal 2
//	SUBSTANTIAL  an attack is likely                       ordinal 3
//	SEVERE       an attack is highly likely                ordinal 4
//	CRITICAL     an attack is highly likely in near future ordinal 5
//
// The ordinal is used for any numeric or gauge representation. No other
// integers are valid; see [Level.Ordinal] and [LevelFromOrdinal].
//
// # Data Sources
//
// Two public sources are polled in a fixed order:
//
//	Structured feed:   MI5 RSS/XML document. Item titles read like
//	                   "Current threat level: SUBSTANTIAL".
//	Unstructured page: GOV.UK guidance page. Body text reads like
//	                   "The threat to the UK (England, Wales, Scotland and
//	                   Northern Ireland) from terrorism is substantial."
//
// Both sources are inconsistent about case and surrounding punctuation, so
// every extracted fragment passes through [NormalizeLevel], which scans for
// the first whole-word level name. Partial words never match ("LOWERED" is
// not LOW).
//
// # Readings
//
// A [ThreatReading] is built once per successful update cycle and never
// mutated. The next successful cycle supersedes it entirely. [Sensors]
// derives the two observable values exposed to consumers: the level name and
// its ordinal, each tagged with the originating source URL.
package domain
