package domain

import (
	"regexp"
	"strings"
)

// Level is one of the five canonical UK threat levels.
type Level string

const (
	LevelLow         Level = "LOW"
	LevelModerate    Level = "MODERATE"
	LevelSubstantial Level = "SUBSTANTIAL"
	LevelSevere      Level = "SEVERE"
	LevelCritical    Level = "CRITICAL"
)

// Levels lists every canonical level in ascending severity.
var Levels = []Level{
	LevelLow,
	LevelModerate,
	LevelSubstantial,
	LevelSevere,
	LevelCritical,
}

var ordinals = map[Level]int{
	LevelLow:         1,
	LevelModerate:    2,
	LevelSubstantial: 3,
	LevelSevere:      4,
	LevelCritical:    5,
}

// levelWordRe matches any level name as a whole word. The leftmost match in
// the text wins regardless of alternation order.
var levelWordRe = regexp.MustCompile(`(?i)\b(LOW|MODERATE|SUBSTANTIAL|SEVERE|CRITICAL)\b`)

// Ordinal returns the 1..5 gauge value for the level, or 0 for an unknown value.
func (l Level) Ordinal() int {
	return ordinals[l]
}

// Known reports whether l is one of the five canonical levels.
func (l Level) Known() bool {
	_, ok := ordinals[l]
	return ok
}

// Compare orders levels by severity. Unknown levels sort below LOW.
func (l Level) Compare(other Level) int {
	return l.Ordinal() - other.Ordinal()
}

func (l Level) String() string {
	return string(l)
}

// LevelFromOrdinal is the inverse of Level.Ordinal.
func LevelFromOrdinal(n int) (Level, bool) {
	if n < 1 || n > len(Levels) {
		return "", false
	}
	return Levels[n-1], true
}

// NormalizeLevel finds the first whole-word level name in text, ignoring case.
func NormalizeLevel(text string) (Level, bool) {
	m := levelWordRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	level := Level(strings.ToUpper(m[1]))
	if !level.Known() {
		return "", false
	}
	return level, true
}
