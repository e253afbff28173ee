package tasks

import "strings"

// Level is a target reading level for text adaptation.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelExpert       Level = "Expert"
)

// levelProfile holds per-level adaptation targets.
type levelProfile struct {
	maxSentenceLength int
	maxWordLength     int
	complexityTarget  float64
}

var readingLevels = map[Level]levelProfile{
	LevelBeginner:     {maxSentenceLength: 15, maxWordLength: 8, complexityTarget: 0.3},
	LevelIntermediate: {maxSentenceLength: 25, maxWordLength: 12, complexityTarget: 0.6},
	LevelExpert:       {maxSentenceLength: 35, maxWordLength: 20, complexityTarget: 0.9},
}

// NormalizeLevel maps arbitrary user input onto a known level, defaulting
// to Intermediate.
func NormalizeLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner
	case "expert", "advanced":
		return LevelExpert
	default:
		return LevelIntermediate
	}
}
