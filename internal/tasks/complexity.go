package tasks

import (
	"strings"
)

// Normalization ceilings for the complexity score: sentences at or above 30
// words and words at or above 10 characters count as maximally complex.
const (
	sentenceLengthCeiling = 30.0
	wordLengthCeiling     = 10.0
)

// Complexity scores text in [0,1] as the mean of normalized average
// sentence length and normalized average word length, each capped at 1.
func Complexity(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	avgSentenceLen := float64(len(words)) / float64(sentences)

	var chars int
	for _, w := range words {
		chars += len([]rune(w))
	}
	avgWordLen := float64(chars) / float64(len(words))

	score := (capped(avgSentenceLen/sentenceLengthCeiling) + capped(avgWordLen/wordLengthCeiling)) / 2
	return capped(score)
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func capped(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
