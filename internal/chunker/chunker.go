package chunker

import (
	"strings"
)

// Chunk represents a bounded contiguous segment of the input text.
// Index is the position within the run; aggregation order depends on it.
type Chunk struct {
	Index int
	Text  string
}

const defaultMaxLength = 2000

// Split breaks text into chunks of at most maxLength characters, keeping
// paragraphs together where possible. Paragraphs that alone exceed the limit
// are split on sentence boundaries with the same accumulation rule. The
// result is fully materialized; empty input yields zero chunks.
func Split(text string, maxLength int) []Chunk {
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}

	var chunks []Chunk
	var current []string
	currentLen := 0

	flush := func(sep string) {
		if len(current) == 0 {
			return
		}
		joined := strings.Join(current, sep)
		chunks = append(chunks, Chunk{Index: len(chunks), Text: joined})
		current = nil
		currentLen = 0
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(paragraph) > maxLength {
			// Oversized paragraph: fall back to sentence boundaries.
			flush("\n\n")
			for _, sentence := range strings.Split(paragraph, ". ") {
				if currentLen+len(sentence)+2 <= maxLength {
					current = append(current, sentence)
					currentLen += len(sentence) + 2
				} else {
					if len(current) > 0 {
						joined := strings.Join(current, ". ") + "."
						chunks = append(chunks, Chunk{Index: len(chunks), Text: joined})
					}
					current = []string{sentence}
					currentLen = len(sentence)
				}
			}
			if len(current) > 0 {
				joined := strings.Join(current, ". ") + "."
				chunks = append(chunks, Chunk{Index: len(chunks), Text: joined})
				current = nil
				currentLen = 0
			}
			continue
		}

		if currentLen+len(paragraph)+2 <= maxLength {
			current = append(current, paragraph)
			currentLen += len(paragraph) + 2
		} else {
			flush("\n\n")
			current = []string{paragraph}
			currentLen = len(paragraph)
		}
	}

	flush("\n\n")
	return chunks
}
