package extract

import (
	"strings"
)

// Card is one question/answer flashcard.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CardLimits bounds the rendered length of each side of a card.
type CardLimits struct {
	MaxQuestionLen int
	MaxAnswerLen   int
}

// DefaultCardLimits matches the display constraints of the front-end.
var DefaultCardLimits = CardLimits{MaxQuestionLen: 150, MaxAnswerLen: 300}

// fingerprint is the case-normalized dedupe key for one card.
type fingerprint struct {
	question string
	answer   string
}

// CardParser extracts flashcards from raw completions. Duplicate cards are
// suppressed across all Parse calls on the same parser, so one parser's
// lifetime is one generation run.
type CardParser struct {
	filter *LineFilter
	limits CardLimits
	seen   map[fingerprint]struct{}
}

// NewCardParser builds a parser with a fresh dedupe set. Zero limits fall
// back to DefaultCardLimits.
func NewCardParser(limits CardLimits) *CardParser {
	if limits.MaxQuestionLen <= 0 {
		limits.MaxQuestionLen = DefaultCardLimits.MaxQuestionLen
	}
	if limits.MaxAnswerLen <= 0 {
		limits.MaxAnswerLen = DefaultCardLimits.MaxAnswerLen
	}
	return &CardParser{
		filter: NewLineFilter(),
		limits: limits,
		seen:   make(map[fingerprint]struct{}),
	}
}

// Parse splits raw text on "Question:" markers, pairs each segment with its
// first "Answer:", cleans both sides, and returns the surviving new cards.
// Segments with an empty side and duplicates of earlier cards are dropped.
func (p *CardParser) Parse(raw string) []Card {
	segments := strings.Split(raw, "Question:")
	if len(segments) < 2 {
		return nil
	}

	var cards []Card
	for _, segment := range segments[1:] {
		question, answer, found := strings.Cut(segment, "Answer:")
		if !found {
			continue
		}
		question = p.clean(question)
		answer = p.clean(answer)
		if question == "" || answer == "" {
			continue
		}

		fp := fingerprint{
			question: strings.ToLower(question),
			answer:   strings.ToLower(answer),
		}
		if _, dup := p.seen[fp]; dup {
			continue
		}
		p.seen[fp] = struct{}{}

		cards = append(cards, Card{
			Question: truncate(question, p.limits.MaxQuestionLen),
			Answer:   truncate(answer, p.limits.MaxAnswerLen),
		})
	}
	return cards
}

// clean strips markup characters and boilerplate lines, collapsing the
// remainder onto one line.
func (p *CardParser) clean(s string) string {
	s = StripTags(s)
	s = strings.NewReplacer("**", "", ">>", "", ">", "", "<", "", "*", "").Replace(s)
	lines := p.filter.CleanLines(s)
	return strings.TrimSpace(strings.Join(lines, " "))
}

// truncate bounds s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
