package extract

import (
	"strings"
)

// Summary is the structured result of summary-mode extraction.
type Summary struct {
	Text       string
	Highlights []string
}

const maxHighlights = 4

// bullet markers accepted at the start of a highlight line.
var bulletMarkers = []string{"*", "-", "•"}

func isBullet(line string) bool {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// ParseSummary extracts the first "Summary:" section and, if present, up to
// four bullets from the first "Key Highlights:" section. Repeated sections
// are ignored: extraction stops once the honored sections end.
func ParseSummary(raw string, filter *LineFilter) Summary {
	if filter == nil {
		filter = NewLineFilter()
	}

	const (
		stateNone = iota
		stateSummary
		stateHighlights
	)

	var summary strings.Builder
	var highlights []string
	state := stateNone

scan:
	for _, l := range filter.CleanLines(raw) {
		lower := strings.ToLower(l)
		switch {
		case strings.HasPrefix(lower, "summary:"):
			if state != stateNone {
				// A second summary section; only the first is honored.
				break scan
			}
			state = stateSummary
		case strings.HasPrefix(lower, "key highlights:"):
			if state != stateSummary {
				break scan
			}
			state = stateHighlights
		case state == stateHighlights:
			if !isBullet(l) {
				break scan
			}
			highlights = append(highlights, l)
			if len(highlights) >= maxHighlights {
				break scan
			}
		case state == stateSummary:
			summary.WriteString(l)
			summary.WriteString(" ")
		}
	}

	return Summary{
		Text:       strings.TrimSpace(summary.String()),
		Highlights: highlights,
	}
}

// Format renders the composite display form, or the bare summary text when
// no highlights were extracted.
func (s Summary) Format() string {
	if len(s.Highlights) == 0 {
		return s.Text
	}
	return "Summary:\n" + s.Text + "\n\nKey Highlights:\n" + strings.Join(s.Highlights, "\n")
}
