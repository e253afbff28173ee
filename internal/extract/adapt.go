package extract

// ParseAdapted returns the adapted text from a level-adaptation completion.
// Only the first line that survives filtering is kept; multi-paragraph
// rewrites are deliberately truncated to a single line (see DESIGN.md for
// the rationale behind keeping this policy). When nothing survives, the raw
// output is returned untrimmed so callers can surface it for debugging
// instead of failing silently.
func ParseAdapted(raw string, filter *LineFilter) string {
	if filter == nil {
		filter = NewLineFilter()
	}
	lines := filter.CleanLines(raw)
	if len(lines) == 0 {
		return raw
	}
	return lines[0]
}
