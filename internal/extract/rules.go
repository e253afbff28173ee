package extract

import (
	"regexp"
	"strings"
)

// Rule is one line-filtering predicate. The filter is an ordered list of
// rules so the policy stays data rather than logic repeated per task.
type Rule struct {
	Name string
	Drop func(line string) bool
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes XML/HTML-style tags such as <rewritten_response>.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// boilerplatePattern matches apology/meta-comment lines the model emits
// around the content we actually asked for.
var boilerplatePattern = regexp.MustCompile(`(?i)^(the summary should|no, start with|here is a possible|please provide|i apologize|this is not|waiting for your text|now create|only output|summarize the following|do not include|output the summary|output only|in summary:|rewritten response is:|rest of the original text remains the same)`)

// DefaultRules returns the shared boilerplate policy applied to every
// task's output before extraction.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "meta-comment",
			Drop: func(line string) bool { return boilerplatePattern.MatchString(line) },
		},
		{
			Name: "code-fence",
			Drop: func(line string) bool { return strings.HasPrefix(line, "```") },
		},
		{
			Name: "separator",
			Drop: func(line string) bool { return strings.HasPrefix(line, "---") },
		},
	}
}

// LineFilter applies an ordered rule list to individual lines.
type LineFilter struct {
	rules []Rule
}

// NewLineFilter builds a filter; with no rules it uses DefaultRules.
func NewLineFilter(rules ...Rule) *LineFilter {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &LineFilter{rules: rules}
}

// Drop reports whether the (already trimmed) line is boilerplate.
func (f *LineFilter) Drop(line string) bool {
	for _, r := range f.rules {
		if r.Drop(line) {
			return true
		}
	}
	return false
}

// CleanLines strips tags, trims each line, and returns the lines that
// survive the filter, in order.
func (f *LineFilter) CleanLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(StripTags(raw), "\n") {
		l := strings.TrimSpace(line)
		if l == "" || f.Drop(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}
