package copilot

import "strings"

// Suggestion is one line of a generated answer.
type Suggestion struct {
	Text     string
	Included bool
}

// SuggestionSet is the ordered checklist shown in the options state. It
// alone decides what a commit writes.
type SuggestionSet []Suggestion

// ParseSuggestions splits text into trimmed, non-empty lines. The first
// suggestion starts included.
func ParseSuggestions(text string) SuggestionSet {
	var set SuggestionSet
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		set = append(set, Suggestion{Text: line})
	}
	if len(set) > 0 {
		set[0].Included = true
	}
	return set
}

// Included returns the texts of included suggestions in order.
func (s SuggestionSet) Included() []string {
	var out []string
	for _, sg := range s {
		if sg.Included {
			out = append(out, sg.Text)
		}
	}
	return out
}

// Toggle flips suggestion i. Out-of-range indices are ignored.
func (s SuggestionSet) Toggle(i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	s[i].Included = !s[i].Included
	return true
}

func (s SuggestionSet) clone() SuggestionSet {
	if s == nil {
		return nil
	}
	return append(SuggestionSet(nil), s...)
}

// BuildEdit turns the included suggestions into the commit edit for sel.
// Append inserts a bullet list after sel; Replace swaps sel for the lines.
// With nothing included the inserted text is empty.
func BuildEdit(mode CommitMode, sel Range, set SuggestionSet) Edit {
	included := set.Included()
	switch mode {
	case CommitReplace:
		return Edit{From: sel.From, To: sel.To, Insert: strings.Join(included, "\n")}
	default:
		insert := ""
		if len(included) > 0 {
			insert = "\n - " + strings.Join(included, "\n - ")
		}
		return Edit{From: sel.To, To: sel.To, Insert: insert}
	}
}
