package prompt

import "strings"

const (
	// Placeholder marks where the selected text goes in a template.
	Placeholder = "{selection}"

	// Trailer is appended to every composed prompt.
	Trailer = "Format your answer using markdown, using bullet lists where necessary and subheadings to delineate different sections."
)

// Compose substitutes the first placeholder with selection verbatim,
// prepends one "<key> <value>.\n" line per tag (each before the previous
// one) and appends Trailer.
func Compose(template, selection string, tags Tags) string {
	out := strings.Replace(template, Placeholder, selection, 1)
	return Prefix(out, tags) + Trailer
}

// Prefix prepends the tag lines to text without substitution or trailer.
func Prefix(text string, tags Tags) string {
	if len(tags) == 0 {
		return text
	}
	var sb strings.Builder
	for i := len(tags) - 1; i >= 0; i-- {
		if tags[i].Key == reservedTagKey {
			continue
		}
		sb.WriteString(tags[i].Key)
		sb.WriteByte(' ')
		sb.WriteString(tags[i].Value)
		sb.WriteString(".\n")
	}
	sb.WriteString(text)
	return sb.String()
}
