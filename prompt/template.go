package prompt

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrTemplateNotFound is returned when no template file matches a name.
var ErrTemplateNotFound = errors.New("template not found")

// Template is a loaded prompt template.
type Template struct {
	Name string
	// Body is the text after the frontmatter, placeholder included.
	Body string
	// Front holds the decoded frontmatter, nil when absent.
	Front map[string]any
}

// ParseTemplate splits raw file contents into frontmatter and body.
func ParseTemplate(name, raw string) (Template, error) {
	front, body, ok := SplitFrontmatter(raw)
	t := Template{Name: name, Body: body}
	if !ok {
		return t, nil
	}
	if err := yaml.Unmarshal([]byte(front), &t.Front); err != nil {
		return Template{}, fmt.Errorf("template %q frontmatter: %w", name, err)
	}
	return t, nil
}

// Parameters applies the template's frontmatter to base.
func (t Template) Parameters(base Parameters) (Parameters, error) {
	p, err := base.Override(t.Front)
	if err != nil {
		return base, fmt.Errorf("template %q: %w", t.Name, err)
	}
	return p, nil
}
