package prompt

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

// SplitFrontmatter separates a leading "---" fenced YAML block from the
// rest of text. ok is false when text has no frontmatter; body is then
// text unchanged.
func SplitFrontmatter(text string) (front, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, "\r \t") != frontmatterFence {
		return "", text, false
	}

	offset := 0
	for offset <= len(rest) {
		line, next, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r \t") == frontmatterFence {
			front = rest[:offset]
			if more {
				body = next
			}
			return front, body, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", text, false
}

// Tag is one frontmatter entry rendered into the prompt.
type Tag struct {
	Key   string
	Value string
}

// Tags keeps frontmatter entries in document order.
type Tags []Tag

// reservedTagKey is editor metadata, never part of a prompt.
const reservedTagKey = "position"

// ParseTags reads the top-level frontmatter mapping of a document in
// order. Documents without frontmatter have no tags.
func ParseTags(document string) (Tags, error) {
	front, _, ok := SplitFrontmatter(document)
	if !ok || strings.TrimSpace(front) == "" {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(front), &root); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse frontmatter: expected a mapping, got %s", nodeKindName(m.Kind))
	}

	tags := make(Tags, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Value == reservedTagKey {
			continue
		}
		val, err := tagValue(v)
		if err != nil {
			return nil, fmt.Errorf("frontmatter %q: %w", k.Value, err)
		}
		tags = append(tags, Tag{Key: k.Value, Value: val})
	}
	return tags, nil
}

func tagValue(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			s, err := tagValue(c)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case yaml.AliasNode:
		return tagValue(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return "", err
		}
		return fmt.Sprint(v), nil
	}
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "document"
	}
}
