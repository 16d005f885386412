package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

type cellKind uint8

const (
	cellText cellKind = iota
	cellSelection
	cellCursor
)

func (m Model) renderContent() string {
	if m.buf == nil {
		return ""
	}

	sel, hasSel := m.buf.Selection()
	cursor := m.buf.Cursor()
	gutterW := m.gutterWidth()
	limit := m.contentWidth() - gutterW

	lines := make([]string, 0, m.buf.LineCount())
	for row := 0; row < m.buf.LineCount(); row++ {
		var sb strings.Builder
		if gutterW > 0 {
			sb.WriteString(m.renderGutter(row, gutterW, row == cursor.Row))
		}
		sb.WriteString(m.renderLine(row, sel, hasSel, cursor, limit))
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderGutter(row, width int, active bool) string {
	st := m.cfg.Style.LineNum
	if active {
		st = m.cfg.Style.LineNumActive
	}
	return st.Render(fmt.Sprintf("%*d", width-1, row+1)) + m.cfg.Style.Gutter.Render(" ")
}

// renderLine renders one logical line clipped to limit cells. A limit of
// zero or less means unclipped.
func (m Model) renderLine(row int, sel buffer.Range, hasSel bool, cursor buffer.Pos, limit int) string {
	clusters := grapheme.Split(m.buf.Line(row))

	var (
		sb   strings.Builder
		run  strings.Builder
		kind cellKind
		used int
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		sb.WriteString(m.styleFor(kind).Render(run.String()))
		run.Reset()
	}

	for col, c := range clusters {
		w := grapheme.Width(c, used, m.cfg.TabWidth)
		if limit > 0 && used+w > limit {
			break
		}
		k := m.cellKindAt(buffer.Pos{Row: row, GraphemeCol: col}, sel, hasSel, cursor)
		if k != kind {
			flush()
			kind = k
		}
		if c == "\t" {
			run.WriteString(strings.Repeat(" ", w))
		} else {
			run.WriteString(c)
		}
		used += w
	}
	flush()

	// End-of-line cursor.
	if m.focused && cursor.Row == row && cursor.GraphemeCol >= len(clusters) && (limit <= 0 || used < limit) {
		sb.WriteString(m.cfg.Style.Cursor.Render(" "))
	}
	return sb.String()
}

func (m Model) cellKindAt(p buffer.Pos, sel buffer.Range, hasSel bool, cursor buffer.Pos) cellKind {
	if m.focused && p == cursor {
		return cellCursor
	}
	if hasSel && buffer.ComparePos(p, sel.Start) >= 0 && buffer.ComparePos(p, sel.End) < 0 {
		return cellSelection
	}
	return cellText
}

func (m Model) styleFor(k cellKind) lipgloss.Style {
	switch k {
	case cellCursor:
		return m.cfg.Style.Cursor
	case cellSelection:
		return m.cfg.Style.Selection
	default:
		return m.cfg.Style.Text
	}
}
