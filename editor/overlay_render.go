package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/iw2rmb/inkwell/internal/grapheme"
)

type overlaySpanBox struct {
	line, span int
	x0, x1     int
	target     any
}

type overlayLayout struct {
	x, y          int
	width, height int
	rows          [][]OverlaySpan
	boxes         []overlaySpanBox
}

func (m Model) layoutOverlay() (overlayLayout, bool) {
	if !m.overlay.Visible() || m.buf == nil {
		return overlayLayout{}, false
	}
	viewportWidth := m.contentWidth()
	viewportHeight := m.visibleRowCount()
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return overlayLayout{}, false
	}

	anchorX, anchorY, ok := m.DocToScreen(m.overlay.Anchor)
	if !ok {
		return overlayLayout{}, false
	}

	widthCap := minInt(m.cfg.OverlayMaxWidth, viewportWidth)
	lay := overlayLayout{rows: make([][]OverlaySpan, 0, len(m.overlay.Lines))}
	for _, line := range m.overlay.Lines {
		row := truncateOverlaySpans(line.Spans, widthCap)
		if w := overlaySpansWidth(row); w > lay.width {
			lay.width = w
		}
		lay.rows = append(lay.rows, row)
	}
	if lay.width <= 0 {
		return overlayLayout{}, false
	}

	belowAvail := maxInt(viewportHeight-(anchorY+1), 0)
	aboveAvail := maxInt(anchorY, 0)
	showBelow := true
	rowCount := len(lay.rows)
	if rowCount > belowAvail {
		if aboveAvail >= rowCount {
			showBelow = false
		} else if aboveAvail > belowAvail {
			showBelow = false
			rowCount = aboveAvail
		} else {
			rowCount = belowAvail
		}
	}
	if rowCount <= 0 {
		return overlayLayout{}, false
	}
	lay.rows = lay.rows[:rowCount]
	lay.height = rowCount

	lay.y = anchorY + 1
	if !showBelow {
		lay.y = anchorY - rowCount
	}
	lay.y = clampInt(lay.y, 0, maxInt(viewportHeight-rowCount, 0))
	lay.x = clampInt(anchorX, 0, maxInt(viewportWidth-lay.width, 0))

	for li, row := range lay.rows {
		used := 0
		for si, span := range row {
			w := grapheme.StringWidth(span.Text, m.cfg.TabWidth)
			if span.Target != nil && w > 0 {
				lay.boxes = append(lay.boxes, overlaySpanBox{line: li, span: si, x0: used, x1: used + w, target: span.Target})
			}
			used += w
		}
	}
	return lay, true
}

func (m Model) overlayRender(base string) (string, bool) {
	lay, ok := m.layoutOverlay()
	if !ok {
		return "", false
	}

	focused, hasFocus := m.OverlayFocus()
	rendered := make([]string, 0, len(lay.rows))
	for li, row := range lay.rows {
		var sb strings.Builder
		used := 0
		for si, span := range row {
			if span.Text == "" {
				continue
			}
			st := m.overlaySpanStyle(span)
			if hasFocus && focused.Line == li && focused.Span == si {
				st = m.cfg.Style.OverlayFocused
			}
			sb.WriteString(st.Render(span.Text))
			used += grapheme.StringWidth(span.Text, m.cfg.TabWidth)
		}
		if used < lay.width {
			sb.WriteString(m.cfg.Style.Overlay.Render(strings.Repeat(" ", lay.width-used)))
		}
		rendered = append(rendered, sb.String())
	}

	left, top := m.frameOffsets()
	return overlay.Composite(
		strings.Join(rendered, "\n"),
		base,
		overlay.Left,
		overlay.Top,
		left+lay.x,
		top+lay.y,
	), true
}

// overlayHit reports whether the viewport-local point falls inside the
// overlay and, if it lands on a clickable span, which one.
func (m Model) overlayHit(x, y int) (*OverlayActivation, bool) {
	lay, ok := m.layoutOverlay()
	if !ok {
		return nil, false
	}
	left, top := m.frameOffsets()
	lx := x - left - lay.x
	ly := y - top - lay.y
	if lx < 0 || lx >= lay.width || ly < 0 || ly >= lay.height {
		return nil, false
	}
	for _, b := range lay.boxes {
		if b.line == ly && lx >= b.x0 && lx < b.x1 {
			return &OverlayActivation{Target: b.target, Line: b.line, Span: b.span}, true
		}
	}
	return nil, true
}

func (m Model) overlaySpanStyle(span OverlaySpan) lipgloss.Style {
	base := m.cfg.Style.Overlay
	if span.StyleKey == "" || m.cfg.OverlayStyleForKey == nil {
		return base
	}
	if st, ok := m.cfg.OverlayStyleForKey(span.StyleKey); ok {
		return st.Inherit(base)
	}
	return base
}

func sanitizeOverlayText(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

func truncateOverlaySpans(spans []OverlaySpan, width int) []OverlaySpan {
	out := make([]OverlaySpan, 0, len(spans))
	used := 0
	for _, span := range spans {
		text := sanitizeOverlayText(span.Text)
		if text == "" {
			// Kept so span indices match Overlay.Lines.
			span.Text = ""
			out = append(out, span)
			continue
		}
		var sb strings.Builder
		for _, c := range grapheme.Split(text) {
			w := grapheme.Width(c, used, defaultTabWidth)
			if used+w > width {
				break
			}
			sb.WriteString(c)
			used += w
		}
		if sb.Len() == 0 {
			break
		}
		span.Text = sb.String()
		out = append(out, span)
		if used >= width {
			break
		}
	}
	return out
}

func overlaySpansWidth(spans []OverlaySpan) int {
	w := 0
	for _, span := range spans {
		w += grapheme.StringWidth(span.Text, defaultTabWidth)
	}
	return w
}
