package editor

import (
	"strconv"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

func (m Model) frameOffsets() (left, top int) {
	s := m.viewport.Style
	left = s.GetMarginLeft() + s.GetBorderLeftSize() + s.GetPaddingLeft()
	top = s.GetMarginTop() + s.GetBorderTopSize() + s.GetPaddingTop()
	return left, top
}

func (m Model) gutterWidth() int {
	if !m.cfg.ShowLineNums || m.buf == nil {
		return 0
	}
	return len(strconv.Itoa(m.buf.LineCount())) + 1
}

// screenToDocPos maps viewport-local mouse coordinates to a document
// position. Points past the end of a line land on the line end.
func (m Model) screenToDocPos(x, y int) buffer.Pos {
	if m.buf == nil {
		return buffer.Pos{}
	}
	left, top := m.frameOffsets()
	row := clampInt(m.viewport.YOffset+y-top, 0, m.buf.LineCount()-1)
	cx := x - left - m.gutterWidth()
	if cx <= 0 {
		return buffer.Pos{Row: row}
	}

	clusters := grapheme.Split(m.buf.Line(row))
	used := 0
	for col, c := range clusters {
		w := grapheme.Width(c, used, m.cfg.TabWidth)
		if cx < used+w {
			return buffer.Pos{Row: row, GraphemeCol: col}
		}
		used += w
	}
	return buffer.Pos{Row: row, GraphemeCol: len(clusters)}
}

// DocToScreen maps a document position to content-area coordinates (the
// gutter included, the viewport frame excluded). ok is false when the
// position is scrolled out of view or clipped.
func (m Model) DocToScreen(p buffer.Pos) (x, y int, ok bool) {
	if m.buf == nil {
		return 0, 0, false
	}
	p = buffer.ClampPos(p, m.buf.LineCount(), func(row int) int {
		return grapheme.Count(m.buf.Line(row))
	})

	y = p.Row - m.viewport.YOffset
	if y < 0 || y >= m.visibleRowCount() {
		return 0, 0, false
	}

	clusters := grapheme.Split(m.buf.Line(p.Row))
	used := 0
	for col := 0; col < p.GraphemeCol && col < len(clusters); col++ {
		used += grapheme.Width(clusters[col], used, m.cfg.TabWidth)
	}
	x = m.gutterWidth() + used
	if w := m.contentWidth(); w > 0 && x >= w {
		return 0, 0, false
	}
	return x, y, true
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
