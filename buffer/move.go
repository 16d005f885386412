package buffer

import "github.com/iw2rmb/inkwell/internal/grapheme"

type MoveUnit int

const (
	MoveGrapheme MoveUnit = iota
	MoveWord
	MoveLine
	MoveDoc
)

type MoveDir int

const (
	DirLeft MoveDir = iota
	DirRight
	DirUp
	DirDown
	DirHome // line start (doc start for MoveDoc)
	DirEnd  // line end (doc end for MoveDoc)
)

// Move describes a cursor motion. Extend grows the selection from its
// anchor instead of clearing it.
type Move struct {
	Unit   MoveUnit
	Dir    MoveDir
	Extend bool
}

func (b *Buffer) Move(m Move) {
	prevCursor := b.cursor
	prevSel := b.sel

	next := b.clampPos(b.moveCursor(prevCursor, m))

	nextSel := selectionState{}
	if m.Extend {
		anchor := prevCursor
		if prevSel.active && prevSel.anchor != prevSel.end {
			anchor = prevSel.anchor
		}
		if anchor != next {
			nextSel = selectionState{active: true, anchor: anchor, end: next}
		}
	}

	if prevCursor == next && selectionStateEqual(prevSel, nextSel) {
		return
	}
	b.cursor = next
	b.sel = nextSel
	b.version++
}

func selectionStateEqual(a, b selectionState) bool {
	if !a.active && !b.active {
		return true
	}
	return a == b
}

func (b *Buffer) moveCursor(p Pos, m Move) Pos {
	row, col := p.Row, p.GraphemeCol
	lastRow := len(b.lines) - 1

	switch m.Dir {
	case DirUp, DirDown:
		if m.Unit == MoveDoc {
			break
		}
		nr := row - 1
		if m.Dir == DirDown {
			nr = row + 1
		}
		if nr < 0 || nr > lastRow {
			return p
		}
		return Pos{Row: nr, GraphemeCol: min(col, len(b.lines[nr]))}
	case DirHome:
		if m.Unit == MoveDoc {
			return Pos{}
		}
		return Pos{Row: row}
	case DirEnd:
		if m.Unit == MoveDoc {
			return Pos{Row: lastRow, GraphemeCol: len(b.lines[lastRow])}
		}
		return Pos{Row: row, GraphemeCol: len(b.lines[row])}
	}

	switch m.Unit {
	case MoveGrapheme:
		return b.stepGrapheme(p, m.Dir)
	case MoveWord:
		if m.Dir == DirLeft {
			return Pos{Row: row, GraphemeCol: prevWordBoundary(b.lines[row], col)}
		}
		if m.Dir == DirRight {
			return Pos{Row: row, GraphemeCol: nextWordBoundary(b.lines[row], col)}
		}
	case MoveDoc:
		if m.Dir == DirUp {
			return Pos{}
		}
		if m.Dir == DirDown {
			return Pos{Row: lastRow, GraphemeCol: len(b.lines[lastRow])}
		}
	}
	return p
}

// stepGrapheme moves one grapheme left or right, crossing line breaks.
func (b *Buffer) stepGrapheme(p Pos, dir MoveDir) Pos {
	row, col := p.Row, p.GraphemeCol
	switch dir {
	case DirLeft:
		if col > 0 {
			return Pos{Row: row, GraphemeCol: col - 1}
		}
		if row > 0 {
			return Pos{Row: row - 1, GraphemeCol: len(b.lines[row-1])}
		}
	case DirRight:
		if col < len(b.lines[row]) {
			return Pos{Row: row, GraphemeCol: col + 1}
		}
		if row < len(b.lines)-1 {
			return Pos{Row: row + 1}
		}
	}
	return p
}

// Word boundaries skip whitespace, then non-whitespace, within one line.
func prevWordBoundary(line []string, col int) int {
	i := clampInt(col, 0, len(line))
	for i > 0 && grapheme.IsSpace(line[i-1]) {
		i--
	}
	for i > 0 && !grapheme.IsSpace(line[i-1]) {
		i--
	}
	return i
}

func nextWordBoundary(line []string, col int) int {
	i := clampInt(col, 0, len(line))
	for i < len(line) && grapheme.IsSpace(line[i]) {
		i++
	}
	for i < len(line) && !grapheme.IsSpace(line[i]) {
		i++
	}
	return i
}
