package buffer

import "unicode/utf8"

type OffsetClampMode uint8

const (
	// OffsetError rejects offsets and positions outside the document.
	OffsetError OffsetClampMode = iota
	// OffsetClamp clamps them into the document.
	OffsetClamp
)

// RuneLen returns the document length in runes, counting each line break
// as one rune.
func (b *Buffer) RuneLen() int {
	total := len(b.lines) - 1
	for _, line := range b.lines {
		total += clustersRuneLen(line)
	}
	return total
}

// PosFromRuneOffset maps a rune offset to a position. Offsets that fall
// inside a multi-rune grapheme cluster are rejected.
func (b *Buffer) PosFromRuneOffset(off int, mode OffsetClampMode) (Pos, bool) {
	total := b.RuneLen()
	switch mode {
	case OffsetError:
		if off < 0 || off > total {
			return Pos{}, false
		}
	case OffsetClamp:
		off = clampInt(off, 0, total)
	default:
		return Pos{}, false
	}

	cur := 0
	for row, line := range b.lines {
		if off == cur {
			return Pos{Row: row}, true
		}
		for col, cluster := range line {
			cur += utf8.RuneCountInString(cluster)
			if off < cur {
				return Pos{}, false
			}
			if off == cur {
				return Pos{Row: row, GraphemeCol: col + 1}, true
			}
		}
		cur++ // line break
	}
	return Pos{}, false
}

// RuneOffsetFromPos maps a position to its rune offset.
func (b *Buffer) RuneOffsetFromPos(pos Pos, mode OffsetClampMode) (int, bool) {
	clamped := b.clampPos(pos)
	switch mode {
	case OffsetError:
		if clamped != pos {
			return 0, false
		}
	case OffsetClamp:
	default:
		return 0, false
	}

	off := 0
	for row := 0; row < clamped.Row; row++ {
		off += clustersRuneLen(b.lines[row]) + 1
	}
	off += clustersRuneLen(b.lines[clamped.Row][:clamped.GraphemeCol])
	return off, true
}

func clustersRuneLen(clusters []string) int {
	n := 0
	for _, c := range clusters {
		n += utf8.RuneCountInString(c)
	}
	return n
}
