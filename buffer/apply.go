package buffer

// Apply applies edits in order as one undo step. Each edit's range is
// interpreted against the document as left by the previous edit.
//
// Ranges are clamped into bounds. The cursor lands at the end of the last
// effective edit and the selection is cleared when anything changed.
func (b *Buffer) Apply(edits ...TextEdit) {
	if len(edits) == 0 {
		return
	}

	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)

	changed := false
	for _, e := range edits {
		nextCursor, applied, ok := b.replaceRange(e.Range, e.Text)
		if !ok {
			continue
		}
		changed = true
		b.cursor = nextCursor
		change.addAppliedEdit(applied)
	}
	if !changed {
		return
	}

	b.cursor = b.clampPos(b.cursor)
	b.sel = selectionState{}
	b.version++
	b.recordUndo(prev)
	b.commitChange(change)
}
