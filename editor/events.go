package editor

import "github.com/iw2rmb/inkwell/buffer"

// ChangeEvent is the payload of Config.OnChange.
type ChangeEvent struct {
	Version   uint64
	Cursor    buffer.Pos
	Selection buffer.SelectionState

	// Edits are the applied edits of the latest text change since the
	// previous event. Empty when only the cursor or selection moved.
	Edits []buffer.AppliedEdit

	// Text is the whole document; hosts diff if they need to.
	Text string
}

func buildChangeEvent(b *buffer.Buffer, since uint64) ChangeEvent {
	ev := ChangeEvent{
		Version:   b.Version(),
		Cursor:    b.Cursor(),
		Selection: b.SelectionState(),
		Text:      b.Text(),
	}
	if ch, ok := b.LastChange(); ok && ch.VersionAfter > since {
		ev.Edits = ch.AppliedEdits
	}
	return ev
}
