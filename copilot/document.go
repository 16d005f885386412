package copilot

import (
	"fmt"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/prompt"
)

// Document is the host document the controller reads from and writes to.
type Document interface {
	Slice(from, to int) (string, error)
	Apply(e Edit) error
}

// TagSource supplies the frontmatter tags of the active document.
type TagSource interface {
	Tags() (prompt.Tags, error)
}

// BufferDocument adapts a buffer.Buffer to Document and TagSource. Each
// Apply is one undo step of the buffer history.
type BufferDocument struct {
	buf *buffer.Buffer
}

func NewBufferDocument(b *buffer.Buffer) *BufferDocument {
	return &BufferDocument{buf: b}
}

func (d *BufferDocument) Slice(from, to int) (string, error) {
	r, err := d.bufferRange(from, to)
	if err != nil {
		return "", err
	}
	return d.buf.TextInRange(r), nil
}

func (d *BufferDocument) Apply(e Edit) error {
	r, err := d.bufferRange(e.From, e.To)
	if err != nil {
		return err
	}
	d.buf.Apply(buffer.TextEdit{Range: r, Text: e.Insert})
	return nil
}

func (d *BufferDocument) Tags() (prompt.Tags, error) {
	return prompt.ParseTags(d.buf.Text())
}

func (d *BufferDocument) bufferRange(from, to int) (buffer.Range, error) {
	if from > to {
		return buffer.Range{}, fmt.Errorf("range [%d, %d): from after to", from, to)
	}
	start, ok := d.buf.PosFromRuneOffset(from, buffer.OffsetError)
	if !ok {
		return buffer.Range{}, fmt.Errorf("offset %d outside document", from)
	}
	end, ok := d.buf.PosFromRuneOffset(to, buffer.OffsetError)
	if !ok {
		return buffer.Range{}, fmt.Errorf("offset %d outside document", to)
	}
	return buffer.Range{Start: start, End: end}, nil
}

// SelectionTracker reports the buffer selection as a Range whenever it
// changes. Without a selection the range collapses to the cursor.
type SelectionTracker struct {
	last Range
	seen bool
}

// Track returns the buffer's current range and whether it differs from
// the previous call.
func (t *SelectionTracker) Track(b *buffer.Buffer) (Range, bool) {
	r := SelectionOf(b)
	changed := !t.seen || r != t.last
	t.last, t.seen = r, true
	return r, changed
}

// Current returns the last tracked range when it is non-empty.
func (t *SelectionTracker) Current() (Range, bool) {
	if !t.seen || t.last.Empty() {
		return Range{}, false
	}
	return t.last, true
}

// SelectionOf converts the buffer selection (or cursor) to rune offsets.
func SelectionOf(b *buffer.Buffer) Range {
	if sel, ok := b.Selection(); ok {
		from, _ := b.RuneOffsetFromPos(sel.Start, buffer.OffsetClamp)
		to, _ := b.RuneOffsetFromPos(sel.End, buffer.OffsetClamp)
		return Range{From: from, To: to}
	}
	off, _ := b.RuneOffsetFromPos(b.Cursor(), buffer.OffsetClamp)
	return Range{From: off, To: off}
}
