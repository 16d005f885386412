package copilot

import (
	"context"
	"testing"

	"github.com/iw2rmb/inkwell/buffer"
)

func TestBufferDocument_SliceAndApply(t *testing.T) {
	b := buffer.New("héllo\nwörld", buffer.Options{})
	d := NewBufferDocument(b)

	got, err := d.Slice(1, 9)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if got != "éllo\nwö" {
		t.Fatalf("Slice: got %q", got)
	}

	if err := d.Apply(Edit{From: 5, To: 5, Insert: "!"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := b.Text(), "héllo!\nwörld"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}

	if err := d.Apply(Edit{From: 0, To: 99}); err == nil {
		t.Fatalf("out-of-range apply should fail")
	}
	if _, err := d.Slice(5, 2); err == nil {
		t.Fatalf("reversed slice should fail")
	}
}

func TestBufferDocument_CommitIsOneUndoStep(t *testing.T) {
	b := buffer.New("draft text", buffer.Options{})
	d := NewBufferDocument(b)
	ctrl, err := New(Options{
		Document:  d,
		Templates: fakeTemplates{"tidy": "{selection}"},
		Generator: &fakeGen{reply: "A\nB"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b.SetSelection(buffer.Range{Start: buffer.Pos{}, End: buffer.Pos{GraphemeCol: 10}})
	var tr SelectionTracker
	r, changed := tr.Track(b)
	if !changed || r != (Range{From: 0, To: 10}) {
		t.Fatalf("Track: got %v %v", r, changed)
	}
	ctrl.SelectionChanged(r)

	job, err := ctrl.InvokeAction("tidy")
	if err != nil {
		t.Fatalf("InvokeAction: %v", err)
	}
	ctrl.Resolve(job(context.Background()))
	if _, err := ctrl.Commit(CommitAppend); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got, want := b.Text(), "draft text\n - A"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}

	if !b.Undo() || b.Text() != "draft text" {
		t.Fatalf("undo should restore the document in one step, got %q", b.Text())
	}
}

func TestBufferDocument_Tags(t *testing.T) {
	b := buffer.New("---\ntone: calm\nposition: 1\n---\nbody", buffer.Options{})
	tags, err := NewBufferDocument(b).Tags()
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 1 || tags[0].Key != "tone" || tags[0].Value != "calm" {
		t.Fatalf("tags: got %+v", tags)
	}
}

func TestSelectionTracker(t *testing.T) {
	b := buffer.New("abc def", buffer.Options{})
	var tr SelectionTracker

	if r, changed := tr.Track(b); !changed || r != (Range{}) {
		t.Fatalf("first track: got %v %v", r, changed)
	}
	if _, ok := tr.Current(); ok {
		t.Fatalf("cursor-only range is not a selection")
	}
	if _, changed := tr.Track(b); changed {
		t.Fatalf("unchanged buffer should not report a change")
	}

	b.SetCursor(buffer.Pos{GraphemeCol: 7})
	b.SetSelection(buffer.Range{Start: buffer.Pos{GraphemeCol: 4}, End: buffer.Pos{GraphemeCol: 7}})
	r, changed := tr.Track(b)
	if !changed || r != (Range{From: 4, To: 7}) {
		t.Fatalf("selection: got %v %v", r, changed)
	}
	if cur, ok := tr.Current(); !ok || cur != r {
		t.Fatalf("Current: got %v %v", cur, ok)
	}
}
