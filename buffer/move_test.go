package buffer

import "testing"

func TestMove_GraphemeCrossesLines(t *testing.T) {
	b := New("ab\ncd", Options{})
	b.SetCursor(Pos{Row: 0, GraphemeCol: 2})

	b.Move(Move{Unit: MoveGrapheme, Dir: DirRight})
	if got, want := b.Cursor(), (Pos{Row: 1}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
	b.Move(Move{Unit: MoveGrapheme, Dir: DirLeft})
	if got, want := b.Cursor(), (Pos{Row: 0, GraphemeCol: 2}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestMove_VerticalClampsColumn(t *testing.T) {
	b := New("abcdef\nxy", Options{})
	b.SetCursor(Pos{Row: 0, GraphemeCol: 5})

	b.Move(Move{Unit: MoveGrapheme, Dir: DirDown})
	if got, want := b.Cursor(), (Pos{Row: 1, GraphemeCol: 2}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
	v := b.Version()
	b.Move(Move{Unit: MoveGrapheme, Dir: DirDown})
	if b.Version() != v {
		t.Fatalf("move past last row must be a no-op")
	}
}

func TestMove_ExtendBuildsSelectionFromAnchor(t *testing.T) {
	b := New("hello world", Options{})

	b.Move(Move{Unit: MoveWord, Dir: DirRight, Extend: true})
	b.Move(Move{Unit: MoveGrapheme, Dir: DirRight, Extend: true})

	r, ok := b.Selection()
	if !ok {
		t.Fatalf("expected selection")
	}
	if got, want := r, (Range{End: Pos{Row: 0, GraphemeCol: 6}}); got != want {
		t.Fatalf("selection=%v, want %v", got, want)
	}

	b.Move(Move{Unit: MoveLine, Dir: DirEnd})
	if _, ok := b.Selection(); ok {
		t.Fatalf("non-extending move must clear selection")
	}
}

func TestMove_DocBounds(t *testing.T) {
	b := New("ab\ncde", Options{})
	b.Move(Move{Unit: MoveDoc, Dir: DirEnd})
	if got, want := b.Cursor(), (Pos{Row: 1, GraphemeCol: 3}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
	b.Move(Move{Unit: MoveDoc, Dir: DirUp})
	if got, want := b.Cursor(), (Pos{}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}
