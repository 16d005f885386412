package tui

import (
	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/copilot"
	"github.com/iw2rmb/inkwell/editor"
)

// Style keys resolved by overlayStyle.
const (
	styleTitle   = "title"
	styleControl = "control"
	styleMuted   = "muted"
)

// pickTemplate is the overlay target of a template picker entry.
type pickTemplate struct{ name string }

func copilotOverlay(node copilot.OverlayNode, b *buffer.Buffer, pending bool) editor.Overlay {
	if !node.Visible {
		return editor.Overlay{}
	}
	anchor, _ := b.PosFromRuneOffset(node.Anchor, buffer.OffsetClamp)

	lines := make([]editor.OverlayLine, 0, len(node.Items)+3)
	lines = append(lines, editor.OverlayLine{Spans: []editor.OverlaySpan{{Text: " " + node.Title + " ", StyleKey: styleTitle}}})
	for _, it := range node.Items {
		label := " " + it.Label + " "
		if it.Checkbox {
			box := "[ ]"
			if it.Checked {
				box = "[x]"
			}
			label = " " + box + " " + it.Label + " "
		}
		lines = append(lines, editor.OverlayLine{Spans: []editor.OverlaySpan{{Text: label, Target: it.Event}}})
	}
	if len(node.Controls) > 0 {
		spans := []editor.OverlaySpan{{Text: " "}}
		for i, c := range node.Controls {
			if i > 0 {
				spans = append(spans, editor.OverlaySpan{Text: " "})
			}
			spans = append(spans, editor.OverlaySpan{Text: "[" + c.Label + "]", StyleKey: styleControl, Target: c.Event})
		}
		lines = append(lines, editor.OverlayLine{Spans: spans})
	}
	if pending {
		lines = append(lines, editor.OverlayLine{Spans: []editor.OverlaySpan{{Text: " Running prompt... ", StyleKey: styleMuted}}})
	}
	return editor.Overlay{Anchor: anchor, Lines: lines}
}

func pickerOverlay(names []string, anchor buffer.Pos) editor.Overlay {
	lines := make([]editor.OverlayLine, 0, len(names)+1)
	lines = append(lines, editor.OverlayLine{Spans: []editor.OverlaySpan{{Text: " Run custom prompt ", StyleKey: styleTitle}}})
	if len(names) == 0 {
		lines = append(lines, editor.OverlayLine{Spans: []editor.OverlaySpan{{Text: " no templates ", StyleKey: styleMuted}}})
	}
	for _, n := range names {
		lines = append(lines, editor.OverlayLine{Spans: []editor.OverlaySpan{{Text: " " + n + " ", Target: pickTemplate{name: n}}}})
	}
	return editor.Overlay{Anchor: anchor, Lines: lines}
}
