// Package buffer implements the pure document model behind the inkwell
// editor: text, cursor, selection, edits and native undo/redo.
//
// Coordinates are 0-based (Row, GraphemeCol). Ranges are half-open: [Start, End).
// Rune offsets (see RuneOffsetFromPos) count '\n' as one rune and are the
// coordinate space the copilot works in.
package buffer
