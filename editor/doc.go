// Package editor provides a Bubble Tea text editor component backed by the
// buffer package.
//
// Besides input handling, viewport behavior and grapheme-aware rendering, the
// editor hosts a single floating overlay anchored at a document position.
// Hosts describe the overlay as styled, optionally clickable spans; mouse
// presses inside it are intercepted before the editor's own selection
// handling and reported through Config.OnOverlayActivate.
package editor
