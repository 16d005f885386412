package editor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
)

// OverlaySpan is a styled run of overlay text. Spans with a non-nil Target
// are clickable and reachable with the overlay keymap.
type OverlaySpan struct {
	Text     string
	StyleKey string
	Target   any
}

// OverlayLine is one row of the overlay.
type OverlayLine struct {
	Spans []OverlaySpan
}

// Overlay is a floating box drawn below (or, lacking room, above) Anchor.
type Overlay struct {
	Anchor buffer.Pos
	Lines  []OverlayLine
}

func (o Overlay) Visible() bool { return len(o.Lines) > 0 }

// OverlayActivation identifies the clicked or keyboard-activated span.
type OverlayActivation struct {
	Target any
	Line   int
	Span   int
}

// OverlayActivatedMsg is emitted as a command result when a clickable
// overlay span is activated.
type OverlayActivatedMsg struct {
	OverlayActivation
}

func activationCmd(act OverlayActivation) tea.Cmd {
	return func() tea.Msg { return OverlayActivatedMsg{OverlayActivation: act} }
}

// SetOverlay replaces the overlay. Keyboard focus survives only while the
// anchor and the number of clickable spans stay the same.
func (m Model) SetOverlay(o Overlay) Model {
	o = cloneOverlay(o)
	if o.Anchor != m.overlay.Anchor || countTargets(o) != countTargets(m.overlay) {
		m.overlayFocus = -1
	}
	m.overlay = o
	return m
}

func (m Model) ClearOverlay() Model {
	m.overlay = Overlay{}
	m.overlayFocus = -1
	return m
}

func (m Model) Overlay() (Overlay, bool) {
	if !m.overlay.Visible() {
		return Overlay{}, false
	}
	return cloneOverlay(m.overlay), true
}

// OverlayFocus returns the focused clickable span, if any.
func (m Model) OverlayFocus() (OverlayActivation, bool) {
	targets := overlayTargets(m.overlay)
	if m.overlayFocus < 0 || m.overlayFocus >= len(targets) {
		return OverlayActivation{}, false
	}
	return targets[m.overlayFocus], true
}

func (m Model) updateOverlayKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	km := m.cfg.OverlayKeyMap
	targets := overlayTargets(m.overlay)
	n := len(targets)

	switch {
	case key.Matches(msg, km.Next):
		if n == 0 {
			return m, nil, false
		}
		m.overlayFocus = (m.overlayFocus + 1) % n
		return m, nil, true
	case key.Matches(msg, km.Prev):
		if n == 0 {
			return m, nil, false
		}
		if m.overlayFocus <= 0 {
			m.overlayFocus = n - 1
		} else {
			m.overlayFocus--
		}
		return m, nil, true
	case key.Matches(msg, km.Activate):
		if m.overlayFocus < 0 || m.overlayFocus >= n {
			return m, nil, false
		}
		return m, activationCmd(targets[m.overlayFocus]), true
	case key.Matches(msg, km.Blur):
		if m.overlayFocus < 0 {
			return m, nil, false
		}
		m.overlayFocus = -1
		return m, nil, true
	}
	return m, nil, false
}

func overlayTargets(o Overlay) []OverlayActivation {
	var out []OverlayActivation
	for li, line := range o.Lines {
		for si, span := range line.Spans {
			if span.Target != nil {
				out = append(out, OverlayActivation{Target: span.Target, Line: li, Span: si})
			}
		}
	}
	return out
}

func countTargets(o Overlay) int { return len(overlayTargets(o)) }

func cloneOverlay(o Overlay) Overlay {
	out := Overlay{Anchor: o.Anchor}
	if len(o.Lines) == 0 {
		return out
	}
	out.Lines = make([]OverlayLine, len(o.Lines))
	for i, line := range o.Lines {
		out.Lines[i] = OverlayLine{Spans: append([]OverlaySpan(nil), line.Spans...)}
	}
	return out
}
