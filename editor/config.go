package editor

import "github.com/charmbracelet/lipgloss"

// Config configures the editor Model.
type Config struct {
	// Initial text for the internal buffer.
	Text string

	// Rendering options.
	ShowLineNums bool
	Style        Style
	TabWidth     int // default: 4

	KeyMap        KeyMap
	OverlayKeyMap OverlayKeyMap

	// ReadOnly keeps movement and selection but drops mutations.
	ReadOnly bool

	// Forwarded to buffer.Options.
	HistoryLimit int

	// OverlayMaxWidth caps the overlay width in cells (default: 60).
	OverlayMaxWidth int
	// OverlayStyleForKey resolves OverlaySpan.StyleKey. Unknown keys fall
	// back to the overlay base style.
	OverlayStyleForKey func(key string) (lipgloss.Style, bool)

	// OnChange is called after any update that changed the buffer version,
	// including mutations the host made directly on the buffer.
	OnChange func(ChangeEvent)
}

const (
	defaultTabWidth        = 4
	defaultOverlayMaxWidth = 60
)

func normalizeConfig(cfg Config) Config {
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = defaultTabWidth
	}
	if cfg.OverlayMaxWidth <= 0 {
		cfg.OverlayMaxWidth = defaultOverlayMaxWidth
	}
	if cfg.KeyMap.isZero() {
		cfg.KeyMap = DefaultKeyMap()
	}
	if cfg.OverlayKeyMap.isZero() {
		cfg.OverlayKeyMap = DefaultOverlayKeyMap()
	}
	return cfg
}
