package editor

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
)

// Model is a Bubble Tea component that renders and interacts with a buffer.
type Model struct {
	cfg Config
	buf *buffer.Buffer

	focused bool

	viewport viewport.Model

	lastBufVersion uint64
	lastCursor     buffer.Pos

	// Version last reported through OnChange.
	notifiedVersion uint64

	mouseAnchor   buffer.Pos
	mouseDragging bool

	overlay      Overlay
	overlayFocus int // index into clickable spans, -1 when none
}

func New(cfg Config) Model {
	cfg = normalizeConfig(cfg)
	m := Model{
		cfg:          cfg,
		buf:          buffer.New(cfg.Text, buffer.Options{HistoryLimit: cfg.HistoryLimit}),
		focused:      true,
		viewport:     viewport.New(0, 0),
		overlayFocus: -1,
	}
	m.viewport.MouseWheelEnabled = true
	m.lastBufVersion = m.buf.Version()
	m.lastCursor = m.buf.Cursor()
	m.notifiedVersion = m.buf.Version()
	m.rebuildContent()
	return m
}

func (m Model) Buffer() *buffer.Buffer { return m.buf }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = height

	m.rebuildContent()
	m.followCursor()
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.rebuildContent()
		m.followCursor()
	}
	return m
}

func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.mouseDragging = false
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		m, cmd = m.updateKey(msg)
		if m.syncFromBuffer() {
			m.followCursor()
		}
	case tea.MouseMsg:
		m, cmd = m.updateMouse(msg)
		// Don't follow the cursor here; the wheel scrolls freely.
		m.syncFromBuffer()
	default:
		// Hosts may mutate the buffer directly between messages.
		if m.syncFromBuffer() {
			m.followCursor()
		}
	}
	m.emitChange()
	return m, cmd
}

func (m Model) View() string {
	base := m.viewport.View()
	if r, ok := m.overlayRender(base); ok {
		return r
	}
	return base
}

func (m *Model) emitChange() {
	if m.buf == nil {
		return
	}
	ver := m.buf.Version()
	if ver == m.notifiedVersion {
		return
	}
	since := m.notifiedVersion
	m.notifiedVersion = ver
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(buildChangeEvent(m.buf, since))
	}
}

func (m *Model) syncFromBuffer() (cursorChanged bool) {
	if m.buf == nil {
		return false
	}
	ver := m.buf.Version()
	cur := m.buf.Cursor()
	if ver == m.lastBufVersion && cur == m.lastCursor {
		return false
	}
	cursorChanged = cur != m.lastCursor
	m.lastBufVersion = ver
	m.lastCursor = cur
	m.rebuildContent()
	return cursorChanged
}

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) followCursor() {
	if m.buf == nil {
		return
	}
	cur := m.buf.Cursor()
	h := m.visibleRowCount()
	if h <= 0 {
		return
	}

	y := m.viewport.YOffset
	if cur.Row < y {
		m.viewport.SetYOffset(cur.Row)
		return
	}
	if cur.Row >= y+h {
		m.viewport.SetYOffset(cur.Row - h + 1)
	}
}

func (m Model) visibleRowCount() int {
	return m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
}

func (m Model) contentWidth() int {
	return m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize()
}
