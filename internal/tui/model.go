// Package tui is the interactive inkwell program: the editor with the
// selection copilot, a status line and file saving.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/copilot"
	"github.com/iw2rmb/inkwell/editor"
	"github.com/iw2rmb/inkwell/generate"
	"github.com/iw2rmb/inkwell/internal/logging"
)

// Templates is what the program needs from the template store.
type Templates interface {
	copilot.TemplateSource
	List() ([]string, error)
}

type Options struct {
	// Path is where ctrl+s writes. Empty disables saving.
	Path string
	Text string

	Templates Templates
	Generator generate.Generator
	// TemplateChanges delivers names of template files that changed on
	// disk. An open picker reloads its list on each.
	TemplateChanges <-chan string

	Temperature  float64
	Diagnostic   bool
	LineNumbers  bool
	HistoryLimit int
	// Timeout bounds one generation job (default: 60s).
	Timeout time.Duration

	Logger *slog.Logger
	KeyMap KeyMap
}

// changeSignal carries editor change events out of the editor's OnChange
// callback.
type changeSignal struct {
	fired bool
	text  string
	edits []buffer.AppliedEdit
}

type jobDoneMsg struct{ res copilot.Result }

type templateChangedMsg struct{ name string }

type savedMsg struct {
	text string
	err  error
}

// Model is the root Bubble Tea model.
type Model struct {
	opts   Options
	logger *slog.Logger

	editor  editor.Model
	ctrl    *copilot.Controller
	tracker copilot.SelectionTracker

	notes   *noticeQueue
	changes *changeSignal

	status    notice
	statusSeq int

	pickerOpen  bool
	pickerNames []string

	savedText string
	text      string

	width, height int
}

func New(opts Options) (Model, error) {
	if opts.Templates == nil || opts.Generator == nil {
		return Model{}, errors.New("tui: templates and generator are required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.KeyMap.isZero() {
		opts.KeyMap = DefaultKeyMap()
	}

	m := Model{
		opts:      opts,
		logger:    logging.OrNop(opts.Logger),
		notes:     &noticeQueue{},
		changes:   &changeSignal{},
		savedText: opts.Text,
		text:      opts.Text,
	}

	changes := m.changes
	m.editor = editor.New(editor.Config{
		Text:               opts.Text,
		ShowLineNums:       opts.LineNumbers,
		Style:              editor.DefaultStyle(),
		HistoryLimit:       opts.HistoryLimit,
		OverlayStyleForKey: overlayStyle,
		OnChange: func(ev editor.ChangeEvent) {
			changes.fired = true
			changes.text = ev.Text
			changes.edits = append(changes.edits, ev.Edits...)
		},
	})

	doc := copilot.NewBufferDocument(m.editor.Buffer())
	ctrl, err := copilot.New(copilot.Options{
		Document:    doc,
		Templates:   opts.Templates,
		Generator:   opts.Generator,
		Tags:        doc,
		Notifier:    m.notes,
		Logger:      m.logger,
		Temperature: opts.Temperature,
		Diagnostic:  opts.Diagnostic,
	})
	if err != nil {
		return Model{}, err
	}
	m.ctrl = ctrl

	r, _ := m.tracker.Track(m.editor.Buffer())
	m.ctrl.SelectionChanged(r)
	m.refreshOverlay()
	return m, nil
}

func (m Model) Init() tea.Cmd { return m.waitTemplateChange() }

func (m Model) waitTemplateChange() tea.Cmd {
	ch := m.opts.TemplateChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		name, ok := <-ch
		if !ok {
			return nil
		}
		return templateChangedMsg{name: name}
	}
}

// Controller exposes the copilot for inspection.
func (m Model) Controller() *copilot.Controller { return m.ctrl }

func (m Model) Buffer() *buffer.Buffer { return m.editor.Buffer() }

// Dirty reports unsaved changes.
func (m Model) Dirty() bool { return m.text != m.savedText }

// Status returns the notification currently shown.
func (m Model) Status() string { return m.status.text }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.editor = m.editor.SetSize(msg.Width, maxInt(msg.Height-1, 0))
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			m = next
			cmds = append(cmds, cmd)
			break
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)

	case editor.OverlayActivatedMsg:
		cmds = append(cmds, m.activate(msg.Target))
		// Commits edit the buffer outside the editor.
		m.editor, _ = m.editor.Update(msg)

	case jobDoneMsg:
		m.ctrl.Resolve(msg.res)
		// Inline results edit the buffer outside the editor.
		m.editor, _ = m.editor.Update(msg)

	case savedMsg:
		if msg.err != nil {
			m.notes.Notify(copilot.NotifyError, "Save failed: "+msg.err.Error())
		} else {
			m.savedText = msg.text
			m.notes.Notify(copilot.NotifyInfo, "Saved "+filepath.Base(m.opts.Path))
		}

	case templateChangedMsg:
		if m.pickerOpen {
			m = m.reloadPicker()
		}
		cmds = append(cmds, m.waitTemplateChange())

	case clearNoticeMsg:
		if msg.seq == m.statusSeq {
			m.status = notice{}
		}

	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncSelection()
	m.refreshOverlay()
	cmds = append(cmds, m.flushNotices())
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	km := m.opts.KeyMap
	switch {
	case key.Matches(msg, km.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, km.Save):
		return m, m.save(), true
	case key.Matches(msg, km.RunSelection):
		job, err := m.ctrl.RunSelection()
		if err != nil {
			m.notes.Notify(copilot.NotifyInfo, "Select some text first")
			return m, nil, true
		}
		return m, m.runJob(job), true
	case key.Matches(msg, km.RunTemplate):
		return m.openPicker(), nil, true
	case m.pickerOpen && key.Matches(msg, km.ClosePicker):
		if _, focused := m.editor.OverlayFocus(); !focused {
			m.pickerOpen = false
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m Model) openPicker() Model {
	if _, ok := m.tracker.Current(); !ok {
		m.notes.Notify(copilot.NotifyInfo, "Select some text first")
		return m
	}
	names, err := m.opts.Templates.List()
	if err != nil {
		m.logger.Warn("list templates", "error", err)
		m.notes.Notify(copilot.NotifyError, "Cannot list templates: "+err.Error())
		return m
	}
	m.pickerOpen = true
	m.pickerNames = names
	return m
}

func (m Model) reloadPicker() Model {
	names, err := m.opts.Templates.List()
	if err != nil {
		m.logger.Warn("reload templates", "error", err)
		return m
	}
	m.pickerNames = names
	return m
}

func (m *Model) activate(target any) tea.Cmd {
	switch t := target.(type) {
	case pickTemplate:
		m.pickerOpen = false
		job, err := m.ctrl.RunTemplate(t.name)
		if err != nil {
			m.logger.Debug("template run rejected", "template", t.name, "error", err)
			return nil
		}
		return m.runJob(job)
	case copilot.Event:
		if job := m.ctrl.Dispatch(t); job != nil {
			return m.runJob(job)
		}
	}
	return nil
}

func (m Model) runJob(job copilot.Job) tea.Cmd {
	timeout := m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return jobDoneMsg{res: job(ctx)}
	}
}

func (m Model) save() tea.Cmd {
	if m.opts.Path == "" {
		m.notes.Notify(copilot.NotifyError, "No file name to save to")
		return nil
	}
	path, text := m.opts.Path, m.editor.Buffer().Text()
	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return savedMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return savedMsg{text: text}
	}
}

// syncSelection forwards text edits and selection changes reported by
// the editor.
func (m *Model) syncSelection() {
	if !m.changes.fired {
		return
	}
	m.changes.fired = false
	m.text = m.changes.text
	for _, e := range m.changes.edits {
		from, _ := m.editor.Buffer().RuneOffsetFromPos(e.RangeAfter.Start, buffer.OffsetClamp)
		m.ctrl.TextChanged(from)
	}
	m.changes.edits = nil
	if r, changed := m.tracker.Track(m.editor.Buffer()); changed {
		m.ctrl.SelectionChanged(r)
	}
}

func (m *Model) refreshOverlay() {
	if m.pickerOpen {
		cur, ok := m.tracker.Current()
		if !ok {
			m.pickerOpen = false
		} else {
			anchor, _ := m.editor.Buffer().PosFromRuneOffset(cur.To, buffer.OffsetClamp)
			m.editor = m.editor.SetOverlay(pickerOverlay(m.pickerNames, anchor))
			return
		}
	}
	ov := copilotOverlay(m.ctrl.Overlay(), m.editor.Buffer(), m.ctrl.Pending())
	if !ov.Visible() {
		m.editor = m.editor.ClearOverlay()
		return
	}
	m.editor = m.editor.SetOverlay(ov)
}

func (m *Model) flushNotices() tea.Cmd {
	items := m.notes.drain()
	if len(items) == 0 {
		return nil
	}
	m.status = items[len(items)-1]
	m.statusSeq++
	return clearNoticeAfter(m.statusSeq)
}

var (
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236"))
	statusErrorStyle = statusStyle.Foreground(lipgloss.Color("203"))
)

func (m Model) View() string {
	return m.editor.View() + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	name := m.opts.Path
	if name == "" {
		name = "[scratch]"
	} else {
		name = filepath.Base(name)
	}
	if m.Dirty() {
		name += " [+]"
	}
	left := " " + name + " "
	right := ""
	if m.status.text != "" {
		right = " " + m.status.text + " "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	if m.status.level == copilot.NotifyError && right != "" {
		return statusStyle.Render(left+strings.Repeat(" ", gap)) + statusErrorStyle.Render(right)
	}
	return statusStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func overlayStyle(k string) (lipgloss.Style, bool) {
	switch k {
	case styleTitle:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")), true
	case styleControl:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("117")), true
	case styleMuted:
		return lipgloss.NewStyle().Faint(true), true
	}
	return lipgloss.Style{}, false
}
