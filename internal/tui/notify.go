package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/copilot"
)

// noticeTTL is how long a notification stays in the status line.
var noticeTTL = 4 * time.Second

type notice struct {
	level copilot.NotifyLevel
	text  string
}

// noticeQueue collects notifications raised during one Update. Everything
// that notifies runs on the Bubble Tea loop, so no locking is needed.
type noticeQueue struct {
	items []notice
}

func (q *noticeQueue) Notify(level copilot.NotifyLevel, message string) {
	q.items = append(q.items, notice{level: level, text: message})
}

func (q *noticeQueue) drain() []notice {
	out := q.items
	q.items = nil
	return out
}

type clearNoticeMsg struct{ seq int }

func clearNoticeAfter(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}
