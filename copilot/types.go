package copilot

import "errors"

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// current workflow state.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnknownAction is returned for action ids missing from the catalog.
	ErrUnknownAction = errors.New("unknown action")
)

// Range is a span of the document in rune offsets, half-open. It is
// non-empty iff From < To.
type Range struct {
	From int
	To   int
}

func (r Range) Empty() bool { return r.From >= r.To }

// State is the workflow state.
type State uint8

const (
	StateMenu State = iota
	StateOptions
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateOptions:
		return "options"
	default:
		return "unknown"
	}
}

// Action is one entry of the action menu. ID names the prompt template.
type Action struct {
	ID    string
	Label string
}

// DefaultActions returns the built-in action menu.
func DefaultActions() []Action {
	return []Action{
		{ID: "clearer", Label: "Rewrite to be clearer"},
		{ID: "improve-explanation", Label: "Improve explanation"},
		{ID: "how-might-we", Label: "How might we..."},
		{ID: "algorithmic-thinking", Label: "Pseudo-code decompose"},
		{ID: "decompose", Label: "Decompose"},
		{ID: "risk-assess", Label: "Risk assess"},
		{ID: "tidy", Label: "Tidy"},
		{ID: "continue", Label: "Continue"},
	}
}

func findAction(actions []Action, id string) (Action, bool) {
	for _, a := range actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// CommitMode selects how included suggestions are written back.
type CommitMode uint8

const (
	CommitAppend CommitMode = iota
	CommitReplace
)

func (m CommitMode) String() string {
	switch m {
	case CommitAppend:
		return "Append"
	case CommitReplace:
		return "Replace"
	default:
		return "unknown"
	}
}

// Edit replaces [From, To) with Insert. From == To is a pure insertion.
type Edit struct {
	From   int
	To     int
	Insert string
}

// Event is a typed payload carried by clickable overlay items.
type Event interface{ isEvent() }

type EventInvokeAction struct{ ActionID string }

type EventToggleSuggestion struct{ Index int }

type EventCommit struct{ Mode CommitMode }

func (EventInvokeAction) isEvent()     {}
func (EventToggleSuggestion) isEvent() {}
func (EventCommit) isEvent()           {}
