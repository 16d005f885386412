package copilot

// Overlay titles and commit control labels.
const (
	TitleActions     = "Copilot Actions"
	TitleSuggestions = "Copilot Suggestions"
)

// OverlayItem is one clickable entry of the overlay.
type OverlayItem struct {
	Label string
	// Checkbox items render their Checked state.
	Checkbox bool
	Checked  bool
	Event    Event
}

// OverlayNode describes what the host should draw. Anchor is the rune
// offset the overlay hangs from.
type OverlayNode struct {
	Visible  bool
	Anchor   int
	Title    string
	Items    []OverlayItem
	Controls []OverlayItem
}

// Render computes the overlay for a workflow snapshot. It is hidden while
// the selection is empty.
func Render(state State, sel Range, actions []Action, suggestions SuggestionSet) OverlayNode {
	if sel.Empty() {
		return OverlayNode{}
	}

	node := OverlayNode{Visible: true, Anchor: sel.To}
	switch state {
	case StateOptions:
		node.Title = TitleSuggestions
		node.Items = make([]OverlayItem, 0, len(suggestions))
		for i, s := range suggestions {
			node.Items = append(node.Items, OverlayItem{
				Label:    s.Text,
				Checkbox: true,
				Checked:  s.Included,
				Event:    EventToggleSuggestion{Index: i},
			})
		}
		node.Controls = []OverlayItem{
			{Label: CommitAppend.String(), Event: EventCommit{Mode: CommitAppend}},
			{Label: CommitReplace.String(), Event: EventCommit{Mode: CommitReplace}},
		}
	default:
		node.Title = TitleActions
		node.Items = make([]OverlayItem, 0, len(actions))
		for _, a := range actions {
			node.Items = append(node.Items, OverlayItem{
				Label: a.Label,
				Event: EventInvokeAction{ActionID: a.ID},
			})
		}
	}
	return node
}
