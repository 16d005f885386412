package copilot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/prompt"
)

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without collaborators")
	}
}

func TestSelectionChanged_ResetRequiresBothEndpointsToMove(t *testing.T) {
	h := newHarness("draft text and more", "A\nB")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, ok, err := h.invoke("tidy"); err != nil || !ok {
		t.Fatalf("invoke: ok=%v err=%v", ok, err)
	}
	if h.ctrl.State() != StateOptions {
		t.Fatalf("state: got %v, want options", h.ctrl.State())
	}

	// Only To moves: stays in options.
	h.ctrl.SelectionChanged(Range{From: 0, To: 12})
	if h.ctrl.State() != StateOptions {
		t.Fatalf("one endpoint moved: got %v, want options", h.ctrl.State())
	}
	// Only From moves: stays in options.
	h.ctrl.SelectionChanged(Range{From: 2, To: 12})
	if h.ctrl.State() != StateOptions {
		t.Fatalf("one endpoint moved: got %v, want options", h.ctrl.State())
	}
	// Both move: back to the menu with no suggestions.
	h.ctrl.SelectionChanged(Range{From: 3, To: 13})
	if h.ctrl.State() != StateMenu {
		t.Fatalf("both moved: got %v, want menu", h.ctrl.State())
	}
	if len(h.ctrl.Suggestions()) != 0 {
		t.Fatalf("suggestions should be dropped on reset")
	}
	if r, ok := h.ctrl.Selection(); !ok || r != (Range{From: 3, To: 13}) {
		t.Fatalf("selection: got %v %v", r, ok)
	}
}

func TestInvokeAction_DraftTextTidyScenario(t *testing.T) {
	h := newHarness("draft text", "Line one\n\nLine two  \n")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})

	res, applied, err := h.invoke("tidy")
	if err != nil || !applied {
		t.Fatalf("invoke: applied=%v err=%v", applied, err)
	}
	if res.Err != nil {
		t.Fatalf("result error: %v", res.Err)
	}

	want := SuggestionSet{{Text: "Line one", Included: true}, {Text: "Line two"}}
	got := h.ctrl.Suggestions()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("suggestions: got %+v, want %+v", got, want)
	}
	if h.ctrl.State() != StateOptions {
		t.Fatalf("state: got %v, want options", h.ctrl.State())
	}

	if len(h.gen.calls) != 1 {
		t.Fatalf("generate calls: got %d, want 1", len(h.gen.calls))
	}
	c := h.gen.calls[0]
	if wantPrompt := "tidy: draft text" + prompt.Trailer; c.prompt != wantPrompt {
		t.Fatalf("prompt: got %q, want %q", c.prompt, wantPrompt)
	}
	if c.params != prompt.MenuParameters() {
		t.Fatalf("params: got %+v, want %+v", c.params, prompt.MenuParameters())
	}
	if msgs := h.note.messages(); len(msgs) != 2 || msgs[0] != "Running prompt" || msgs[1] != "Done!" {
		t.Fatalf("notifications: got %q", msgs)
	}
}

func TestInvokeAction_RejectsInvalidState(t *testing.T) {
	h := newHarness("draft text", "A")

	if _, err := h.ctrl.InvokeAction("tidy"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("no selection: got %v, want ErrInvalidState", err)
	}

	h.ctrl.SelectionChanged(Range{From: 4, To: 4})
	if _, err := h.ctrl.InvokeAction("tidy"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("empty selection: got %v, want ErrInvalidState", err)
	}

	h.ctrl.SelectionChanged(Range{From: 0, To: 5})
	if _, err := h.ctrl.InvokeAction("nope"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("unknown action: got %v, want ErrUnknownAction", err)
	}

	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if _, err := h.ctrl.InvokeAction("tidy"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("options state: got %v, want ErrInvalidState", err)
	}
	if len(h.note.notes) != 2 {
		t.Fatalf("rejected invocations must not notify, got %q", h.note.messages())
	}
}

func TestResolve_BackendFailureStaysInMenu(t *testing.T) {
	h := newHarness("draft text", "")
	h.gen.err = errBackend
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})

	res, applied, err := h.invoke("tidy")
	if err != nil || !applied {
		t.Fatalf("invoke: applied=%v err=%v", applied, err)
	}
	if !errors.Is(res.Err, errBackend) {
		t.Fatalf("result error: got %v", res.Err)
	}
	if h.ctrl.State() != StateMenu {
		t.Fatalf("state: got %v, want menu", h.ctrl.State())
	}
	if len(h.ctrl.Suggestions()) != 0 || len(h.doc.applied) != 0 {
		t.Fatalf("failure must not create suggestions or edits")
	}
	last := h.note.notes[len(h.note.notes)-1]
	if last.level != NotifyError || !strings.Contains(last.msg, "backend down") {
		t.Fatalf("failure notification: got %+v", last)
	}
	if h.ctrl.Pending() {
		t.Fatalf("failed request should not stay pending")
	}
}

func TestResolve_TemplateNotFound(t *testing.T) {
	h := newHarness("draft text", "A")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	delete(h.ctrl.opts.Templates.(fakeTemplates), "tidy")

	res, _, err := h.invoke("tidy")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !errors.Is(res.Err, prompt.ErrTemplateNotFound) {
		t.Fatalf("result error: got %v", res.Err)
	}
	if len(h.gen.calls) != 0 {
		t.Fatalf("generator must not be called")
	}
	if h.ctrl.State() != StateMenu {
		t.Fatalf("state: got %v, want menu", h.ctrl.State())
	}
}

func TestResolve_StaleAfterReset(t *testing.T) {
	h := newHarness("draft text and more", "A\nB")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	job, err := h.ctrl.InvokeAction("tidy")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	h.ctrl.SelectionChanged(Range{From: 1, To: 11})
	if h.ctrl.Resolve(job(context.Background())) {
		t.Fatalf("result of a reset request must be discarded")
	}
	if h.ctrl.State() != StateMenu || len(h.ctrl.Suggestions()) != 0 {
		t.Fatalf("stale result leaked into state")
	}
}

func TestResolve_LastInvokedWins(t *testing.T) {
	h := newHarness("draft text", "")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})

	first, err := h.ctrl.InvokeAction("tidy")
	if err != nil {
		t.Fatalf("first invoke: %v", err)
	}
	second, err := h.ctrl.InvokeAction("clearer")
	if err != nil {
		t.Fatalf("second invoke: %v", err)
	}

	h.gen.reply = "second"
	secondRes := second(context.Background())
	h.gen.reply = "first"
	firstRes := first(context.Background())

	if !h.ctrl.Resolve(secondRes) {
		t.Fatalf("latest request should apply")
	}
	if h.ctrl.Resolve(firstRes) {
		t.Fatalf("superseded request should be discarded")
	}
	if got := h.ctrl.Suggestions(); len(got) != 1 || got[0].Text != "second" {
		t.Fatalf("suggestions: got %+v", got)
	}
	if h.ctrl.Resolve(secondRes) {
		t.Fatalf("a result applies at most once")
	}
}

func TestToggle(t *testing.T) {
	h := newHarness("draft text", "A\nB")
	h.ctrl.Toggle(0) // menu state: ignored
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	h.ctrl.Toggle(1)
	h.ctrl.Toggle(5)
	got := h.ctrl.Suggestions()
	if !got[0].Included || !got[1].Included {
		t.Fatalf("toggle: got %+v", got)
	}
	h.ctrl.Toggle(0)
	if got := h.ctrl.Suggestions(); got[0].Included {
		t.Fatalf("toggle off: got %+v", got)
	}
}

func TestCommit_AppendScenario(t *testing.T) {
	h := newHarness("draft text", "A\nB")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	edit, err := h.ctrl.Commit(CommitAppend)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if want := (Edit{From: 10, To: 10, Insert: "\n - A"}); edit != want {
		t.Fatalf("edit: got %+v, want %+v", edit, want)
	}
	if len(h.doc.applied) != 1 {
		t.Fatalf("apply calls: got %d, want 1", len(h.doc.applied))
	}
	if got, want := h.doc.String(), "draft text\n - A"; got != want {
		t.Fatalf("document: got %q, want %q", got, want)
	}
	if h.ctrl.State() != StateOptions {
		t.Fatalf("state after commit: got %v, want options", h.ctrl.State())
	}
}

func TestCommit_ReplaceScenario(t *testing.T) {
	h := newHarness("xx draft text yy", "A\nB")
	h.ctrl.SelectionChanged(Range{From: 3, To: 13})
	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	h.ctrl.Toggle(1)

	edit, err := h.ctrl.Commit(CommitReplace)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if want := (Edit{From: 3, To: 13, Insert: "A\nB"}); edit != want {
		t.Fatalf("edit: got %+v, want %+v", edit, want)
	}
	if got, want := h.doc.String(), "xx A\nB yy"; got != want {
		t.Fatalf("document: got %q, want %q", got, want)
	}
}

func TestCommit_InvalidStateDoesNotMutate(t *testing.T) {
	h := newHarness("draft text", "A")
	if _, err := h.ctrl.Commit(CommitAppend); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("no selection: got %v", err)
	}
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, err := h.ctrl.Commit(CommitReplace); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("menu state: got %v", err)
	}
	if len(h.doc.applied) != 0 {
		t.Fatalf("invalid commits must not edit")
	}
}

func TestCommit_ApplyFailureNotifies(t *testing.T) {
	h := newHarness("draft text", "A")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	h.doc.applyErr = errors.New("read-only document")

	if _, err := h.ctrl.Commit(CommitAppend); err == nil {
		t.Fatalf("expected commit error")
	}
	last := h.note.notes[len(h.note.notes)-1]
	if last.level != NotifyError {
		t.Fatalf("expected error notification, got %+v", last)
	}
	if h.ctrl.State() != StateOptions {
		t.Fatalf("state: got %v, want options", h.ctrl.State())
	}
}

func TestDispatch_RoutesTypedEvents(t *testing.T) {
	h := newHarness("draft text", "A\nB")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})

	job := h.ctrl.Dispatch(EventInvokeAction{ActionID: "clearer"})
	if job == nil {
		t.Fatalf("invoke event should return a job")
	}
	h.ctrl.Resolve(job(context.Background()))

	if job := h.ctrl.Dispatch(EventToggleSuggestion{Index: 1}); job != nil {
		t.Fatalf("toggle should not return a job")
	}
	h.ctrl.Dispatch(EventCommit{Mode: CommitReplace})
	if got, want := h.doc.String(), "A\nB"; got != want {
		t.Fatalf("document: got %q, want %q", got, want)
	}

	// Rejected events are swallowed.
	if job := h.ctrl.Dispatch(EventInvokeAction{ActionID: "tidy"}); job != nil {
		t.Fatalf("invoke in options state should be rejected")
	}
}

func TestDiagnostic_EchoesToggledSuggestion(t *testing.T) {
	h := newHarness("draft text", "A\nB")
	h.ctrl.opts.Diagnostic = true
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	h.ctrl.Toggle(1)
	msgs := h.note.messages()
	if msgs[len(msgs)-1] != "B" {
		t.Fatalf("diagnostic notification: got %q", msgs)
	}
}

func TestRunSelection_WritesAnswerBelowSelection(t *testing.T) {
	h := newHarness("list three fruits", "apple, pear, plum")
	h.ctrl.SelectionChanged(Range{From: 0, To: 17})

	job, err := h.ctrl.RunSelection()
	if err != nil {
		t.Fatalf("RunSelection: %v", err)
	}
	if !h.ctrl.Resolve(job(context.Background())) {
		t.Fatalf("resolve rejected")
	}
	if got, want := h.doc.String(), "list three fruits\napple, pear, plum"; got != want {
		t.Fatalf("document: got %q, want %q", got, want)
	}
	if got := h.gen.calls[0]; got.prompt != "list three fruits"+prompt.Trailer || got.params != prompt.DefaultParameters(prompt.DefaultTemperature) {
		t.Fatalf("call: got %+v", got)
	}
	if h.ctrl.State() != StateMenu {
		t.Fatalf("inline runs keep the workflow state, got %v", h.ctrl.State())
	}
}

func TestRunTemplate_UsesTagsAndFrontmatter(t *testing.T) {
	h := newHarness("draft text", "better")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})

	job, err := h.ctrl.RunTemplate("custom")
	if err != nil {
		t.Fatalf("RunTemplate: %v", err)
	}
	h.ctrl.Resolve(job(context.Background()))

	c := h.gen.calls[0]
	if want := "audience kids.\nCustom draft text" + prompt.Trailer; c.prompt != want {
		t.Fatalf("prompt: got %q, want %q", c.prompt, want)
	}
	if c.params.Temperature != 0.9 || c.params.MaxTokens != prompt.DefaultMaxTokens {
		t.Fatalf("params: got %+v", c.params)
	}
	if got, want := h.doc.String(), "draft text\nbetter"; got != want {
		t.Fatalf("document: got %q, want %q", got, want)
	}
}

func TestResolve_InlineTargetEditedMeanwhile(t *testing.T) {
	b := buffer.New("draft text and more", buffer.Options{})
	note := &recorder{}
	ctrl, err := New(Options{
		Document:  NewBufferDocument(b),
		Templates: fakeTemplates{},
		Generator: &fakeGen{reply: "ANSWER"},
		Notifier:  note,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctrl.SelectionChanged(Range{From: 0, To: 10})
	job, err := ctrl.RunSelection()
	if err != nil {
		t.Fatalf("RunSelection: %v", err)
	}

	// Collapsing onto the start moves one endpoint only, so no reset.
	b.SetCursor(buffer.Pos{})
	ctrl.SelectionChanged(Range{From: 0, To: 0})
	for i := 0; i < 3; i++ {
		b.DeleteForward()
	}

	if ctrl.Resolve(job(context.Background())) {
		t.Fatalf("Resolve: got applied, want dropped")
	}
	if got, want := b.Text(), "ft text and more"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	if msgs := note.messages(); msgs[len(msgs)-1] != msgTargetEdited {
		t.Fatalf("notifications: got %q", msgs)
	}
	if ctrl.Pending() {
		t.Fatalf("Pending after drop: got true")
	}
}

func TestTextChanged_AbandonsInlineRunBeforeTargetEnd(t *testing.T) {
	h := newHarness("one two three", "X")
	h.ctrl.SelectionChanged(Range{From: 4, To: 7})
	job, err := h.ctrl.RunSelection()
	if err != nil {
		t.Fatalf("RunSelection: %v", err)
	}

	h.ctrl.TextChanged(7)
	if !h.ctrl.Pending() {
		t.Fatalf("edit at the target end must keep the run")
	}
	h.ctrl.TextChanged(1)
	if h.ctrl.Pending() {
		t.Fatalf("edit before the target must abandon the run")
	}
	if h.ctrl.Resolve(job(context.Background())) {
		t.Fatalf("Resolve after abandon: got applied")
	}
	if got := h.doc.String(); got != "one two three" {
		t.Fatalf("document: got %q, want unchanged", got)
	}
	if got := h.note.notes[len(h.note.notes)-1]; got.level != NotifyError || got.msg != msgTargetEdited {
		t.Fatalf("notification: got %+v", got)
	}
}

func TestTextChanged_KeepsMenuAction(t *testing.T) {
	h := newHarness("draft text", "A\nB")
	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	job, err := h.ctrl.InvokeAction("tidy")
	if err != nil {
		t.Fatalf("InvokeAction: %v", err)
	}
	h.ctrl.TextChanged(0)
	if !h.ctrl.Resolve(job(context.Background())) {
		t.Fatalf("Resolve: menu results do not depend on the text")
	}
	if h.ctrl.State() != StateOptions {
		t.Fatalf("state: got %v, want %v", h.ctrl.State(), StateOptions)
	}
}

func TestRunSelection_RequiresSelection(t *testing.T) {
	h := newHarness("draft", "x")
	if _, err := h.ctrl.RunSelection(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
	if _, err := h.ctrl.RunTemplate("custom"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestOnRender_CalledOnTransitions(t *testing.T) {
	h := newHarness("draft text", "A")
	var nodes []OverlayNode
	h.ctrl.opts.OnRender = func(n OverlayNode) { nodes = append(nodes, n) }

	h.ctrl.SelectionChanged(Range{From: 0, To: 10})
	if _, _, err := h.invoke("tidy"); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("renders: got %d, want 2", len(nodes))
	}
	if nodes[0].Title != TitleActions || nodes[1].Title != TitleSuggestions {
		t.Fatalf("titles: got %q, %q", nodes[0].Title, nodes[1].Title)
	}
}

func TestFailureMessage(t *testing.T) {
	if got := FailureMessage(context.DeadlineExceeded); got != "Copilot request timed out" {
		t.Fatalf("timeout: got %q", got)
	}
	if got := FailureMessage(errors.New("x")); got != "Copilot failed: x" {
		t.Fatalf("generic: got %q", got)
	}
}
