package copilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iw2rmb/inkwell/generate"
	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/prompt"
)

// TemplateSource loads prompt templates by name.
type TemplateSource interface {
	Template(ctx context.Context, name string) (prompt.Template, error)
}

// Options are the controller's collaborators and settings. Document,
// Templates and Generator are required.
type Options struct {
	Document  Document
	Templates TemplateSource
	Generator generate.Generator

	// Tags feeds frontmatter tags into custom template runs.
	Tags     TagSource
	Notifier Notifier
	Logger   *slog.Logger

	// Actions defaults to DefaultActions.
	Actions []Action
	// Temperature is the default for custom templates.
	Temperature float64
	// Diagnostic echoes toggled suggestion texts as notifications.
	Diagnostic bool

	// OnRender is called with the fresh overlay whenever visible state
	// may have changed.
	OnRender func(OverlayNode)
}

type jobKind uint8

const (
	jobSuggest jobKind = iota
	jobInline
)

// Job performs one generation off the UI loop. Its Result goes back to
// Resolve.
type Job func(ctx context.Context) Result

// Result is the outcome of a Job.
type Result struct {
	Token uint64
	Text  string
	Err   error

	kind      jobKind
	requestID string
	target    Range
	selection string
}

// Controller owns the selection snapshot, the workflow state and the
// suggestion set.
type Controller struct {
	opts   Options
	logger *slog.Logger

	state       State
	sel         Range
	hasSel      bool
	suggestions SuggestionSet

	// lastToken is the most recently issued request token; pending is the
	// one whose result is still wanted, 0 when none.
	lastToken uint64
	pending   uint64
	// inlineTarget is the range a pending inline run will overwrite.
	inlineTarget  Range
	pendingInline bool
}

func New(opts Options) (*Controller, error) {
	if opts.Document == nil || opts.Templates == nil || opts.Generator == nil {
		return nil, errors.New("copilot: document, templates and generator are required")
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if len(opts.Actions) == 0 {
		opts.Actions = DefaultActions()
	}
	if opts.Temperature == 0 {
		opts.Temperature = prompt.DefaultTemperature
	}
	return &Controller{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
	}, nil
}

func (c *Controller) State() State { return c.state }

// Selection returns the current selection snapshot.
func (c *Controller) Selection() (Range, bool) { return c.sel, c.hasSel }

// Suggestions returns a copy of the suggestion set.
func (c *Controller) Suggestions() SuggestionSet { return c.suggestions.clone() }

func (c *Controller) Actions() []Action { return append([]Action(nil), c.opts.Actions...) }

// Pending reports whether a generation result is awaited.
func (c *Controller) Pending() bool { return c.pending != 0 }

// Overlay renders the current state.
func (c *Controller) Overlay() OverlayNode {
	sel := c.sel
	if !c.hasSel {
		sel = Range{}
	}
	return Render(c.state, sel, c.opts.Actions, c.suggestions)
}

// SelectionChanged records the host selection. The workflow resets to the
// menu only when both endpoints moved.
func (c *Controller) SelectionChanged(r Range) {
	if c.hasSel && c.sel.From != r.From && c.sel.To != r.To {
		c.reset()
	}
	c.sel, c.hasSel = r, true
	c.requestRender()
}

func (c *Controller) reset() {
	if c.pending != 0 {
		c.logger.Debug("request invalidated by selection change", "token", c.pending)
	}
	c.state = StateMenu
	c.suggestions = nil
	c.pending = 0
	c.pendingInline = false
}

// TextChanged reports a text edit starting at rune offset from. A pending
// inline run whose target ends after from is abandoned: its target no
// longer holds the text that was sent.
func (c *Controller) TextChanged(from int) {
	if c.pending == 0 || !c.pendingInline || from >= c.inlineTarget.To {
		return
	}
	c.logger.Info("inline run abandoned after edit", "token", c.pending, "edit_at", from,
		"target_from", c.inlineTarget.From, "target_to", c.inlineTarget.To)
	c.pending = 0
	c.pendingInline = false
	c.opts.Notifier.Notify(NotifyError, msgTargetEdited)
	c.requestRender()
}

// InvokeAction starts the menu action id on the current selection.
func (c *Controller) InvokeAction(id string) (Job, error) {
	if c.state != StateMenu || !c.hasSel || c.sel.Empty() {
		return nil, fmt.Errorf("invoke %q in %s state: %w", id, c.state, ErrInvalidState)
	}
	action, ok := findAction(c.opts.Actions, id)
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownAction)
	}

	c.opts.Notifier.Notify(NotifyInfo, msgRunning)
	text, err := c.opts.Document.Slice(c.sel.From, c.sel.To)
	if err != nil {
		c.fail("read selection", err)
		return nil, err
	}

	token, reqID := c.issue()
	c.pendingInline = false
	c.logger.Info("action invoked", "action", action.ID, "request_id", reqID, "token", token, "selection_len", len(text))

	templates, gen := c.opts.Templates, c.opts.Generator
	return func(ctx context.Context) Result {
		res := Result{Token: token, kind: jobSuggest, requestID: reqID}
		tpl, err := templates.Template(ctx, action.ID)
		if err != nil {
			res.Err = err
			return res
		}
		params, err := tpl.Parameters(prompt.MenuParameters())
		if err != nil {
			res.Err = err
			return res
		}
		res.Text, res.Err = gen.Generate(ctx, prompt.Compose(tpl.Body, text, nil), params)
		return res
	}, nil
}

// RunSelection sends the selected text itself as the prompt. The answer
// is written below the selection, replacing it with "selection\nanswer".
func (c *Controller) RunSelection() (Job, error) {
	text, target, err := c.inlineSelection()
	if err != nil {
		return nil, err
	}
	token, reqID := c.issueInline(target)
	c.logger.Info("selection run", "request_id", reqID, "token", token, "selection_len", len(text))

	gen, temp := c.opts.Generator, c.opts.Temperature
	return func(ctx context.Context) Result {
		res := Result{Token: token, kind: jobInline, requestID: reqID, target: target, selection: text}
		res.Text, res.Err = gen.Generate(ctx, text+prompt.Trailer, prompt.DefaultParameters(temp))
		return res
	}, nil
}

// RunTemplate runs any template on the selection with the document's
// frontmatter tags. The answer is written the same way as RunSelection.
func (c *Controller) RunTemplate(name string) (Job, error) {
	text, target, err := c.inlineSelection()
	if err != nil {
		return nil, err
	}
	var tags prompt.Tags
	if c.opts.Tags != nil {
		if tags, err = c.opts.Tags.Tags(); err != nil {
			c.logger.Warn("document tags ignored", "error", err)
			tags = nil
		}
	}
	token, reqID := c.issueInline(target)
	c.logger.Info("template run", "template", name, "request_id", reqID, "token", token, "tags", len(tags))

	templates, gen, temp := c.opts.Templates, c.opts.Generator, c.opts.Temperature
	return func(ctx context.Context) Result {
		res := Result{Token: token, kind: jobInline, requestID: reqID, target: target, selection: text}
		tpl, err := templates.Template(ctx, name)
		if err != nil {
			res.Err = err
			return res
		}
		params, err := tpl.Parameters(prompt.DefaultParameters(temp))
		if err != nil {
			res.Err = err
			return res
		}
		res.Text, res.Err = gen.Generate(ctx, prompt.Compose(tpl.Body, text, tags), params)
		return res
	}, nil
}

func (c *Controller) inlineSelection() (string, Range, error) {
	if !c.hasSel || c.sel.Empty() {
		return "", Range{}, fmt.Errorf("run without selection: %w", ErrInvalidState)
	}
	c.opts.Notifier.Notify(NotifyInfo, msgRunning)
	text, err := c.opts.Document.Slice(c.sel.From, c.sel.To)
	if err != nil {
		c.fail("read selection", err)
		return "", Range{}, err
	}
	return text, c.sel, nil
}

func (c *Controller) issue() (uint64, string) {
	c.lastToken++
	c.pending = c.lastToken
	return c.lastToken, uuid.NewString()
}

func (c *Controller) issueInline(target Range) (uint64, string) {
	c.inlineTarget, c.pendingInline = target, true
	return c.issue()
}

// Resolve applies a job result. Results of superseded or invalidated
// requests are dropped and Resolve returns false.
func (c *Controller) Resolve(res Result) bool {
	if res.Token == 0 || res.Token != c.pending {
		c.logger.Debug("stale result discarded", "token", res.Token, "request_id", res.requestID, "error", res.Err)
		return false
	}
	c.pending = 0
	c.pendingInline = false

	if res.Err != nil {
		c.fail("generation", res.Err)
		c.logger.Warn("request failed", "request_id", res.requestID, "error", res.Err)
		return true
	}

	switch res.kind {
	case jobInline:
		current, err := c.opts.Document.Slice(res.target.From, res.target.To)
		if err != nil || current != res.selection {
			c.logger.Info("inline result dropped, target text changed", "request_id", res.requestID, "error", err)
			c.opts.Notifier.Notify(NotifyError, msgTargetEdited)
			c.requestRender()
			return false
		}
		edit := Edit{From: res.target.From, To: res.target.To, Insert: res.selection + "\n" + res.Text}
		if err := c.opts.Document.Apply(edit); err != nil {
			c.fail("write result", err)
			return true
		}
	default:
		c.suggestions = ParseSuggestions(res.Text)
		c.state = StateOptions
	}
	c.logger.Info("request done", "request_id", res.requestID, "suggestions", len(c.suggestions))
	c.opts.Notifier.Notify(NotifyInfo, msgDone)
	c.requestRender()
	return true
}

// Toggle flips the inclusion of suggestion index in the options state.
func (c *Controller) Toggle(index int) {
	if c.state != StateOptions {
		return
	}
	if !c.suggestions.Toggle(index) {
		return
	}
	if c.opts.Diagnostic {
		c.opts.Notifier.Notify(NotifyInfo, c.suggestions[index].Text)
	}
	c.requestRender()
}

// Commit writes the included suggestions back as one document edit.
func (c *Controller) Commit(mode CommitMode) (Edit, error) {
	if c.state != StateOptions || !c.hasSel {
		return Edit{}, fmt.Errorf("commit in %s state: %w", c.state, ErrInvalidState)
	}
	edit := BuildEdit(mode, c.sel, c.suggestions)
	if err := c.opts.Document.Apply(edit); err != nil {
		c.fail("commit", err)
		return Edit{}, err
	}
	c.logger.Info("committed", "mode", mode.String(), "from", edit.From, "to", edit.To, "insert_len", len(edit.Insert))
	c.requestRender()
	return edit, nil
}

// Dispatch routes an overlay event. A non-nil Job must be run by the host.
func (c *Controller) Dispatch(ev Event) Job {
	switch ev := ev.(type) {
	case EventInvokeAction:
		job, err := c.InvokeAction(ev.ActionID)
		if err != nil {
			c.logger.Debug("invoke rejected", "action", ev.ActionID, "error", err)
			return nil
		}
		return job
	case EventToggleSuggestion:
		c.Toggle(ev.Index)
	case EventCommit:
		if _, err := c.Commit(ev.Mode); err != nil {
			c.logger.Debug("commit rejected", "mode", ev.Mode.String(), "error", err)
		}
	}
	return nil
}

func (c *Controller) fail(stage string, err error) {
	c.logger.Warn("copilot "+stage+" failed", "error", err)
	c.opts.Notifier.Notify(NotifyError, FailureMessage(err))
}

// FailureMessage is the user-facing text for err.
func FailureMessage(err error) string {
	var be *generate.BackendError
	switch {
	case errors.Is(err, prompt.ErrTemplateNotFound):
		return "Copilot: " + err.Error()
	case errors.As(err, &be):
		return "Copilot request failed: " + be.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Copilot request timed out"
	default:
		return "Copilot failed: " + err.Error()
	}
}

func (c *Controller) requestRender() {
	if c.opts.OnRender != nil {
		c.opts.OnRender(c.Overlay())
	}
}
