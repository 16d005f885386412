package copilot

import (
	"context"
	"errors"
	"fmt"

	"github.com/iw2rmb/inkwell/prompt"
)

type fakeDoc struct {
	text     []rune
	applied  []Edit
	applyErr error
}

func newFakeDoc(s string) *fakeDoc { return &fakeDoc{text: []rune(s)} }

func (d *fakeDoc) Slice(from, to int) (string, error) {
	if from < 0 || to > len(d.text) || from > to {
		return "", fmt.Errorf("bad range [%d, %d)", from, to)
	}
	return string(d.text[from:to]), nil
}

func (d *fakeDoc) Apply(e Edit) error {
	if d.applyErr != nil {
		return d.applyErr
	}
	d.applied = append(d.applied, e)
	out := append([]rune(nil), d.text[:e.From]...)
	out = append(out, []rune(e.Insert)...)
	d.text = append(out, d.text[e.To:]...)
	return nil
}

func (d *fakeDoc) String() string { return string(d.text) }

type fakeTemplates map[string]string

func (f fakeTemplates) Template(_ context.Context, name string) (prompt.Template, error) {
	raw, ok := f[name]
	if !ok {
		return prompt.Template{}, fmt.Errorf("template %q: %w", name, prompt.ErrTemplateNotFound)
	}
	return prompt.ParseTemplate(name, raw)
}

type call struct {
	prompt string
	params prompt.Parameters
}

type fakeGen struct {
	reply string
	err   error
	calls []call
}

func (g *fakeGen) Generate(_ context.Context, text string, params prompt.Parameters) (string, error) {
	g.calls = append(g.calls, call{prompt: text, params: params})
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type note struct {
	level NotifyLevel
	msg   string
}

type recorder struct{ notes []note }

func (r *recorder) Notify(level NotifyLevel, msg string) {
	r.notes = append(r.notes, note{level: level, msg: msg})
}

func (r *recorder) messages() []string {
	out := make([]string, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, n.msg)
	}
	return out
}

type staticTags prompt.Tags

func (s staticTags) Tags() (prompt.Tags, error) { return prompt.Tags(s), nil }

var errBackend = errors.New("backend down")

type harness struct {
	doc  *fakeDoc
	gen  *fakeGen
	note *recorder
	ctrl *Controller
}

func newHarness(text, reply string) harness {
	h := harness{
		doc:  newFakeDoc(text),
		gen:  &fakeGen{reply: reply},
		note: &recorder{},
	}
	tpls := fakeTemplates{}
	for _, a := range DefaultActions() {
		tpls[a.ID] = a.ID + ": {selection}"
	}
	tpls["custom"] = "---\ntemperature: 0.9\n---\nCustom {selection}"
	ctrl, err := New(Options{
		Document:  h.doc,
		Templates: tpls,
		Generator: h.gen,
		Notifier:  h.note,
		Tags:      staticTags{{Key: "audience", Value: "kids"}},
	})
	if err != nil {
		panic(err)
	}
	h.ctrl = ctrl
	return h
}

// invoke runs an action to completion synchronously.
func (h harness) invoke(id string) (Result, bool, error) {
	job, err := h.ctrl.InvokeAction(id)
	if err != nil {
		return Result{}, false, err
	}
	res := job(context.Background())
	return res, h.ctrl.Resolve(res), nil
}
