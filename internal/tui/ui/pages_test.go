package ui

import (
	"slices"
	"testing"

	"github.com/rivo/tview"
)

type fakePage struct {
	*tview.Box
	name string
	log  *[]string
}

func newFake(name string, log *[]string) *fakePage {
	return &fakePage{Box: tview.NewBox(), name: name, log: log}
}

func (f *fakePage) Name() string                 { return f.name }
func (f *fakePage) Start()                       { *f.log = append(*f.log, "start "+f.name) }
func (f *fakePage) Stop()                        { *f.log = append(*f.log, "stop "+f.name) }
func (f *fakePage) Hints() []MenuHint            { return nil }
func (f *fakePage) FocusTarget() tview.Primitive { return f.Box }

func TestPagesStack(t *testing.T) {
	var log []string
	var lastStack []string
	p := NewPages()
	p.SetOnChange(func(_ Component, stack []string) { lastStack = stack })

	search := newFake("search", &log)
	reports := newFake("reports", &log)
	detail := newFake("violation", &log)

	p.Reset(search)
	p.Push(reports)
	p.Push(detail)
	if want := []string{"search", "reports", "violation"}; !slices.Equal(lastStack, want) {
		t.Fatalf("stack = %v, want %v", lastStack, want)
	}

	if top := p.Pop(); top != Component(detail) {
		t.Errorf("Pop returned %v", top)
	}
	if p.Current() != Component(reports) {
		t.Errorf("Current = %s, want reports", p.Current().Name())
	}

	// Pushing a page already in the stack unwinds to it.
	p.Push(search)
	if want := []string{"search"}; !slices.Equal(lastStack, want) {
		t.Fatalf("stack = %v, want %v", lastStack, want)
	}
	if p.Pop() != nil {
		t.Error("the last page must not be popped")
	}

	want := []string{
		"start search", "start reports", "start violation",
		"stop violation", "stop reports",
	}
	if !slices.Equal(log, want) {
		t.Errorf("lifecycle = %v, want %v", log, want)
	}
}

func TestPagesReset(t *testing.T) {
	var log []string
	p := NewPages()
	a := newFake("search", &log)
	b := newFake("reports", &log)
	login := newFake("login", &log)

	p.Reset(a)
	p.Push(b)
	p.Reset(login)

	want := []string{"start search", "start reports", "stop reports", "stop search", "start login"}
	if !slices.Equal(log, want) {
		t.Errorf("lifecycle = %v, want %v", log, want)
	}
	if names := p.Names(); !slices.Equal(names, []string{"login"}) {
		t.Errorf("Names = %v", names)
	}
}
