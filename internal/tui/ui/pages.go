package ui

import "github.com/rivo/tview"

// Pages is a navigation stack of Components on top of tview.Pages. A page
// is started when it enters the stack and stopped when it leaves it; pages
// covered by another stay started.
type Pages struct {
	*tview.Pages
	stack    []Component
	added    map[string]bool
	onChange func(top Component, stack []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
		added: make(map[string]bool),
	}
}

// SetOnChange sets a callback that fires after the stack changes.
func (p *Pages) SetOnChange(fn func(top Component, stack []string)) {
	p.onChange = fn
}

func (p *Pages) show(c Component) {
	if !p.added[c.Name()] {
		p.AddPage(c.Name(), c, true, false)
		p.added[c.Name()] = true
	}
	p.SwitchToPage(c.Name())
}

// Push shows c on top. If c is already in the stack, the pages above it
// are popped instead.
func (p *Pages) Push(c Component) {
	if i := p.index(c.Name()); i >= 0 {
		p.truncate(i + 1)
		p.show(c)
		p.notify()
		return
	}
	p.stack = append(p.stack, c)
	p.show(c)
	c.Start()
	p.notify()
}

// Pop removes the top page and shows the one below it. The last page is
// never popped; Pop returns nil in that case.
func (p *Pages) Pop() Component {
	if len(p.stack) < 2 {
		return nil
	}
	top := p.stack[len(p.stack)-1]
	p.truncate(len(p.stack) - 1)
	p.show(p.Current())
	p.notify()
	return top
}

// Reset stops every page and leaves c as the only one.
func (p *Pages) Reset(c Component) {
	p.truncate(0)
	p.stack = []Component{c}
	p.show(c)
	c.Start()
	p.notify()
}

// truncate stops and drops the pages from index n up, top first.
func (p *Pages) truncate(n int) {
	for i := len(p.stack) - 1; i >= n; i-- {
		p.stack[i].Stop()
	}
	p.stack = p.stack[:n]
}

func (p *Pages) index(name string) int {
	for i, c := range p.stack {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// Current returns the top page, or nil.
func (p *Pages) Current() Component {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// Names returns the page names from bottom to top.
func (p *Pages) Names() []string {
	names := make([]string, len(p.stack))
	for i, c := range p.stack {
		names[i] = c.Name()
	}
	return names
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Current(), p.Names())
	}
}
