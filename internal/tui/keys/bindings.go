// Package keys maps key events to actions, globally and per page.
package keys

import (
	"sort"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Action is one key binding. Key is tcell.KeyRune for printable keys, in
// which case Rune selects the character.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Label       string
	Description string
	Handler     func()
	Visible     bool
}

// Matches reports whether ev triggers the action. A Ctrl-letter binding
// also matches terminals that report the letter with the Ctrl modifier.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		if ev.Key() == a.Key {
			return true
		}
		if a.Key >= tcell.KeyCtrlA && a.Key <= tcell.KeyCtrlZ &&
			ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 {
			return unicode.ToLower(ev.Rune()) == 'a'+rune(a.Key-tcell.KeyCtrlA)
		}
		return false
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune && ev.Modifiers()&tcell.ModCtrl == 0
}

// Hint is a visible binding, ready for the header.
type Hint struct {
	Key         string
	Description string
}

// Registry holds bindings by scope. Page bindings shadow global ones.
type Registry struct {
	global map[string]*Action
	views  map[string]map[string]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		global: make(map[string]*Action),
		views:  make(map[string]map[string]*Action),
	}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global[name] = action
}

// AddView registers a binding for one page.
func (r *Registry) AddView(view, name string, action *Action) {
	if r.views[view] == nil {
		r.views[view] = make(map[string]*Action)
	}
	r.views[view][name] = action
}

// Hints returns the visible bindings for view, page bindings first, each
// group sorted by name.
func (r *Registry) Hints(view string) []Hint {
	hints := visible(r.views[view])
	return append(hints, visible(r.global)...)
}

func visible(m map[string]*Action) []Hint {
	names := make([]string, 0, len(m))
	for name, a := range m {
		if a.Visible {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]Hint, 0, len(names))
	for _, name := range names {
		a := m[name]
		out = append(out, Hint{Key: a.Label, Description: a.Description})
	}
	return out
}

// HandleEvent runs the first binding matching ev in view, then globally.
// It reports whether a handler ran.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	if a := match(r.views[view], ev); a != nil {
		a.Handler()
		return true
	}
	if a := match(r.global, ev); a != nil {
		a.Handler()
		return true
	}
	return false
}

func match(m map[string]*Action, ev *tcell.EventKey) *Action {
	for _, a := range m {
		if a.Matches(ev) {
			return a
		}
	}
	return nil
}
