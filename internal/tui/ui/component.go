package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the header.
type MenuHint struct {
	Key         string
	Description string
}

// Component is a page that can be pushed onto Pages. Start runs when the
// page becomes visible and Stop when it is hidden or popped.
type Component interface {
	tview.Primitive
	Name() string
	Start()
	Stop()
	Hints() []MenuHint
	// FocusTarget is the primitive that receives focus when the page shows.
	FocusTarget() tview.Primitive
}
