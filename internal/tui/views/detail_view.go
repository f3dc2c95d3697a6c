package views

import (
	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/wire"
)

// DetailView shows every field of one violation.
type DetailView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewDetailView creates an empty detail page.
func NewDetailView(theme *ui.Theme) *DetailView {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitleColor(theme.TitleColor)
	return &DetailView{TextView: tv, theme: theme}
}

// Show loads v.
func (dv *DetailView) Show(v wire.Violation) {
	dv.SetTitle(" " + display(v.StudentName) + " ")
	dv.SetText("\n" + describe(v, dv.theme))
}

// Name implements ui.Component.
func (dv *DetailView) Name() string { return "violation" }

// Start implements ui.Component.
func (dv *DetailView) Start() {}

// Stop implements ui.Component.
func (dv *DetailView) Stop() {}

// FocusTarget implements ui.Component.
func (dv *DetailView) FocusTarget() tview.Primitive { return dv.TextView }

// Hints implements ui.Component.
func (dv *DetailView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "esc", Description: "Back"}}
}
