package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
)

// HelpEntry is one line of the help page.
type HelpEntry struct {
	Key         string
	Description string
}

// HelpSection groups entries under a heading.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpView displays key bindings and commands.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates the help page from sections.
func NewHelpView(theme *ui.Theme, sections []HelpSection) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{TextView: tv, theme: theme}
	hv.render(sections)
	return hv
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return "help" }

// Start implements ui.Component.
func (hv *HelpView) Start() { hv.ScrollToBeginning() }

// Stop implements ui.Component.
func (hv *HelpView) Stop() {}

// FocusTarget implements ui.Component.
func (hv *HelpView) FocusTarget() tview.Primitive { return hv.TextView }

// Hints implements ui.Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "esc", Description: "Back"}}
}

func (hv *HelpView) render(sections []HelpSection) {
	key := ui.ColorTag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "\n  [::b]%s[::-]\n\n", s.Title)
		for _, e := range s.Entries {
			pad := max(1, 12-len(e.Key))
			fmt.Fprintf(&b, "  [%s]%s[-]%s%s\n", key, tview.Escape(e.Key), strings.Repeat(" ", pad), e.Description)
		}
	}
	hv.SetText(b.String())
}
