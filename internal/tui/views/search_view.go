package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/status"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/wire"
)

// maxSuggestionRows caps the height of the suggestion panel.
const maxSuggestionRows = 10

const idleHint = "Type at least 2 characters, then Enter to search"

// SearchHandlers are the user intents the search page reports.
type SearchHandlers struct {
	OnMount   func()
	OnUnmount func()
	OnChange  func(text string)
	OnSubmit  func()
	OnSelect  func(suggestion string)
	OnToggle  func()
	OnOpen    func(v wire.Violation)
}

// SearchView is the violation search page: query box, suggestion panel,
// status line and results.
type SearchView struct {
	*tview.Flex
	theme       *ui.Theme
	box         *tview.Flex
	typeLabel   *tview.TextView
	input       *tview.InputField
	suggestions *tview.List
	statusLine  *tview.TextView
	results     *ViolationTable
	handlers    SearchHandlers
	setFocus    func(tview.Primitive)
	syncing     bool
	showing     bool
}

// NewSearchView builds the page. setFocus moves keyboard focus inside the
// application.
func NewSearchView(theme *ui.Theme, setFocus func(tview.Primitive)) *SearchView {
	typeLabel := tview.NewTextView().SetDynamicColors(true)
	typeLabel.SetBackgroundColor(theme.BgColor)

	input := tview.NewInputField().SetFieldWidth(0)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)
	input.SetPlaceholderTextColor(theme.MutedColor)

	box := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(typeLabel, 18, 0, false).
		AddItem(input, 0, 1, true)
	box.SetBorder(true)
	box.SetBorderColor(theme.BorderFocusColor)
	box.SetTitle(" Search ")
	box.SetTitleColor(theme.TitleColor)
	box.SetBackgroundColor(theme.BgColor)

	list := tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	list.SetBorder(true)
	list.SetBorderColor(theme.BorderColor)
	list.SetTitle(" Suggestions ")
	list.SetTitleColor(theme.TitleColor)
	list.SetBackgroundColor(theme.BgColor)
	list.SetMainTextColor(theme.FgColor)
	list.SetSelectedTextColor(theme.TableCursorFg)
	list.SetSelectedBackgroundColor(theme.TableCursorBg)

	statusLine := tview.NewTextView().SetDynamicColors(true)
	statusLine.SetBackgroundColor(theme.BgColor)

	results := NewViolationTable(theme, "Results")

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(box, 3, 0, true).
		AddItem(list, 0, 0, false).
		AddItem(statusLine, 1, 0, false).
		AddItem(results, 0, 1, false)

	sv := &SearchView{
		Flex:        flex,
		theme:       theme,
		box:         box,
		typeLabel:   typeLabel,
		input:       input,
		suggestions: list,
		statusLine:  statusLine,
		results:     results,
		setFocus:    setFocus,
	}
	sv.wire()
	sv.Render(search.Snapshot{Type: search.ByName, State: status.Idle})
	return sv
}

func (sv *SearchView) wire() {
	sv.input.SetChangedFunc(func(text string) {
		if sv.syncing || sv.handlers.OnChange == nil {
			return
		}
		sv.handlers.OnChange(text)
	})
	sv.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && sv.handlers.OnSubmit != nil {
			sv.handlers.OnSubmit()
		}
	})
	sv.input.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyDown {
			if sv.showing {
				sv.focus(sv.suggestions)
			} else {
				sv.focus(sv.results)
			}
			return nil
		}
		return ev
	})

	sv.suggestions.SetSelectedFunc(func(_ int, text string, _ string, _ rune) {
		sv.focus(sv.input)
		if sv.handlers.OnSelect != nil {
			sv.handlers.OnSelect(text)
		}
	})
	sv.suggestions.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyUp:
			if sv.suggestions.GetCurrentItem() == 0 {
				sv.focus(sv.input)
				return nil
			}
		case tcell.KeyEscape:
			sv.focus(sv.input)
			return nil
		}
		return ev
	})

	sv.results.SetSelectedFunc(func(int, int) {
		if v, ok := sv.results.Selected(); ok && sv.handlers.OnOpen != nil {
			sv.handlers.OnOpen(v)
		}
	})
	sv.results.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyRune && ev.Rune() == '/' {
			sv.focus(sv.input)
			return nil
		}
		row, _ := sv.results.GetSelection()
		if ev.Key() == tcell.KeyUp && row <= 1 {
			sv.focus(sv.input)
			return nil
		}
		return ev
	})
}

func (sv *SearchView) focus(p tview.Primitive) {
	if sv.setFocus != nil {
		sv.setFocus(p)
	}
}

// SetHandlers installs the intent callbacks.
func (sv *SearchView) SetHandlers(h SearchHandlers) {
	sv.handlers = h
}

// Name implements ui.Component.
func (sv *SearchView) Name() string { return "search" }

// Start implements ui.Component.
func (sv *SearchView) Start() {
	if sv.handlers.OnMount != nil {
		sv.handlers.OnMount()
	}
}

// Stop implements ui.Component.
func (sv *SearchView) Stop() {
	if sv.handlers.OnUnmount != nil {
		sv.handlers.OnUnmount()
	}
	sv.SetQuery("")
	sv.Render(search.Snapshot{Type: search.ByName, State: status.Idle})
}

// FocusTarget implements ui.Component.
func (sv *SearchView) FocusTarget() tview.Primitive { return sv.input }

// Hints implements ui.Component.
func (sv *SearchView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "enter", Description: "Search/Open"},
		{Key: "tab", Description: "Toggle type"},
		{Key: "down", Description: "Suggestions"},
		{Key: "/", Description: "Edit query"},
	}
}

// SetQuery replaces the query text without reporting a change.
func (sv *SearchView) SetQuery(text string) {
	if sv.input.GetText() == text {
		return
	}
	sv.syncing = true
	sv.input.SetText(text)
	sv.syncing = false
}

// Query returns the text in the search box.
func (sv *SearchView) Query() string { return sv.input.GetText() }

// ShowingSuggestions reports whether the suggestion panel is open.
func (sv *SearchView) ShowingSuggestions() bool { return sv.showing }

// Render draws snap. The query box is not touched so that a late snapshot
// never overwrites what the user is typing.
func (sv *SearchView) Render(snap search.Snapshot) {
	sv.setType(snap.Type)
	sv.renderSuggestions(snap)
	sv.renderStatus(snap)
	if !snap.Searching {
		if snap.State == status.Results {
			sv.results.SetEmptyText("No violations found")
		} else {
			sv.results.SetEmptyText(idleHint)
		}
		sv.results.Update(snap.Results)
	}
}

func (sv *SearchView) setType(t search.Type) {
	sv.typeLabel.Clear()
	_, _ = fmt.Fprintf(sv.typeLabel, " [%s::b]%s[-::-] ›", ui.ColorTag(sv.theme.MenuKeyColor), t.Label())
	if t == search.ByType {
		sv.input.SetPlaceholder("e.g. uniform, no ID, late")
	} else {
		sv.input.SetPlaceholder("e.g. Maria Santos")
	}
}

func (sv *SearchView) renderSuggestions(snap search.Snapshot) {
	sv.showing = snap.ShowingSuggestions && len(snap.Suggestions) > 0
	current := sv.suggestions.GetCurrentItem()
	sv.suggestions.Clear()
	if !sv.showing {
		sv.ResizeItem(sv.suggestions, 0, 0)
		if sv.suggestions.HasFocus() {
			sv.focus(sv.input)
		}
		return
	}
	for _, s := range snap.Suggestions {
		sv.suggestions.AddItem(display(s), "", 0, nil)
	}
	if current < len(snap.Suggestions) {
		sv.suggestions.SetCurrentItem(current)
	}
	rows := min(len(snap.Suggestions), maxSuggestionRows)
	sv.ResizeItem(sv.suggestions, rows+2, 0)
}

func (sv *SearchView) renderStatus(snap search.Snapshot) {
	sv.statusLine.Clear()
	muted := ui.ColorTag(sv.theme.MutedColor)
	switch {
	case snap.Searching:
		_, _ = fmt.Fprintf(sv.statusLine, " [%s]Searching...[-]", ui.ColorTag(sv.theme.FlashInfoColor))
	case snap.LastError != "":
		_, _ = fmt.Fprintf(sv.statusLine, " [%s]%s[-]", ui.ColorTag(sv.theme.FlashErrColor), tview.Escape(snap.LastError))
	case snap.FetchingSuggestions:
		_, _ = fmt.Fprintf(sv.statusLine, " [%s]Looking up suggestions...[-]", muted)
	case snap.State == status.Results:
		_, _ = fmt.Fprintf(sv.statusLine, " [%s]%d[-] [%s]result(s) for %s[-]",
			ui.ColorTag(sv.theme.CounterColor), len(snap.Results), muted, tview.Escape(snap.Type.Label()))
	}
}
