package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/wire"
)

// ReportsView shows the latest recorded violations with a local filter.
type ReportsView struct {
	*tview.Flex
	theme   *ui.Theme
	header  *tview.TextView
	table   *ViolationTable
	all     []wire.Violation
	filter  string
	updated time.Time
	onMount func()
	onOpen  func(wire.Violation)
}

// NewReportsView builds the page.
func NewReportsView(theme *ui.Theme) *ReportsView {
	header := tview.NewTextView().SetDynamicColors(true)
	header.SetBackgroundColor(theme.BgColor)

	table := NewViolationTable(theme, "Reports")
	table.SetEmptyText("No violations recorded yet")
	table.Update(nil)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(table, 0, 1, true)

	rv := &ReportsView{Flex: flex, theme: theme, header: header, table: table}
	table.SetSelectedFunc(func(int, int) {
		if v, ok := table.Selected(); ok && rv.onOpen != nil {
			rv.onOpen(v)
		}
	})
	return rv
}

// SetOnMount sets the callback run each time the page is shown.
func (rv *ReportsView) SetOnMount(fn func()) { rv.onMount = fn }

// SetOnOpen sets the callback for Enter on a row.
func (rv *ReportsView) SetOnOpen(fn func(wire.Violation)) { rv.onOpen = fn }

// Name implements ui.Component.
func (rv *ReportsView) Name() string { return "reports" }

// Start implements ui.Component.
func (rv *ReportsView) Start() {
	if rv.onMount != nil {
		rv.onMount()
	}
}

// Stop implements ui.Component.
func (rv *ReportsView) Stop() {}

// FocusTarget implements ui.Component.
func (rv *ReportsView) FocusTarget() tview.Primitive { return rv.table }

// Hints implements ui.Component.
func (rv *ReportsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "enter", Description: "Details"},
		{Key: "/", Description: "Filter"},
		{Key: "F5", Description: "Refresh"},
	}
}

// Update replaces the feed.
func (rv *ReportsView) Update(list []wire.Violation, at time.Time) {
	rv.all = list
	rv.updated = at
	rv.render()
}

// SetFilter narrows the rows to those whose name, LRN or violation type
// contains text, ignoring case.
func (rv *ReportsView) SetFilter(text string) {
	rv.filter = strings.TrimSpace(text)
	rv.render()
}

// Filter returns the active filter.
func (rv *ReportsView) Filter() string { return rv.filter }

func (rv *ReportsView) render() {
	shown := rv.all
	if rv.filter != "" {
		shown = make([]wire.Violation, 0, len(rv.all))
		for _, v := range rv.all {
			if matchesFilter(v, rv.filter) {
				shown = append(shown, v)
			}
		}
	}
	rv.table.Update(shown)

	rv.header.Clear()
	muted := ui.ColorTag(rv.theme.MutedColor)
	_, _ = fmt.Fprintf(rv.header, " [%s]%d[-][%s]/%d violations[-]",
		ui.ColorTag(rv.theme.CounterColor), len(shown), muted, len(rv.all))
	if rv.filter != "" {
		_, _ = fmt.Fprintf(rv.header, "  [%s]/%s[-]", ui.ColorTag(rv.theme.MenuKeyColor), tview.Escape(rv.filter))
	}
	if !rv.updated.IsZero() {
		_, _ = fmt.Fprintf(rv.header, "  [%s]updated %s[-]", muted, rv.updated.Format("15:04:05"))
	}
}

func matchesFilter(v wire.Violation, filter string) bool {
	for _, field := range []string{v.StudentName, v.StudentID, v.ViolationType} {
		if containsFold(field, filter) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
