package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/wire"
)

var violationColumns = []string{" STUDENT", " LRN", " GRADE/SECTION", " VIOLATION", " DATE", " STATUS", " REPORTED BY"}

// ViolationTable lists violations with a colored status column.
type ViolationTable struct {
	*tview.Table
	theme *ui.Theme
	data  []wire.Violation
	empty string
}

// NewViolationTable creates an empty table titled title.
func NewViolationTable(theme *ui.Theme, title string) *ViolationTable {
	t := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	t.SetBorder(true)
	t.SetBorderColor(theme.BorderColor)
	t.SetBackgroundColor(theme.BgColor)
	t.SetTitle(" " + title + " ")
	t.SetTitleColor(theme.TitleColor)
	t.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	vt := &ViolationTable{Table: t, theme: theme, empty: "No violations found"}
	vt.Update(nil)
	return vt
}

// SetEmptyText sets the placeholder shown when there are no rows.
func (vt *ViolationTable) SetEmptyText(s string) {
	vt.empty = s
}

// Update replaces the rows and keeps the cursor in range.
func (vt *ViolationTable) Update(list []wire.Violation) {
	row, _ := vt.GetSelection()
	vt.data = list
	vt.Clear()

	for col, h := range violationColumns {
		vt.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(vt.theme.TableHeaderFg).
			SetBackgroundColor(vt.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	if len(list) == 0 {
		vt.SetCell(1, 0, tview.NewTableCell(" "+vt.empty).
			SetSelectable(false).
			SetTextColor(vt.theme.MutedColor))
		return
	}

	for i, v := range list {
		r := i + 1
		label, color := styleFor(v.Status, vt.theme)
		vt.SetCell(r, 0, vt.cell(v.StudentName).SetExpansion(2))
		vt.SetCell(r, 1, vt.cell(v.StudentID))
		vt.SetCell(r, 2, vt.cell(gradeSection(v)))
		vt.SetCell(r, 3, vt.cell(v.ViolationType).SetExpansion(2))
		vt.SetCell(r, 4, vt.cell(v.DateFormatted))
		vt.SetCell(r, 5, tview.NewTableCell(" "+label).SetTextColor(color).SetAttributes(tcell.AttrBold))
		vt.SetCell(r, 6, vt.cell(v.ReportedBy))
	}

	switch {
	case row < 1:
		row = 1
	case row > len(list):
		row = len(list)
	}
	vt.Select(row, 0)
}

func (vt *ViolationTable) cell(s string) *tview.TableCell {
	return tview.NewTableCell(" " + display(s)).SetTextColor(vt.theme.FgColor)
}

// Selected returns the violation under the cursor.
func (vt *ViolationTable) Selected() (wire.Violation, bool) {
	row, _ := vt.GetSelection()
	if row < 1 || row > len(vt.data) {
		return wire.Violation{}, false
	}
	return vt.data[row-1], true
}

// Len returns the number of rows.
func (vt *ViolationTable) Len() int { return len(vt.data) }

func gradeSection(v wire.Violation) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{v.GradeLevel, v.Section} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}

// describe renders the full record for the detail page.
func describe(v wire.Violation, theme *ui.Theme) string {
	key := ui.ColorTag(theme.MenuKeyColor)
	label, color := styleFor(v.Status, theme)
	var b strings.Builder
	row := func(k, val string) {
		fmt.Fprintf(&b, "  [%s]%-13s[-] %s\n", key, k, val)
	}
	row("Record", fmt.Sprintf("#%d", v.ID))
	row("Student", display(v.StudentName))
	row("LRN", display(v.StudentID))
	row("Grade", display(v.GradeLevel))
	row("Section", display(v.Section))
	row("Violation", display(v.ViolationType))
	row("Date", display(v.DateFormatted))
	row("Status", fmt.Sprintf("[%s::b]%s[-::-]", ui.ColorTag(color), label))
	if v.Confidence != nil {
		row("Confidence", fmt.Sprintf("%.1f%%", *v.Confidence))
	}
	row("Reported by", display(v.ReportedBy))
	return b.String()
}
