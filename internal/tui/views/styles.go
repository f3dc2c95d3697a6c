package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/wire"
)

// statusStyle is how a violation status renders in a table.
type statusStyle struct {
	Label string
	Color func(*ui.Theme) tcell.Color
}

// statusStyles must cover every wire.Status.
var statusStyles = map[wire.Status]statusStyle{
	wire.StatusPending:  {"PENDING", func(t *ui.Theme) tcell.Color { return t.StatusPending }},
	wire.StatusInReview: {"IN REVIEW", func(t *ui.Theme) tcell.Color { return t.StatusInReview }},
	wire.StatusResolved: {"RESOLVED", func(t *ui.Theme) tcell.Color { return t.StatusResolved }},
	wire.StatusNew:      {"NEW", func(t *ui.Theme) tcell.Color { return t.StatusNew }},
}

func styleFor(s wire.Status, theme *ui.Theme) (string, tcell.Color) {
	st, ok := statusStyles[s]
	if !ok {
		return statusStyles[wire.StatusPending].Label, theme.StatusPending
	}
	return st.Label, st.Color(theme)
}
