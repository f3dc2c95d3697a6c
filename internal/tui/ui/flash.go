package ui

import (
	"fmt"

	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/tui/model"
)

// FlashBar renders the current flash message.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Update renders msg, or clears the bar when msg is nil.
func (fb *FlashBar) Update(msg *model.FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}
	color := fb.theme.FlashInfoColor
	prefix := ""
	switch msg.Level {
	case model.FlashWarn:
		color = fb.theme.FlashWarnColor
		prefix = "! "
	case model.FlashErr:
		color = fb.theme.FlashErrColor
		prefix = "✗ "
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s%s[-]", ColorTag(color), prefix, tview.Escape(msg.Text))
}
