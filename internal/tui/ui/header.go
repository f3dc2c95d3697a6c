package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

var logo = []string{
	`      _                  _    `,
	`__ __| |_ _ _ __ _ __ __| |__ `,
	`\ V /  _| '_/ _' / _/ _| / / `,
	` \_/ \__|_| \__,_\__\__|_\_\ `,
}

// HeaderInfo is what the left panel of the header shows.
type HeaderInfo struct {
	Profile    string
	Server     string
	User       string
	SearchType string
	State      string
	Results    int
}

// Header is the top band: session info, key hints and the logo.
type Header struct {
	*tview.Flex
	theme *Theme
	info  *tview.TextView
	menu  *tview.TextView
}

// NewHeader builds the header.
func NewHeader(theme *Theme) *Header {
	info := tview.NewTextView().SetDynamicColors(true)
	info.SetBackgroundColor(theme.BgColor)

	menu := tview.NewTextView().SetDynamicColors(true)
	menu.SetBackgroundColor(theme.BgColor)

	art := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignRight)
	art.SetBackgroundColor(theme.BgColor)
	_, _ = fmt.Fprintf(art, "[%s]%s[-]", ColorTag(theme.TitleColor), tview.Escape(strings.Join(logo, "\n")))

	flex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(info, 0, 2, false).
		AddItem(menu, 0, 3, false).
		AddItem(art, 32, 0, false)

	return &Header{Flex: flex, theme: theme, info: info, menu: menu}
}

// SetInfo redraws the info panel.
func (h *Header) SetInfo(d HeaderInfo) {
	h.info.Clear()
	key := ColorTag(h.theme.MenuKeyColor)
	val := ColorTag(h.theme.FgColor)
	user := d.User
	if user == "" {
		user = "(signed out)"
	}
	rows := [][2]string{
		{"Profile", d.Profile},
		{"Server", d.Server},
		{"User", user},
		{"Search", d.SearchType},
		{"State", d.State},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(h.info, "[%s]%-8s[-] [%s]%s[-]\n", key, r[0]+":", val, tview.Escape(r[1]))
	}
	if d.Results > 0 {
		_, _ = fmt.Fprintf(h.info, "[%s]%-8s[-] [%s]%d[-]\n", key, "Hits:", ColorTag(h.theme.CounterColor), d.Results)
	}
}

// SetHints redraws the key hints in two columns.
func (h *Header) SetHints(hints []MenuHint) {
	h.menu.Clear()
	key := ColorTag(h.theme.MenuKeyColor)
	half := (len(hints) + 1) / 2
	for i := 0; i < half; i++ {
		left := formatHint(key, hints[i])
		right := ""
		if j := i + half; j < len(hints) {
			right = formatHint(key, hints[j])
		}
		_, _ = fmt.Fprintf(h.menu, "%s  %s\n", left, right)
	}
}

func formatHint(keyColor string, h MenuHint) string {
	label := tview.Escape("<" + h.Key + ">")
	pad := 10 - len(h.Key) - 2
	if pad < 1 {
		pad = 1
	}
	return fmt.Sprintf("[%s]%s[-]%s%-18s", keyColor, label, strings.Repeat(" ", pad), h.Description)
}

// Crumbs shows the page stack as a breadcrumb trail.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

// NewCrumbs creates an empty breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &Crumbs{TextView: tv, theme: theme}
}

// Update renders stack, highlighting the last entry.
func (c *Crumbs) Update(stack []string) {
	c.Clear()
	for i, name := range stack {
		fg, bg := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg
		if i == len(stack)-1 {
			fg, bg = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg
		}
		_, _ = fmt.Fprintf(c, "[%s:%s:b] <%s> [-:-:-] ", ColorTag(fg), ColorTag(bg), name)
	}
}
