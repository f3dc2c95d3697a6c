package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
)

// LoginMode selects which form the login page shows.
type LoginMode int

const (
	ModeLogin LoginMode = iota
	ModeRegister
	ModeForgot
)

// LoginHandlers receive the submitted form values.
type LoginHandlers struct {
	OnLogin    func(username, password string)
	OnRegister func(username, email, password, confirm string)
	OnForgot   func(email string)
	OnQuit     func()
}

// LoginView is the sign-in page with register and forgot-password forms.
type LoginView struct {
	*tview.Flex
	theme    *ui.Theme
	form     *tview.Form
	message  *tview.TextView
	server   string
	mode     LoginMode
	busy     bool
	handlers LoginHandlers

	username, email, password, confirm string
}

// NewLoginView builds the page for the given server URL.
func NewLoginView(theme *ui.Theme, server string) *LoginView {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderFocusColor)
	form.SetTitleColor(theme.TitleColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetFieldBackgroundColor(theme.FieldBgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.BorderColor)
	form.SetButtonsAlign(tview.AlignCenter)

	message := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	message.SetBackgroundColor(theme.BgColor)

	column := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(form, 15, 0, true).
		AddItem(message, 2, 0, false).
		AddItem(nil, 0, 1, false)

	flex := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(column, 60, 0, true).
		AddItem(nil, 0, 1, false)

	lv := &LoginView{Flex: flex, theme: theme, form: form, message: message, server: server}
	lv.SetMode(ModeLogin)
	return lv
}

// SetHandlers installs the submit callbacks.
func (lv *LoginView) SetHandlers(h LoginHandlers) { lv.handlers = h }

// Name implements ui.Component.
func (lv *LoginView) Name() string { return "login" }

// Start implements ui.Component.
func (lv *LoginView) Start() {}

// Stop implements ui.Component.
func (lv *LoginView) Stop() {
	lv.password, lv.confirm = "", ""
	lv.SetMode(ModeLogin)
	lv.message.Clear()
}

// FocusTarget implements ui.Component.
func (lv *LoginView) FocusTarget() tview.Primitive { return lv.form }

// Hints implements ui.Component.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "tab", Description: "Next field"},
		{Key: "enter", Description: "Submit"},
	}
}

// Mode returns the visible form.
func (lv *LoginView) Mode() LoginMode { return lv.mode }

// SetMode rebuilds the form for mode, keeping the typed username and email.
func (lv *LoginView) SetMode(mode LoginMode) {
	lv.mode = mode
	lv.form.Clear(true)
	lv.form.SetTitle(fmt.Sprintf(" %s · %s ", lv.title(), lv.server))

	user := func() {
		lv.form.AddInputField("Username", lv.username, 36, nil, func(s string) { lv.username = s })
	}
	email := func() {
		lv.form.AddInputField("Email", lv.email, 36, nil, func(s string) { lv.email = s })
	}
	pass := func(label string, dst *string) {
		*dst = ""
		lv.form.AddPasswordField(label, "", 36, '*', func(s string) { *dst = s })
	}

	switch mode {
	case ModeLogin:
		user()
		pass("Password", &lv.password)
		lv.form.AddButton("Login", lv.submit)
		lv.form.AddButton("Register", func() { lv.SetMode(ModeRegister) })
		lv.form.AddButton("Forgot", func() { lv.SetMode(ModeForgot) })
		lv.form.AddButton("Quit", func() {
			if lv.handlers.OnQuit != nil {
				lv.handlers.OnQuit()
			}
		})
	case ModeRegister:
		user()
		email()
		pass("Password", &lv.password)
		pass("Confirm", &lv.confirm)
		lv.form.AddButton("Create account", lv.submit)
		lv.form.AddButton("Back", func() { lv.SetMode(ModeLogin) })
	case ModeForgot:
		email()
		lv.form.AddButton("Send reset link", lv.submit)
		lv.form.AddButton("Back", func() { lv.SetMode(ModeLogin) })
	}
	lv.form.SetFocus(0)
}

func (lv *LoginView) title() string {
	switch lv.mode {
	case ModeRegister:
		return "Register"
	case ModeForgot:
		return "Forgot password"
	}
	return "Sign in"
}

func (lv *LoginView) submit() {
	if lv.busy {
		return
	}
	switch lv.mode {
	case ModeLogin:
		if lv.handlers.OnLogin != nil {
			lv.handlers.OnLogin(lv.username, lv.password)
		}
	case ModeRegister:
		if lv.handlers.OnRegister != nil {
			lv.handlers.OnRegister(lv.username, lv.email, lv.password, lv.confirm)
		}
	case ModeForgot:
		if lv.handlers.OnForgot != nil {
			lv.handlers.OnForgot(lv.email)
		}
	}
}

// SetBusy blocks further submits while a request is in flight.
func (lv *LoginView) SetBusy(busy bool) {
	lv.busy = busy
	if busy {
		lv.ShowInfo("Please wait...")
	}
}

// ShowInfo writes a neutral message under the form.
func (lv *LoginView) ShowInfo(msg string) { lv.show(lv.theme.FlashInfoColor, msg) }

// ShowError writes an error message under the form.
func (lv *LoginView) ShowError(msg string) { lv.show(lv.theme.FlashErrColor, msg) }

func (lv *LoginView) show(color tcell.Color, msg string) {
	lv.message.Clear()
	_, _ = fmt.Fprintf(lv.message, "[%s]%s[-]", ui.ColorTag(color), tview.Escape(msg))
}
