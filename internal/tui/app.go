// Package tui is the interactive terminal client: login, debounced
// violation search and the reports feed.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/bus"
	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/status"
	"github.com/schoolwatch/vtrack/internal/tui/keys"
	"github.com/schoolwatch/vtrack/internal/tui/model"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/tui/views"
	"github.com/schoolwatch/vtrack/internal/wire"
	"go.uber.org/zap"
)

// reportsRefresh is how often the visible reports page reloads.
const reportsRefresh = 15 * time.Second

// Options configures the application shell.
type Options struct {
	Profile string
	Bus     *bus.Bus
	Logger  *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	vm       *model.ViewModel
	bus      *bus.Bus
	logger   *zap.Logger
	profile  string
	registry *keys.Registry

	root     *tview.Flex
	header   *ui.Header
	prompt   *ui.Prompt
	pages    *ui.Pages
	crumbs   *ui.Crumbs
	flashBar *ui.FlashBar

	login   *views.LoginView
	searchV *views.SearchView
	reports *views.ReportsView
	detail  *views.DetailView
	help    *views.HelpView

	promptOpen bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp creates the TUI application around vm.
func NewApp(vm *model.ViewModel, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := ui.DefaultTheme()

	a := &App{
		app:      tview.NewApplication(),
		theme:    theme,
		vm:       vm,
		bus:      opts.Bus,
		logger:   logger,
		profile:  opts.Profile,
		registry: keys.NewRegistry(),
		header:   ui.NewHeader(theme),
		prompt:   ui.NewPrompt(theme),
		pages:    ui.NewPages(),
		crumbs:   ui.NewCrumbs(theme),
		flashBar: ui.NewFlashBar(theme),
		login:    views.NewLoginView(theme, vm.Auth().BaseURL()),
		reports:  views.NewReportsView(theme),
		detail:   views.NewDetailView(theme),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.searchV = views.NewSearchView(theme, func(p tview.Primitive) { a.app.SetFocus(p) })
	a.help = views.NewHelpView(theme, a.helpSections())

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("command", &keys.Action{
		Key: tcell.KeyRune, Rune: ':', Label: ":", Description: "Command", Visible: true,
		Handler: func() { a.openPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Key: tcell.KeyRune, Rune: '?', Label: "?", Description: "Help", Visible: true,
		Handler: func() { a.navigate(a.help) },
	})
	a.registry.AddGlobal("quit", &keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Back/Quit", Visible: true,
		Handler: a.back,
	})
	a.registry.AddGlobal("refresh", &keys.Action{
		Key: tcell.KeyF5, Label: "F5", Description: "Refresh",
		Handler: a.refresh,
	})

	a.registry.AddView("search", "toggle", &keys.Action{
		Key: tcell.KeyTab, Label: "tab", Description: "Toggle type",
		Handler: a.toggleType,
	})
	a.registry.AddView("search", "toggle-ctrl", &keys.Action{
		Key: tcell.KeyCtrlT, Label: "ctrl-t", Description: "Toggle type",
		Handler: a.toggleType,
	})
	a.registry.AddView("search", "reports", &keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Label: "r", Description: "Reports", Visible: true,
		Handler: func() { a.navigate(a.reports) },
	})
	a.registry.AddView("reports", "filter", &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Label: "/", Description: "Filter", Visible: true,
		Handler: func() { a.openPrompt(ui.PromptFilter) },
	})
	a.registry.AddView("reports", "search", &keys.Action{
		Key: tcell.KeyRune, Rune: 's', Label: "s", Description: "Search", Visible: true,
		Handler: func() { a.navigate(a.searchV) },
	})
}

func (a *App) setupCallbacks() {
	a.login.SetHandlers(views.LoginHandlers{
		OnLogin: func(username, password string) {
			a.authCall(func(ctx context.Context) (string, error) {
				_, err := a.vm.Auth().Login(ctx, username, password)
				return "Login successful", err
			})
		},
		OnRegister: func(username, email, password, confirm string) {
			a.authCall(func(ctx context.Context) (string, error) {
				_, err := a.vm.Auth().Register(ctx, username, email, password, confirm)
				return "Registration successful", err
			})
		},
		OnForgot: func(email string) {
			a.login.SetBusy(true)
			go func() {
				_, err := a.vm.Auth().ForgotPassword(a.ctx, email)
				a.app.QueueUpdateDraw(func() {
					a.login.SetBusy(false)
					if err != nil {
						a.login.ShowError(model.Describe(err))
						return
					}
					a.login.SetMode(views.ModeLogin)
					a.login.ShowInfo("Password reset link sent to your email")
				})
			}()
		},
		OnQuit: a.Stop,
	})

	a.searchV.SetHandlers(views.SearchHandlers{
		OnMount: func() {
			s := a.vm.OpenSearch()
			a.searchV.SetQuery("")
			a.searchV.Render(s.Snapshot())
		},
		OnUnmount: a.vm.CloseSearch,
		OnChange: func(text string) {
			if s := a.vm.Session(); s != nil {
				s.OnTextChanged(text)
			}
		},
		OnSubmit: func() {
			if s := a.vm.Session(); s != nil {
				go s.Submit(a.ctx)
			}
		},
		OnSelect: func(suggestion string) {
			if s := a.vm.Session(); s != nil {
				a.searchV.SetQuery(suggestion)
				go s.SelectSuggestion(a.ctx, suggestion)
			}
		},
		OnOpen: a.openDetail,
	})

	a.reports.SetOnMount(a.loadReports)
	a.reports.SetOnOpen(a.openDetail)

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		if mode == ui.PromptCommand && text != "" {
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.reports.SetFilter(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.reports.SetFilter("")
		}
		a.closePrompt()
	})

	a.pages.SetOnChange(func(top ui.Component, stack []string) {
		a.crumbs.Update(stack)
		a.refreshHeader()
		if top != nil {
			a.app.SetFocus(top.FocusTarget())
		}
	})
}

func (a *App) setupLayout() {
	a.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 6, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)
	a.root.SetBackgroundColor(a.theme.BgColor)
	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.captureKey)
}

func (a *App) captureKey(ev *tcell.EventKey) *tcell.EventKey {
	if a.promptOpen {
		return ev
	}
	top := a.pages.Current()
	if top == nil {
		return ev
	}
	page := top.Name()
	if page == "login" {
		return ev
	}

	focused := a.app.GetFocus()
	_, typing := focused.(*tview.InputField)

	if ev.Key() == tcell.KeyEscape {
		if page == "search" && focused != a.searchV.FocusTarget() {
			// Let the suggestion list and results hand focus back to the input.
			return ev
		}
		a.pages.Pop()
		return nil
	}
	if typing && ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl == 0 {
		return ev
	}
	if a.registry.HandleEvent(page, ev) {
		return nil
	}
	return ev
}

func (a *App) openPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.promptOpen = true
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.promptOpen = false
	a.root.ResizeItem(a.prompt, 0, 0)
	if top := a.pages.Current(); top != nil {
		a.app.SetFocus(top.FocusTarget())
	}
}

// navigate shows c, or the login page when nobody is signed in.
func (a *App) navigate(c ui.Component) {
	if !a.vm.Auth().LoggedIn() {
		a.pages.Reset(a.login)
		return
	}
	a.pages.Push(c)
}

func (a *App) back() {
	if a.pages.Pop() == nil {
		a.Stop()
	}
}

func (a *App) runCommand(cmd Command) {
	if err := cmd.Validate(); err != nil {
		a.vm.Flash.Warn(err.Error())
		return
	}
	switch cmd.Name {
	case "search":
		a.navigate(a.searchV)
		if cmd.Args != "" {
			if s := a.vm.Session(); s != nil {
				a.searchV.SetQuery(cmd.Args)
				go s.SelectSuggestion(a.ctx, cmd.Args)
			}
		}
	case "reports":
		a.navigate(a.reports)
	case "type":
		a.navigate(a.searchV)
		a.setType(cmd.Args)
	case "refresh":
		a.refresh()
	case "logout":
		a.logout()
	case "help":
		a.navigate(a.help)
	case "quit":
		a.Stop()
	}
}

func (a *App) setType(arg string) {
	s := a.vm.Session()
	if s == nil {
		return
	}
	if arg == "" {
		a.toggleType()
		return
	}
	var want search.Type
	switch arg {
	case "name", "student", wire.TypeStudentName:
		want = search.ByName
	case "type", "violation", wire.TypeViolationType:
		want = search.ByType
	default:
		a.vm.Flash.Warn("unknown search type " + arg)
		return
	}
	if s.Type() != want {
		a.toggleType()
	}
}

func (a *App) toggleType() {
	s := a.vm.Session()
	if s == nil {
		return
	}
	s.ToggleSearchType()
	a.searchV.SetQuery("")
	a.app.SetFocus(a.searchV.FocusTarget())
}

func (a *App) refresh() {
	switch a.pages.Current() {
	case ui.Component(a.reports):
		a.loadReports()
	case ui.Component(a.searchV):
		if s := a.vm.Session(); s != nil && s.Query() != "" {
			go s.Submit(a.ctx)
		}
	}
}

func (a *App) openDetail(v wire.Violation) {
	a.detail.Show(v)
	a.navigate(a.detail)
}

func (a *App) loadReports() {
	go func() {
		err := a.vm.LoadReports(a.ctx)
		list, at := a.vm.Reports()
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.logger.Warn("load reports failed", zap.Error(err))
				a.vm.Flash.Err(model.Describe(err))
				return
			}
			a.reports.Update(list, at)
		})
	}()
}

// authCall runs fn off the UI goroutine and moves to the search page on success.
func (a *App) authCall(fn func(ctx context.Context) (string, error)) {
	a.login.SetBusy(true)
	go func() {
		msg, err := fn(a.ctx)
		a.app.QueueUpdateDraw(func() {
			a.login.SetBusy(false)
			if err != nil {
				a.login.ShowError(model.Describe(err))
				return
			}
			a.vm.Flash.Info(msg)
			a.pages.Reset(a.searchV)
		})
	}()
}

func (a *App) logout() {
	if err := a.vm.Logout(); err != nil {
		a.logger.Warn("logout failed", zap.Error(err))
		a.vm.Flash.Err(model.Describe(err))
	}
	a.pages.Reset(a.login)
	a.vm.Flash.Info("Logged out")
}

func (a *App) refreshHeader() {
	info := ui.HeaderInfo{
		Profile: a.profile,
		Server:  a.vm.Auth().BaseURL(),
	}
	if u := a.vm.Auth().User(); u != nil {
		info.User = u.Username
	}
	if s := a.vm.Session(); s != nil {
		snap := s.Snapshot()
		info.SearchType = snap.Type.Label()
		info.State = string(snap.State)
		info.Results = len(snap.Results)
	} else {
		info.State = string(status.Idle)
	}
	a.header.SetInfo(info)

	var hints []ui.MenuHint
	page := ""
	if top := a.pages.Current(); top != nil {
		page = top.Name()
		hints = append(hints, top.Hints()...)
	}
	if page != "login" {
		for _, h := range a.registry.Hints(page) {
			hints = append(hints, ui.MenuHint{Key: h.Key, Description: h.Description})
		}
	}
	a.header.SetHints(hints)
}

// watchBus redraws on search and auth events until the app stops.
func (a *App) watchBus() {
	if a.bus == nil {
		return
	}
	ch, unsub := a.bus.Subscribe("", 64)
	go func() {
		defer unsub()
		for {
			select {
			case <-a.ctx.Done():
				return
			case evt := <-ch:
				a.handleEvent(evt)
			}
		}
	}()
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.SearchChanged, bus.StateChanged:
		a.app.QueueUpdateDraw(func() {
			// The payload may be stale when the bus dropped events; read
			// the live session instead.
			if s := a.vm.Session(); s != nil {
				a.searchV.Render(s.Snapshot())
			}
			a.refreshHeader()
		})
	case bus.SearchFailed:
		if f, ok := evt.Payload.(search.Failure); ok {
			a.vm.Flash.Err(f.Message)
		}
	case bus.SuggestionsFailed:
		if f, ok := evt.Payload.(search.Failure); ok {
			a.logger.Debug("suggestions failed", zap.String("query", f.Query), zap.Error(f.Err))
		}
	case bus.AuthChanged:
		a.app.QueueUpdateDraw(func() {
			if !a.vm.Auth().LoggedIn() && a.pages.Current() != ui.Component(a.login) {
				a.vm.CloseSearch()
				a.pages.Reset(a.login)
			}
			a.refreshHeader()
		})
	}
}

// tick expires flash messages and keeps the reports page fresh.
func (a *App) tick() {
	flash := time.NewTicker(500 * time.Millisecond)
	feed := time.NewTicker(reportsRefresh)
	go func() {
		defer flash.Stop()
		defer feed.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case msg := <-a.vm.Flash.Watch():
				a.app.QueueUpdateDraw(func() { a.flashBar.Update(&msg) })
			case <-flash.C:
				a.app.QueueUpdateDraw(func() { a.flashBar.Update(a.vm.Flash.Current()) })
			case <-feed.C:
				a.app.QueueUpdateDraw(func() {
					if a.pages.Current() == ui.Component(a.reports) {
						a.loadReports()
					}
				})
			}
		}
	}()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	if a.vm.Auth().LoggedIn() {
		a.pages.Reset(a.searchV)
	} else {
		a.pages.Reset(a.login)
	}
	a.watchBus()
	a.tick()
	err := a.app.Run()
	a.cancel()
	a.vm.CloseSearch()
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func (a *App) helpSections() []views.HelpSection {
	cmds := make([]views.HelpEntry, 0, len(commandHelp))
	for _, name := range Commands() {
		cmds = append(cmds, views.HelpEntry{Key: ":" + name, Description: commandHelp[name]})
	}
	return []views.HelpSection{
		{Title: "Global", Entries: []views.HelpEntry{
			{Key: ":", Description: "Command prompt (up/down walks history)"},
			{Key: "?", Description: "This help"},
			{Key: "esc", Description: "Back"},
			{Key: "q", Description: "Back, quit on the last page"},
			{Key: "F5", Description: "Refresh the current page"},
			{Key: "ctrl-c", Description: "Quit immediately"},
		}},
		{Title: "Search", Entries: []views.HelpEntry{
			{Key: "typing", Description: "Suggestions appear after a short pause (2+ characters)"},
			{Key: "enter", Description: "Search for the text as typed"},
			{Key: "down", Description: "Move into suggestions, enter picks one"},
			{Key: "tab", Description: "Toggle Student Name / Violation Type"},
			{Key: "ctrl-t", Description: "Toggle search type"},
			{Key: "r", Description: "Open reports (from the results table)"},
		}},
		{Title: "Reports", Entries: []views.HelpEntry{
			{Key: "/", Description: "Filter by name, LRN or violation"},
			{Key: "s", Description: "Back to search"},
			{Key: "enter", Description: "Violation details"},
		}},
		{Title: "Commands", Entries: cmds},
	}
}
