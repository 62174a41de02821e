// Package tui renders the notification bell, its panel and the toast stack
// in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/internal/presentation"
)

const TickInterval = 250 * time.Millisecond

var views = []presentation.View{
	presentation.ViewAll,
	presentation.ViewUnread,
	presentation.ViewRead,
	presentation.ViewArchived,
}

type tickMsg time.Time

// doneMsg reports the outcome of a store call started from a key press.
type doneMsg struct{ err error }

func tickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// App is the bubbletea model of the bell.
type App struct {
	ctx       context.Context
	presenter *presentation.Presenter
	cursor    int
	searching bool
	query     string
	err       error
	width     int
}

func New(ctx context.Context, p *presentation.Presenter) App {
	return App{ctx: ctx, presenter: p}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.call(a.presenter.Bell().Refresh), tickCmd())
}

func (a App) call(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: fn(a.ctx)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case tickMsg:
		a.presenter.Toasts().Tick()
		return a, tickCmd()

	case doneMsg:
		a.err = msg.err
		if n := len(a.presenter.Bell().Items()); a.cursor >= n {
			a.cursor = max(n-1, 0)
		}
		return a, nil

	case tea.KeyMsg:
		if a.searching {
			return a.updateSearch(msg)
		}
		return a.updateKeys(msg)
	}

	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bell := a.presenter.Bell()

	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "b":
		if bell.IsOpen() {
			bell.Close()
			return a, nil
		}
		return a, a.call(bell.Open)

	case "tab":
		f := bell.Filter()
		f.View = views[(indexOf(f.View)+1)%len(views)]
		a.cursor = 0
		return a, a.call(func(ctx context.Context) error { return bell.SetFilter(ctx, f) })

	case "/":
		if bell.IsOpen() {
			a.searching = true
			a.query = bell.Filter().Query
		}
		return a, nil

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "down", "j":
		if a.cursor < len(bell.Items())-1 {
			a.cursor++
		}
		return a, nil

	case "enter":
		items := bell.Items()
		if !bell.IsOpen() || a.cursor >= len(items) {
			return a, nil
		}
		id := items[a.cursor].ID
		return a, a.call(func(ctx context.Context) error { return bell.Click(ctx, id) })

	case "t":
		if toasts := a.presenter.Toasts().Visible(); len(toasts) > 0 {
			id := toasts[len(toasts)-1].Notification.ID
			return a, a.call(func(ctx context.Context) error { return a.presenter.ClickToast(ctx, id) })
		}
		return a, nil

	case "x":
		if toasts := a.presenter.Toasts().Visible(); len(toasts) > 0 {
			a.presenter.CloseToast(toasts[len(toasts)-1].Notification.ID)
		}
		return a, nil
	}

	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.searching = false
		return a, nil
	case tea.KeyEnter:
		a.searching = false
		bell := a.presenter.Bell()
		f := bell.Filter()
		f.Query = a.query
		a.cursor = 0
		return a, a.call(func(ctx context.Context) error { return bell.SetFilter(ctx, f) })
	case tea.KeyBackspace:
		if r := []rune(a.query); len(r) > 0 {
			a.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		a.query += string(msg.Runes)
	}

	return a, nil
}

func indexOf(v presentation.View) int {
	for i, known := range views {
		if known == v {
			return i
		}
	}
	return 0
}

func (a App) View() string {
	var b strings.Builder
	bell := a.presenter.Bell()

	header := headerStyle.Render("🔔 Notifications")
	if badge := bell.Badge(); badge != "" {
		header += " " + badgeStyle.Render(badge)
	}
	b.WriteString(header + "\n")

	for _, t := range a.presenter.Toasts().Visible() {
		b.WriteString(renderToast(t) + "\n")
	}

	if bell.IsOpen() {
		b.WriteString(a.renderPanel() + "\n")
	}

	if a.err != nil {
		b.WriteString(errorStyle.Render("error: "+a.err.Error()) + "\n")
	}

	help := "b bell · t open toast · x close toast · q quit"
	if bell.IsOpen() {
		help = "tab view · / search · ↑↓ move · enter mark read · " + help
	}
	b.WriteString(dimStyle.Render(help))

	return b.String()
}

func renderToast(t presentation.Toast) string {
	title := accent(t.Style).Render(t.Style.Icon + " " + t.Notification.Title)
	remaining := dimStyle.Render(fmt.Sprintf("%ds", int(t.Remaining.Round(time.Second).Seconds())))
	if t.Hovered {
		remaining = dimStyle.Render("paused")
	}

	return toastStyle(t.Style).Render(title + " " + remaining + "\n" + t.Notification.Message)
}

func (a App) renderPanel() string {
	bell := a.presenter.Bell()
	f := bell.Filter()

	tabs := make([]string, 0, len(views))
	for _, v := range views {
		if v == f.View {
			tabs = append(tabs, activeTab.Render(string(v)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(v)))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(tabs, " ") + "\n")

	switch {
	case a.searching:
		b.WriteString("search: " + a.query + "▏\n")
	case f.Query != "":
		b.WriteString(dimStyle.Render("search: "+f.Query) + "\n")
	}

	items := bell.Items()
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("No notifications"))
	}

	for i, n := range items {
		b.WriteString(renderEntry(n, i == a.cursor))
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}

	return panelStyle.Render(b.String())
}

func renderEntry(n model.Notification, selected bool) string {
	s := presentation.Theme(n.Type)

	marker := "  "
	if selected {
		marker = cursorStyle.Render("> ")
	}

	dot := "●"
	if n.Read {
		dot = " "
	}

	line := fmt.Sprintf("%s%s %s %s", marker, accent(s).Render(dot), s.Icon, n.Title)
	age := dimStyle.Render(" · " + n.CreatedAt.Local().Format("Jan 2 15:04"))

	return line + age
}
