package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/client"
)

type view int

const (
	viewJobs view = iota
	viewSaved
	viewApplied
	viewTalent
	viewYou
	viewAdmin
)

// Deps is what the views share: the API client, the session and the two
// interaction stores. Any of them may be nil in tests.
type Deps struct {
	Client  *client.Client
	Session *session.Store
	Saved   *interaction.Store
	Applied *interaction.Store
	WebURL  string
}

func (d *Deps) identity() *session.Identity {
	if d == nil || d.Session == nil {
		return nil
	}
	return d.Session.CurrentIdentity()
}

// storeChangedMsg is sent after the session or either store changed.
type storeChangedMsg struct{}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

// App is the root Bubbletea model.
type App struct {
	deps       *Deps
	view       view
	jobs       jobsModel
	saved      savedModel
	applied    appliedModel
	talent     talentModel
	you        youModel
	admin      adminModel
	helpOpen   bool
	helpCursor int
	status     string
	subject    string
	changes    chan struct{}
	unsub      []func()
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI over d and subscribes to its stores. Call Close
// when the program exits.
func NewApp(d Deps) App {
	deps := &d
	a := App{
		deps:    deps,
		jobs:    newJobsModel(deps),
		saved:   newSavedModel(deps),
		applied: newAppliedModel(deps),
		talent:  newTalentModel(deps),
		you:     newYouModel(deps),
		admin:   newAdminModel(deps),
		changes: make(chan struct{}, 1),
	}
	if id := deps.identity(); id != nil {
		a.subject = id.Subject
	}

	poke := func() {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	}
	if deps.Session != nil {
		a.unsub = append(a.unsub, deps.Session.Subscribe(func(*session.Identity) { poke() }))
	}
	for _, s := range []*interaction.Store{deps.Saved, deps.Applied} {
		if s != nil {
			a.unsub = append(a.unsub, s.Subscribe(poke))
		}
	}
	return a
}

// Close drops the store subscriptions.
func (a App) Close() {
	for _, fn := range a.unsub {
		fn()
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.jobs.Init(), a.you.Init(), shimmerTickCmd(), waitForChange(a.changes))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.jobs, _ = a.jobs.Update(bodyMsg)
		a.saved, _ = a.saved.Update(bodyMsg)
		a.applied, _ = a.applied.Update(bodyMsg)
		a.talent, _ = a.talent.Update(bodyMsg)
		a.you, _ = a.you.Update(bodyMsg)
		a.admin, _ = a.admin.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case storeChangedMsg:
		var cmds []tea.Cmd
		a.jobs, _ = a.jobs.Update(msg)
		a.saved, _ = a.saved.Update(msg)
		var cmd tea.Cmd
		a.applied, cmd = a.applied.Update(msg)
		cmds = append(cmds, cmd)

		subject := ""
		if id := a.deps.identity(); id != nil {
			subject = id.Subject
		}
		if subject != a.subject {
			a.subject = subject
			a.you = newYouModel(a.deps)
			a.admin = newAdminModel(a.deps)
			cmds = append(cmds, a.you.Init())
			if a.view == viewAdmin {
				if subject == "" || !a.deps.identity().IsAdmin() {
					a.view = viewJobs
				} else {
					cmds = append(cmds, a.admin.Init())
				}
			}
		}
		if a.changes != nil {
			cmds = append(cmds, waitForChange(a.changes))
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = string(msg)
		return a, nil

	case toggleDoneMsg:
		a.status = toggleStatus(msg)
		return a, nil

	case applyDoneMsg:
		if msg.err != nil {
			a.status = "apply failed: " + describeErr(msg.err)
		} else {
			a.status = fmt.Sprintf("applied to job #%d", msg.jobID)
		}
		return a, nil

	case tea.KeyMsg:
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				return a, openCmd(a.deps.WebURL + helpItems[a.helpCursor].path)
			}
			return a, nil
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h", "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				return a.switchTo(viewJobs)
			case "2":
				return a.switchTo(viewSaved)
			case "3":
				return a.switchTo(viewApplied)
			case "4":
				return a.switchTo(viewTalent)
			case "5":
				return a.switchTo(viewYou)
			case "6":
				if a.deps.identity().IsAdmin() {
					return a.switchTo(viewAdmin)
				}
				a.status = "admin access required"
				return a, nil
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewJobs:
		a.jobs, cmd = a.jobs.Update(msg)
	case viewSaved:
		a.saved, cmd = a.saved.Update(msg)
	case viewApplied:
		a.applied, cmd = a.applied.Update(msg)
	case viewTalent:
		a.talent, cmd = a.talent.Update(msg)
	case viewYou:
		a.you, cmd = a.you.Update(msg)
	case viewAdmin:
		a.admin, cmd = a.admin.Update(msg)
	}
	return a, cmd
}

// switchTo changes tab, loading the target on first visit.
func (a App) switchTo(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	a.status = ""
	switch v {
	case viewSaved:
		a.saved.sync()
	case viewApplied:
		return a, a.applied.sync()
	case viewTalent:
		if !a.talent.loaded {
			return a, a.talent.Init()
		}
	case viewYou:
		return a, a.you.Init()
	case viewAdmin:
		if !a.admin.loaded {
			return a, a.admin.Init()
		}
	}
	return a, nil
}

func toggleStatus(msg toggleDoneMsg) string {
	switch {
	case msg.state == interaction.TxnDiscarded:
		return ""
	case msg.err != nil && msg.removed:
		return "could not unsave: " + describeErr(msg.err)
	case msg.err != nil:
		return "could not save: " + describeErr(msg.err)
	case msg.removed:
		return fmt.Sprintf("removed job #%d from saved", msg.jobID)
	default:
		return fmt.Sprintf("saved job #%d", msg.jobID)
	}
}

func (a App) isEditing() bool {
	switch a.view {
	case viewJobs:
		return a.jobs.editing
	case viewTalent:
		return a.talent.editing
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)

	statsLine := ""
	if id := a.deps.identity(); id != nil {
		parts := []string{id.Email}
		if a.deps.Saved != nil {
			parts = append(parts, fmt.Sprintf("%d saved", a.deps.Saved.Snapshot().Len()))
		}
		if a.deps.Applied != nil {
			parts = append(parts, fmt.Sprintf("%d applied", a.deps.Applied.Snapshot().Len()))
		}
		if id.IsAdmin() {
			parts = append(parts, featuredStyle.Render("admin"))
		}
		statsLine = metaStyle.Render(strings.Join(parts, " · "))
	} else {
		statsLine = metaStyle.Render("not signed in · findy login")
	}

	header := center(logo, a.width) + "\n" + center(statsLine, a.width)

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Jobs", viewJobs},
		{"2", "Saved", viewSaved},
		{"3", "Applied", viewApplied},
		{"4", "Talent", viewTalent},
		{"5", "You", viewYou},
	}
	if a.deps.identity().IsAdmin() {
		tabs = append(tabs, tabEntry{"6", "Admin", viewAdmin})
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, keys string
	switch a.view {
	case viewJobs:
		body, keys = a.jobs.View(), a.jobs.helpKeys()
	case viewSaved:
		body, keys = a.saved.View(), a.saved.helpKeys()
	case viewApplied:
		body, keys = a.applied.View(), a.applied.helpKeys()
	case viewTalent:
		body, keys = a.talent.View(), a.talent.helpKeys()
	case viewYou:
		body, keys = a.you.View(), a.you.helpKeys()
	case viewAdmin:
		body, keys = a.admin.View(), a.admin.helpKeys()
	}
	help := " " + helpEntry("1-"+fmt.Sprint(len(tabs)), "tabs") + "  " + keys + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	if a.isEditing() {
		help = " " + keys
	}

	if a.helpOpen {
		body = helpView(a.helpCursor, a.deps.WebURL)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	status := ""
	if a.status != "" {
		status = " " + dimStyle.Render(a.status)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}

func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
