package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/findyjobs/findy/pkg/domain"
)

// adminLoadedMsg carries the dashboard, users and jobs fetched together.
type adminLoadedMsg struct {
	stats *domain.DashboardStats
	users []domain.User
	jobs  []domain.Job
	err   error
}

type adminSection int

const (
	sectionUsers adminSection = iota
	sectionJobs
)

type adminModel struct {
	deps    *Deps
	stats   *domain.DashboardStats
	users   []domain.User
	jobs    []domain.Job
	section adminSection
	cursor  int
	loaded  bool
	err     error
	width   int
	height  int
}

func newAdminModel(d *Deps) adminModel {
	return adminModel{deps: d}
}

func (m adminModel) Init() tea.Cmd {
	if !m.deps.identity().IsAdmin() || m.deps.Client == nil {
		return nil
	}
	c := m.deps.Client
	return func() tea.Msg {
		var msg adminLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() (err error) {
			msg.stats, err = c.AdminDashboard(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.users, err = c.AdminUsers(ctx)
			return err
		})
		g.Go(func() (err error) {
			msg.jobs, err = c.AdminJobs(ctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case adminLoadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.stats, m.users, m.jobs = msg.stats, msg.users, msg.jobs
		}
		m.cursor = 0
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.section == sectionUsers {
				m.section = sectionJobs
			} else {
				m.section = sectionUsers
			}
			m.cursor = 0
		case "j", "down":
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m, m.Init()
		case "o":
			if m.section == sectionJobs && m.cursor < len(m.jobs) {
				return m, openCmd(jobURL(m.deps.WebURL, m.jobs[m.cursor].ID))
			}
		}
	}
	return m, nil
}

func (m adminModel) rowCount() int {
	if m.section == sectionJobs {
		return len(m.jobs)
	}
	return len(m.users)
}

func (m adminModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case !m.deps.identity().IsAdmin():
		b.WriteString(dimStyle.Render("  admin access required: findy login --admin"))
		return b.String()
	case !m.loaded:
		b.WriteString(dimStyle.Render("  loading dashboard..."))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("  error: " + describeErr(m.err)))
		return b.String()
	}

	if s := m.stats; s != nil {
		stat := func(label string, n int) string {
			return selectedStyle.Render(fmt.Sprint(n)) + " " + metaStyle.Render(label)
		}
		fmt.Fprintf(&b, "  %s   %s   %s\n", stat("users", s.TotalUsers), stat("new this month", s.NewUsersThisMonth), stat("applications", s.JobApplications))
		fmt.Fprintf(&b, "  %s   %s   %s\n\n", stat("jobs", s.TotalJobs), stat("active", s.ActiveJobs), stat("featured", s.FeaturedJobs))
	}

	usersTab, jobsTab := accentStyle.Render("Users"), dimStyle.Render("Jobs")
	if m.section == sectionJobs {
		usersTab, jobsTab = dimStyle.Render("Users"), accentStyle.Render("Jobs")
	}
	fmt.Fprintf(&b, "  %s  %s\n", usersTab, jobsTab)

	start, end := window(m.cursor, m.rowCount(), m.height-6)
	for i := start; i < end; i++ {
		prefix := "  "
		if i == m.cursor {
			prefix = accentStyle.Render("▸") + " "
		}
		if m.section == sectionJobs {
			j := m.jobs[i]
			fmt.Fprintf(&b, "%s%s  %s  %s\n", prefix, normalStyle.Render(truncStr(j.Title, 32)), dimStyle.Render(truncStr(j.Company, 20)), TypeStyle(j.Type).Render(j.Type))
			continue
		}
		u := m.users[i]
		fmt.Fprintf(&b, "%s%s  %s  %s\n", prefix, normalStyle.Render(truncStr(u.FullName(), 24)), dimStyle.Render(truncStr(u.Email, 28)), metaStyle.Render(u.Role))
	}
	return b.String()
}

func (m adminModel) helpKeys() string {
	return helpEntry("tab", "users/jobs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("o", "open job") + "  " + helpEntry("r", "reload")
}
