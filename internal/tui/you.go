package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

// meLoadedMsg carries the result of GetMe.
type meLoadedMsg struct {
	me  *domain.User
	err error
}

// youModel shows the signed-in profile. A 401 ends the session and asks
// for a fresh login.
type youModel struct {
	deps    *Deps
	me      *domain.User
	err     error
	expired bool
	loading bool
	width   int
	height  int
}

func newYouModel(d *Deps) youModel {
	return youModel{deps: d}
}

func (m youModel) Init() tea.Cmd {
	if m.deps.identity() == nil || m.deps.Client == nil {
		return nil
	}
	c := m.deps.Client
	return func() tea.Msg {
		me, err := c.GetMe(context.Background())
		return meLoadedMsg{me: me, err: err}
	}
}

func (m youModel) Update(msg tea.Msg) (youModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case meLoadedMsg:
		m.loading = false
		if client.IsStatus(msg.err, http.StatusUnauthorized) {
			m.expired = true
			m.me = nil
			if m.deps.Session != nil {
				if err := m.deps.Session.Logout(); err != nil {
					return m, flash("logout failed: " + err.Error())
				}
			}
			return m, flash("session expired: run findy login")
		}
		m.err = msg.err
		if msg.err == nil {
			m.me = msg.me
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.Init()
		case "L":
			if m.deps.Session == nil || m.deps.identity() == nil {
				return m, nil
			}
			if err := m.deps.Session.Logout(); err != nil {
				return m, flash("logout failed: " + err.Error())
			}
			m.me = nil
			return m, flash("signed out")
		case "o":
			return m, openCmd(m.deps.WebURL + "/profile")
		}
	}
	return m, nil
}

func (m youModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	id := m.deps.identity()
	switch {
	case m.expired:
		b.WriteString(errorStyle.Render("  Your session has expired.") + "\n")
		b.WriteString(dimStyle.Render("  Sign in again with: findy login"))
		return b.String()
	case id == nil:
		b.WriteString(dimStyle.Render("  not signed in") + "\n")
		b.WriteString(dimStyle.Render("  findy login      sign in") + "\n")
		b.WriteString(dimStyle.Render("  findy register   create an account"))
		return b.String()
	}

	if m.me != nil {
		fmt.Fprintf(&b, "  %s\n", selectedStyle.Render(m.me.FullName()))
		line := []string{}
		if m.me.JobTitle != "" {
			line = append(line, m.me.JobTitle)
		}
		if m.me.Location != "" {
			line = append(line, m.me.Location)
		}
		if m.me.ExperienceLevel != "" {
			line = append(line, m.me.ExperienceLevel)
		}
		if len(line) > 0 {
			fmt.Fprintf(&b, "  %s\n", normalStyle.Render(strings.Join(line, " · ")))
		}
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(m.me.Email))
		if m.me.Phone != "" {
			fmt.Fprintf(&b, "  %s\n", dimStyle.Render(m.me.Phone))
		}
		if m.me.Bio != "" {
			fmt.Fprintf(&b, "\n  %s\n  %s\n", sectionHeaderStyle.Render("Bio"), normalStyle.Render(oneLine(m.me.Bio)))
		}
	} else {
		fmt.Fprintf(&b, "  %s\n", selectedStyle.Render(id.Email))
		if m.err != nil {
			fmt.Fprintf(&b, "  %s\n", errorStyle.Render("could not load profile: "+describeErr(m.err)))
		} else {
			fmt.Fprintf(&b, "  %s\n", dimStyle.Render("loading profile..."))
		}
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionHeaderStyle.Render("Session"))
	roles := "none"
	if len(id.Roles) > 0 {
		roles = strings.Join(id.Roles, ", ")
	}
	fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("roles  "), normalStyle.Render(roles))
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("expires"), normalStyle.Render(id.ExpiresAt.Local().Format("2006-01-02 15:04")))
	}
	if m.deps.Saved != nil {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("saved  "), savedStyle.Render(fmt.Sprint(m.deps.Saved.Snapshot().Len())))
	}
	if m.deps.Applied != nil {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("applied"), appliedStyle.Render(fmt.Sprint(m.deps.Applied.Snapshot().Len())))
	}
	return b.String()
}

func (m youModel) helpKeys() string {
	return helpEntry("r", "reload") + "  " + helpEntry("o", "edit on web") + "  " + helpEntry("L", "sign out")
}
