package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/domain"
)

// savedModel lists the saved collection straight from its store.
type savedModel struct {
	deps   *Deps
	state  interaction.State
	rows   []listing.Row
	cursor int
	detail bool
	width  int
	height int
}

func newSavedModel(d *Deps) savedModel {
	m := savedModel{deps: d}
	m.sync()
	return m
}

// sync rebuilds rows from the store snapshot. Members whose record has not
// been fetched yet show as a placeholder.
func (m *savedModel) sync() {
	if m.deps.Saved == nil {
		m.state, m.rows = interaction.StateEmpty, nil
		return
	}
	sn := m.deps.Saved.Snapshot()
	m.state = sn.State

	details := make(map[int64]domain.Job, len(sn.Details))
	for _, j := range sn.Details {
		details[j.ID] = j
	}
	jobs := make([]domain.Job, 0, len(sn.Members))
	for _, id := range sn.Members {
		j, ok := details[id]
		if !ok {
			j = domain.Job{ID: id, Title: fmt.Sprintf("job #%d", id)}
		}
		jobs = append(jobs, j)
	}
	m.rows = listing.Annotate(jobs, sn, membership(m.deps.Applied))
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	if len(m.rows) == 0 {
		m.detail = false
	}
}

func (m savedModel) Update(msg tea.Msg) (savedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case storeChangedMsg:
		m.sync()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m savedModel) handleKey(msg tea.KeyMsg) (savedModel, tea.Cmd) {
	key := msg.String()
	if m.detail && (key == "esc" || key == "backspace") {
		m.detail = false
		return m, nil
	}
	switch key {
	case "j", "down":
		if !m.detail && m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if !m.detail && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "enter":
		if len(m.rows) > 0 {
			m.detail = true
		}
		return m, nil
	case "r":
		if m.deps.Saved == nil {
			return m, nil
		}
		s := m.deps.Saved
		return m, func() tea.Msg {
			if err := s.Refresh(context.Background()); err != nil {
				return statusMsg("refresh failed: " + describeErr(err))
			}
			return statusMsg("saved jobs refreshed")
		}
	}

	if m.cursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.cursor]
	switch key {
	case "s", "d":
		cmd, err := toggleSave(m.deps.Saved, row.Job)
		if err != nil {
			return m, flash(describeErr(err))
		}
		m.sync()
		return m, cmd
	case "a":
		if row.Applied {
			return m, flash("already applied")
		}
		return m, applyCmd(m.deps.Applied, row.ID)
	case "c":
		return m, copyCmd(jobSummary(row.Job, m.deps.WebURL))
	case "o":
		return m, openCmd(jobURL(m.deps.WebURL, row.ID))
	}
	return m, nil
}

func (m savedModel) View() string {
	if m.detail && m.cursor < len(m.rows) {
		row := m.rows[m.cursor]
		return renderJobDetail(row.Job, row.Saved, row.Applied)
	}

	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.deps.Saved == nil || m.state == interaction.StateEmpty:
		b.WriteString(dimStyle.Render("  sign in to see your saved jobs: findy login"))
		return b.String()
	case m.state == interaction.StateLoading:
		b.WriteString(dimStyle.Render("  loading saved jobs..."))
		return b.String()
	case len(m.rows) == 0:
		b.WriteString(dimStyle.Render("  nothing saved yet. press s on a job to save it"))
		return b.String()
	}

	fmt.Fprintf(&b, "  %s\n", metaStyle.Render(fmt.Sprintf("%d saved", len(m.rows))))
	start, end := window(m.cursor, len(m.rows), m.height-3)
	for i := start; i < end; i++ {
		pending := m.deps.Saved.Pending(m.rows[i].ID)
		b.WriteString(renderJobRow(m.rows[i], i == m.cursor, pending, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m savedModel) helpKeys() string {
	if m.detail {
		return helpEntry("s", "unsave") + "  " + helpEntry("a", "apply") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "open") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "view") + "  " + helpEntry("s", "unsave") + "  " + helpEntry("a", "apply") + "  " + helpEntry("r", "refresh")
}
