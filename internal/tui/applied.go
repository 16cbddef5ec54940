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

// appliedJobsMsg carries job records fetched for applied ids.
type appliedJobsMsg struct {
	jobs []domain.Job
	err  error
}

// appliedModel lists the applied collection. The store only tracks ids, so
// records are fetched here on demand and kept for the session.
type appliedModel struct {
	deps     *Deps
	state    interaction.State
	ids      []int64
	jobs     map[int64]domain.Job
	fetching bool
	err      error
	cursor   int
	width    int
	height   int
}

func newAppliedModel(d *Deps) appliedModel {
	return appliedModel{deps: d, jobs: make(map[int64]domain.Job)}
}

// sync re-reads the store and returns a fetch for ids with no record yet.
func (m *appliedModel) sync() tea.Cmd {
	if m.deps.Applied == nil {
		m.state, m.ids = interaction.StateEmpty, nil
		return nil
	}
	sn := m.deps.Applied.Snapshot()
	m.state, m.ids = sn.State, sn.Members
	if m.cursor >= len(m.ids) {
		m.cursor = max(len(m.ids)-1, 0)
	}

	var missing []int64
	for _, id := range m.ids {
		if _, ok := m.jobs[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 || m.fetching || m.deps.Client == nil {
		return nil
	}
	m.fetching = true
	c := m.deps.Client
	return func() tea.Msg {
		jobs, err := c.JobsByIDs(context.Background(), missing)
		return appliedJobsMsg{jobs: jobs, err: err}
	}
}

func (m appliedModel) Update(msg tea.Msg) (appliedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case storeChangedMsg:
		return m, m.sync()
	case appliedJobsMsg:
		m.fetching = false
		m.err = msg.err
		for _, j := range msg.jobs {
			m.jobs[j.ID] = j
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appliedModel) job(id int64) domain.Job {
	if j, ok := m.jobs[id]; ok {
		return j
	}
	return domain.Job{ID: id, Title: fmt.Sprintf("job #%d", id)}
}

func (m appliedModel) handleKey(msg tea.KeyMsg) (appliedModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.ids)-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if m.cursor >= len(m.ids) {
		return m, nil
	}
	j := m.job(m.ids[m.cursor])
	switch msg.String() {
	case "w":
		if m.deps.Applied != nil && m.deps.Applied.Withdraw(j.ID) {
			return m, flash(fmt.Sprintf("hid %s from this list; the application stays on the server", j.Title))
		}
	case "c":
		return m, copyCmd(jobSummary(j, m.deps.WebURL))
	case "o":
		return m, openCmd(jobURL(m.deps.WebURL, j.ID))
	}
	return m, nil
}

func (m appliedModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.deps.Applied == nil || m.state == interaction.StateEmpty:
		b.WriteString(dimStyle.Render("  sign in to see your applications: findy login"))
		return b.String()
	case m.state == interaction.StateLoading:
		b.WriteString(dimStyle.Render("  loading applications..."))
		return b.String()
	case len(m.ids) == 0:
		b.WriteString(dimStyle.Render("  no applications yet. press a on a job to apply"))
		return b.String()
	}

	fmt.Fprintf(&b, "  %s\n", metaStyle.Render(fmt.Sprintf("%d applied", len(m.ids))))
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render("could not load job details: "+describeErr(m.err)))
	}
	start, end := window(m.cursor, len(m.ids), m.height-4)
	for i := start; i < end; i++ {
		row := listing.Row{Job: m.job(m.ids[i]), Applied: true}
		row.Saved = m.deps.Saved != nil && m.deps.Saved.Contains(row.ID)
		b.WriteString(renderJobRow(row, i == m.cursor, false, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m appliedModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("w", "withdraw") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "open")
}
