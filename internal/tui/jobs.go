package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

var errNoClient = errors.New("no API client configured")

// jobsLoadedMsg carries the result of ListJobs.
type jobsLoadedMsg struct {
	jobs []domain.Job
	err  error
}

type jobsModel struct {
	deps     *Deps
	all      []domain.Job
	rows     []listing.Row
	criteria listing.JobCriteria
	cursor   int
	detail   bool
	editing  bool
	err      error
	loading  bool
	width    int
	height   int
}

func newJobsModel(d *Deps) jobsModel {
	return jobsModel{deps: d, loading: true}
}

func (m jobsModel) Init() tea.Cmd {
	return m.load()
}

func (m jobsModel) load() tea.Cmd {
	c := m.deps.Client
	return func() tea.Msg {
		if c == nil {
			return jobsLoadedMsg{err: errNoClient}
		}
		jobs, err := c.ListJobs(context.Background(), client.JobQuery{})
		return jobsLoadedMsg{jobs: jobs, err: err}
	}
}

func (m jobsModel) Update(msg tea.Msg) (jobsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case jobsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.all = msg.jobs
		}
		m.refilter()
		return m, nil

	case storeChangedMsg:
		m.refilter()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refilter recomputes the visible rows from the loaded jobs, the criteria
// and the current saved/applied sets.
func (m *jobsModel) refilter() {
	m.rows = listing.Annotate(
		listing.FilterJobs(m.all, m.criteria),
		membership(m.deps.Saved),
		membership(m.deps.Applied),
	)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	if len(m.rows) == 0 {
		m.detail = false
	}
}

func (m jobsModel) current() (listing.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return listing.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m jobsModel) handleKey(msg tea.KeyMsg) (jobsModel, tea.Cmd) {
	key := msg.String()

	if m.editing {
		switch key {
		case "enter", "esc":
			m.editing = false
		default:
			m.criteria.Search = editRune(m.criteria.Search, key)
			m.cursor = 0
			m.refilter()
		}
		return m, nil
	}

	if m.detail {
		switch key {
		case "esc", "backspace":
			m.detail = false
			return m, nil
		}
		return m.handleAction(key)
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = max(len(m.rows)-1, 0)
	case "enter":
		if len(m.rows) > 0 {
			m.detail = true
		}
	case "/":
		m.editing = true
	case "t":
		m.criteria.Type = cycle(domain.JobTypes, m.criteria.Type)
		m.cursor = 0
		m.refilter()
	case "e":
		m.criteria.ExperienceLevel = cycle(domain.ExperienceLevels, m.criteria.ExperienceLevel)
		m.cursor = 0
		m.refilter()
	case "$":
		m.criteria.Salary = cycle(listing.SalaryBuckets, m.criteria.Salary)
		m.cursor = 0
		m.refilter()
	case "x":
		m.criteria = listing.JobCriteria{}
		m.cursor = 0
		m.refilter()
	case "r":
		m.loading = true
		return m, m.load()
	default:
		return m.handleAction(key)
	}
	return m, nil
}

// handleAction runs the row actions shared by the list and the detail page.
func (m jobsModel) handleAction(key string) (jobsModel, tea.Cmd) {
	row, ok := m.current()
	if !ok {
		return m, nil
	}
	switch key {
	case "s":
		cmd, err := toggleSave(m.deps.Saved, row.Job)
		if err != nil {
			return m, flash(describeErr(err))
		}
		m.refilter()
		return m, cmd
	case "a":
		if row.Applied {
			return m, flash("already applied")
		}
		return m, tea.Batch(flash(fmt.Sprintf("applying to %s...", row.Title)), applyCmd(m.deps.Applied, row.ID))
	case "c":
		return m, copyCmd(jobSummary(row.Job, m.deps.WebURL))
	case "o":
		return m, openCmd(jobURL(m.deps.WebURL, row.ID))
	}
	return m, nil
}

func flash(s string) tea.Cmd {
	return func() tea.Msg { return statusMsg(s) }
}

func (m jobsModel) View() string {
	if m.detail {
		if row, ok := m.current(); ok {
			return renderJobDetail(row.Job, row.Saved, row.Applied)
		}
	}

	var b strings.Builder
	b.WriteString("\n  " + renderInput("/", m.criteria.Search, "search title, company, description", m.editing))
	if chips := m.filterChips(); chips != "" {
		b.WriteString("  " + chips)
	}
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(dimStyle.Render("  loading jobs..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("  error: " + describeErr(m.err)))
		return b.String()
	}
	if len(m.rows) == 0 {
		if m.criteria.IsZero() {
			b.WriteString(dimStyle.Render("  no jobs posted yet"))
		} else {
			b.WriteString(dimStyle.Render("  no jobs match these filters (x to clear)"))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "  %s\n", metaStyle.Render(fmt.Sprintf("%d of %d jobs", len(m.rows), len(m.all))))
	start, end := window(m.cursor, len(m.rows), m.height-5)
	for i := start; i < end; i++ {
		b.WriteString(renderJobRow(m.rows[i], i == m.cursor, m.pending(m.rows[i].ID), m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m jobsModel) pending(id int64) bool {
	return m.deps.Saved != nil && m.deps.Saved.Pending(id)
}

func (m jobsModel) filterChips() string {
	var parts []string
	if m.criteria.Type != "" {
		parts = append(parts, TypeStyle(m.criteria.Type).Render(m.criteria.Type))
	}
	if m.criteria.ExperienceLevel != "" {
		parts = append(parts, metaStyle.Render(m.criteria.ExperienceLevel))
	}
	if m.criteria.Salary != "" {
		parts = append(parts, accentStyle.Render(m.criteria.Salary))
	}
	return strings.Join(parts, "  ")
}

// window returns the [start, end) slice of n rows to draw so that cursor
// stays visible in height lines.
func window(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := max(cursor-height+1, 0)
	return start, min(start+height, n)
}

func renderJobRow(r listing.Row, selected, pending bool, width int) string {
	prefix := "  "
	title := normalStyle.Render(truncStr(r.Title, 36))
	if selected {
		prefix = accentStyle.Render("▸") + " "
		title = selectedStyle.Render(truncStr(r.Title, 36))
	}

	marks := "  "
	switch {
	case pending:
		marks = pendingStyle.Render("… ")
	case r.Saved:
		marks = savedStyle.Render("★ ")
	}
	if r.Applied {
		marks += appliedStyle.Render("✓")
	} else {
		marks += " "
	}

	line := fmt.Sprintf("%s%s %s  %s  %s", prefix, marks, title,
		dimStyle.Render(truncStr(r.Company, 20)),
		metaStyle.Render(truncStr(r.Location, 18)))
	if r.Type != "" {
		line += "  " + TypeStyle(r.Type).Render(r.Type)
	}
	if r.Salary != "" && width > 100 {
		line += "  " + accentStyle.Render(listing.FormatSalaryLPA(r.Salary))
	}
	if r.Featured {
		line += " " + featuredStyle.Render("◆")
	}
	if selected {
		return selectedRowBg.Render(line)
	}
	return line
}

func (m jobsModel) helpKeys() string {
	if m.editing {
		return helpEntry("type", "search") + "  " + helpEntry("enter", "done")
	}
	if m.detail {
		return helpEntry("s", "save") + "  " + helpEntry("a", "apply") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "open") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("t", "type") + "  " + helpEntry("e", "level") + "  " + helpEntry("$", "salary") + "  " + helpEntry("x", "clear") + "  " + helpEntry("s", "save") + "  " + helpEntry("a", "apply")
}
