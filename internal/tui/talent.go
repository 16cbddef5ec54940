package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/domain"
)

// candidatesLoadedMsg carries the result of ListCandidates.
type candidatesLoadedMsg struct {
	candidates []domain.Candidate
	err        error
}

type talentModel struct {
	deps     *Deps
	all      []domain.Candidate
	shown    []domain.Candidate
	criteria listing.CandidateCriteria
	sort     listing.SortOption
	cursor   int
	detail   bool
	editing  bool
	loaded   bool
	loading  bool
	err      error
	width    int
	height   int
}

func newTalentModel(d *Deps) talentModel {
	return talentModel{deps: d}
}

func (m talentModel) Init() tea.Cmd {
	c := m.deps.Client
	return func() tea.Msg {
		if c == nil {
			return candidatesLoadedMsg{err: errNoClient}
		}
		cands, err := c.ListCandidates(context.Background())
		return candidatesLoadedMsg{candidates: cands, err: err}
	}
}

func (m talentModel) Update(msg tea.Msg) (talentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case candidatesLoadedMsg:
		m.loaded = true
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.all = msg.candidates
		}
		m.apply()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// apply filters then sorts the loaded candidates.
func (m *talentModel) apply() {
	m.shown = listing.SortCandidates(listing.FilterCandidates(m.all, m.criteria), m.sort)
	if m.cursor >= len(m.shown) {
		m.cursor = max(len(m.shown)-1, 0)
	}
}

func (m talentModel) handleKey(msg tea.KeyMsg) (talentModel, tea.Cmd) {
	key := msg.String()
	if m.editing {
		switch key {
		case "enter", "esc":
			m.editing = false
		default:
			m.criteria.Search = editRune(m.criteria.Search, key)
			m.cursor = 0
			m.apply()
		}
		return m, nil
	}
	if m.detail {
		if key == "esc" || key == "backspace" || key == "enter" {
			m.detail = false
		}
		return m, nil
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.shown)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if len(m.shown) > 0 {
			m.detail = true
		}
	case "/":
		m.editing = true
	case "s":
		m.sort = nextSort(m.sort)
		m.cursor = 0
		m.apply()
	case "e":
		m.criteria.ExperienceLevel = cycle(domain.ExperienceLevels, m.criteria.ExperienceLevel)
		m.cursor = 0
		m.apply()
	case "v":
		m.criteria.AvailableOnly = !m.criteria.AvailableOnly
		m.cursor = 0
		m.apply()
	case "x":
		m.criteria = listing.CandidateCriteria{}
		m.sort = listing.SortNone
		m.apply()
	case "r":
		m.loading = true
		return m, m.Init()
	}
	return m, nil
}

func nextSort(cur listing.SortOption) listing.SortOption {
	opts := make([]string, len(listing.SortOptions))
	for i, o := range listing.SortOptions {
		opts[i] = string(o)
	}
	return listing.SortOption(cycle(opts, string(cur)))
}

func (m talentModel) View() string {
	if m.detail && m.cursor < len(m.shown) {
		return renderCandidate(m.shown[m.cursor])
	}

	var b strings.Builder
	b.WriteString("\n  " + renderInput("/", m.criteria.Search, "search name, title, skills", m.editing))
	var chips []string
	if m.sort != listing.SortNone {
		chips = append(chips, accentStyle.Render("sort: "+string(m.sort)))
	}
	if m.criteria.ExperienceLevel != "" {
		chips = append(chips, metaStyle.Render(m.criteria.ExperienceLevel))
	}
	if m.criteria.AvailableOnly {
		chips = append(chips, appliedStyle.Render("available"))
	}
	if len(chips) > 0 {
		b.WriteString("  " + strings.Join(chips, "  "))
	}
	b.WriteString("\n\n")

	switch {
	case !m.loaded || m.loading:
		b.WriteString(dimStyle.Render("  loading talent..."))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("  error: " + describeErr(m.err)))
		return b.String()
	case len(m.shown) == 0:
		b.WriteString(dimStyle.Render("  no candidates match"))
		return b.String()
	}

	start, end := window(m.cursor, len(m.shown), m.height-4)
	for i := start; i < end; i++ {
		c := m.shown[i]
		prefix := "  "
		name := normalStyle.Render(truncStr(c.Name, 22))
		if i == m.cursor {
			prefix = accentStyle.Render("▸") + " "
			name = selectedStyle.Render(truncStr(c.Name, 22))
		}
		avail := " "
		if c.Available {
			avail = appliedStyle.Render("●")
		}
		fmt.Fprintf(&b, "%s%s %s  %s  %s  %s  %s\n", prefix, avail, name,
			dimStyle.Render(truncStr(c.Title, 24)),
			metaStyle.Render(truncStr(c.Location, 16)),
			accentStyle.Render(c.Rate),
			ratingStyle(c.Rating).Render(fmt.Sprintf("★ %.1f", c.Rating)))
	}
	return b.String()
}

func renderCandidate(c domain.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", selectedStyle.Render(c.Name))
	fmt.Fprintf(&b, "  %s  %s\n", normalStyle.Render(c.Title), dimStyle.Render(c.Location))
	var meta []string
	if c.ExperienceLevel != "" {
		meta = append(meta, c.ExperienceLevel)
	}
	if c.Experience != "" {
		meta = append(meta, c.Experience)
	}
	if c.Rate != "" {
		meta = append(meta, c.Rate)
	}
	meta = append(meta, fmt.Sprintf("★ %.1f", c.Rating))
	fmt.Fprintf(&b, "  %s\n", metaStyle.Render(strings.Join(meta, " · ")))
	if c.Available {
		fmt.Fprintf(&b, "  %s\n", appliedStyle.Render("available for work"))
	}
	if len(c.Skills) > 0 {
		fmt.Fprintf(&b, "\n  %s\n  %s\n", sectionHeaderStyle.Render("Skills"), normalStyle.Render(strings.Join(c.Skills, " · ")))
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "\n  %s\n  %s\n", sectionHeaderStyle.Render("About"), normalStyle.Render(oneLine(c.Description)))
	}
	return b.String()
}

func (m talentModel) helpKeys() string {
	if m.editing {
		return helpEntry("type", "search") + "  " + helpEntry("enter", "done")
	}
	if m.detail {
		return helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("s", "sort") + "  " + helpEntry("e", "level") + "  " + helpEntry("v", "available") + "  " + helpEntry("x", "clear")
}
