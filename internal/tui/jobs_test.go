package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/findyjobs/findy/internal/interaction"
)

func newTestJobsModel(d *Deps) jobsModel {
	m := newJobsModel(d)
	m.width = 120
	m.height = 30
	m, _ = m.Update(jobsLoadedMsg{jobs: testJobs()})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJobsRendersLoaded(t *testing.T) {
	m := newTestJobsModel(&Deps{})
	view := m.View()
	for _, want := range []string{"Go Backend Engineer", "Frontend Contractor", "Staff SRE", "3 of 3 jobs"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in jobs view, got:\n%s", want, view)
		}
	}
}

func TestJobsLoadingAndError(t *testing.T) {
	m := newJobsModel(&Deps{})
	if !strings.Contains(m.View(), "loading jobs") {
		t.Errorf("expected loading text, got:\n%s", m.View())
	}
	m, _ = m.Update(jobsLoadedMsg{err: errors.New("connection refused")})
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("expected error text, got:\n%s", m.View())
	}
}

func TestJobsTypeFilterCycles(t *testing.T) {
	m := newTestJobsModel(&Deps{})

	m, _ = m.Update(key("t"))
	if m.criteria.Type != "Full-time" {
		t.Fatalf("Type after t = %q, want Full-time", m.criteria.Type)
	}
	if len(m.rows) != 2 {
		t.Errorf("rows = %d, want 2 full-time jobs", len(m.rows))
	}
	if strings.Contains(m.View(), "Frontend Contractor") {
		t.Error("contract job should be filtered out")
	}

	m, _ = m.Update(key("x"))
	if !m.criteria.IsZero() || len(m.rows) != 3 {
		t.Errorf("after x: criteria = %+v, rows = %d", m.criteria, len(m.rows))
	}
}

func TestJobsSalaryFilter(t *testing.T) {
	m := newTestJobsModel(&Deps{})
	m, _ = m.Update(key("$")) // 0-4 LPA
	m, _ = m.Update(key("$")) // 4-8 LPA
	if m.criteria.Salary != "4 LPA - 8 LPA" {
		t.Fatalf("Salary = %q", m.criteria.Salary)
	}
	for _, r := range m.rows {
		if r.ID == 3 {
			t.Error("12 LPA+ job should not match the 4-8 bucket")
		}
	}
}

func TestJobsSearchCapturesKeys(t *testing.T) {
	m := newTestJobsModel(&Deps{})
	m, _ = m.Update(key("/"))
	if !m.editing {
		t.Fatal("expected editing after /")
	}
	for _, r := range "sre" {
		m, _ = m.Update(key(string(r)))
	}
	if m.criteria.Search != "sre" {
		t.Errorf("Search = %q, want sre", m.criteria.Search)
	}
	if len(m.rows) != 1 || m.rows[0].ID != 3 {
		t.Errorf("rows = %+v, want only job 3", m.rows)
	}
	m, _ = m.Update(key("enter"))
	if m.editing {
		t.Error("enter should leave search input")
	}
	if m.criteria.Search != "sre" {
		t.Error("leaving search input should keep the query")
	}
}

func TestJobsNoMatchHint(t *testing.T) {
	m := newTestJobsModel(&Deps{})
	m.criteria.Search = "cobol"
	m.refilter()
	if !strings.Contains(m.View(), "x to clear") {
		t.Errorf("expected clear hint, got:\n%s", m.View())
	}
}

func TestJobsCursorAndDetail(t *testing.T) {
	m := newTestJobsModel(&Deps{})
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", m.cursor)
	}
	m, _ = m.Update(key("enter"))
	if !m.detail {
		t.Fatal("expected detail view after enter")
	}
	if view := m.View(); !strings.Contains(view, "Initech") || !strings.Contains(view, "featured") {
		t.Errorf("detail view missing company or featured flag:\n%s", view)
	}
	m, _ = m.Update(key("esc"))
	if m.detail {
		t.Error("esc should close the detail view")
	}
}

func TestJobsSaveIsOptimistic(t *testing.T) {
	gate := make(chan struct{})
	saved := readyStore(t, interaction.KindSaved, &stubRemote{gate: gate})
	m := newTestJobsModel(&Deps{Saved: saved})

	m, cmd := m.Update(key("s"))
	if cmd == nil {
		t.Fatal("expected commit command")
	}
	if !m.rows[0].Saved {
		t.Error("row should show saved before the server answers")
	}
	if !saved.Pending(1) {
		t.Error("job 1 should be pending")
	}

	close(gate)
	msg, ok := cmd().(toggleDoneMsg)
	if !ok {
		t.Fatalf("cmd() returned %T, want toggleDoneMsg", msg)
	}
	if msg.err != nil || msg.removed || msg.state != interaction.TxnConfirmed {
		t.Errorf("toggleDoneMsg = %+v", msg)
	}
	if !saved.Contains(1) {
		t.Error("job 1 should stay saved after confirm")
	}
}

func TestJobsSaveFailureRollsBack(t *testing.T) {
	saved := readyStore(t, interaction.KindSaved, &stubRemote{err: errors.New("boom")})
	m := newTestJobsModel(&Deps{Saved: saved})

	m, cmd := m.Update(key("s"))
	msg := cmd().(toggleDoneMsg)
	if msg.err == nil || msg.state != interaction.TxnRolledBack {
		t.Errorf("toggleDoneMsg = %+v, want rolled back error", msg)
	}
	m, _ = m.Update(storeChangedMsg{})
	if m.rows[0].Saved {
		t.Error("row should not be saved after rollback")
	}
	if got := toggleStatus(msg); !strings.Contains(got, "could not save") {
		t.Errorf("toggleStatus = %q", got)
	}
}

func TestJobsSaveSignedOut(t *testing.T) {
	m := newTestJobsModel(&Deps{})
	_, cmd := m.Update(key("s"))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	if got := cmd(); got != statusMsg("sign in first: findy login") {
		t.Errorf("status = %v", got)
	}
}

func TestJobsApplyAlreadyApplied(t *testing.T) {
	applied := readyStore(t, interaction.KindApplied, &stubRemote{members: []int64{1}})
	m := newTestJobsModel(&Deps{Applied: applied})
	if !m.rows[0].Applied {
		t.Fatal("job 1 should be annotated as applied")
	}
	_, cmd := m.Update(key("a"))
	if got := cmd(); got != statusMsg("already applied") {
		t.Errorf("status = %v", got)
	}
}

func TestApplyCmdConfirmsThenAppends(t *testing.T) {
	applied := readyStore(t, interaction.KindApplied, &stubRemote{})
	msg := applyCmd(applied, 2)().(applyDoneMsg)
	if msg.err != nil {
		t.Fatalf("apply error: %v", msg.err)
	}
	if !applied.Contains(2) {
		t.Error("job 2 should be applied")
	}
}
