package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/findyjobs/findy/internal/browser"
	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

// statusMsg replaces the flash line under the body.
type statusMsg string

// toggleDoneMsg reports a settled save/unsave transaction.
type toggleDoneMsg struct {
	jobID   int64
	removed bool
	state   interaction.TxnState
	err     error
}

// applyDoneMsg reports the end of an application request.
type applyDoneMsg struct {
	jobID int64
	err   error
}

// formatPosted renders a relative date for a job's posting date, falling back
// to the raw text when it is not an ISO date.
func formatPosted(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return formatTime(t)
		}
	}
	return raw
}

// formatTime renders a relative timestamp.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace.
func oneLine(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// jobSummary is the plain-text block copied to the clipboard.
func jobSummary(j domain.Job, webURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s\n", j.Title, j.Company)
	if j.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", j.Location)
	}
	if j.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", j.Type)
	}
	if j.Salary != "" {
		fmt.Fprintf(&b, "Salary: %s\n", listing.FormatSalaryLPA(j.Salary))
	}
	if len(j.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(j.Skills, ", "))
	}
	b.WriteString(jobURL(webURL, j.ID))
	return b.String()
}

func jobURL(webURL string, id int64) string {
	return fmt.Sprintf("%s/jobs/%d", webURL, id)
}

// renderJobDetail is the full-page view shared by the job lists.
func renderJobDetail(j domain.Job, saved, applied bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", selectedStyle.Render(j.Title))
	fmt.Fprintf(&b, "  %s", normalStyle.Render(j.Company))
	if j.Location != "" {
		fmt.Fprintf(&b, "  %s", dimStyle.Render(j.Location))
	}
	b.WriteString("\n  ")
	b.WriteString(TypeStyle(j.Type).Render(j.Type))
	if j.ExperienceLevel != "" {
		b.WriteString("  " + metaStyle.Render(j.ExperienceLevel))
	}
	if j.Salary != "" {
		b.WriteString("  " + accentStyle.Render(listing.FormatSalaryLPA(j.Salary)))
	}
	if p := formatPosted(j.Posting()); p != "" {
		b.WriteString("  " + metaStyle.Render(p))
	}
	b.WriteString("\n")
	if flags := jobFlags(j, saved, applied); flags != "" {
		b.WriteString("  " + flags + "\n")
	}
	if len(j.Skills) > 0 {
		fmt.Fprintf(&b, "\n  %s\n  %s\n", sectionHeaderStyle.Render("Skills"), normalStyle.Render(strings.Join(j.Skills, " · ")))
	}
	if j.Description != "" {
		fmt.Fprintf(&b, "\n  %s\n  %s\n", sectionHeaderStyle.Render("About the role"), normalStyle.Render(oneLine(j.Description)))
	}
	writeBullets(&b, "Requirements", j.Requirements)
	writeBullets(&b, "Benefits", j.Benefits)
	if j.ApplicationDeadline != "" {
		fmt.Fprintf(&b, "\n  %s %s\n", metaStyle.Render("apply by"), dimStyle.Render(j.ApplicationDeadline))
	}
	return b.String()
}

// writeBullets renders one bullet per non-empty line of text.
func writeBullets(b *strings.Builder, title, text string) {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*"))
		if line != "" {
			items = append(items, line)
		}
	}
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  %s\n", sectionHeaderStyle.Render(title))
	for _, it := range items {
		fmt.Fprintf(b, "  %s %s\n", metaStyle.Render("-"), normalStyle.Render(it))
	}
}

func jobFlags(j domain.Job, saved, applied bool) string {
	var parts []string
	if j.Featured {
		parts = append(parts, featuredStyle.Render("featured"))
	}
	if j.Urgent {
		parts = append(parts, urgentStyle.Render("urgent"))
	}
	if saved {
		parts = append(parts, savedStyle.Render("★ saved"))
	}
	if applied {
		parts = append(parts, appliedStyle.Render("✓ applied"))
	}
	return strings.Join(parts, "  ")
}

// membership adapts a possibly nil store for listing.Annotate.
func membership(s *interaction.Store) listing.Membership {
	if s == nil {
		return nil
	}
	return s.Snapshot()
}

// toggleSave flips the saved flag at once and returns the command that
// settles it with the server.
func toggleSave(s *interaction.Store, job domain.Job) (tea.Cmd, error) {
	if s == nil {
		return nil, interaction.ErrNoIdentity
	}
	txn, err := s.Begin(job.ID, &job)
	if err != nil {
		return nil, err
	}
	return func() tea.Msg {
		err := txn.Commit(context.Background())
		return toggleDoneMsg{jobID: job.ID, removed: txn.WasMember, state: txn.State(), err: err}
	}, nil
}

func applyCmd(s *interaction.Store, jobID int64) tea.Cmd {
	return func() tea.Msg {
		if s == nil {
			return applyDoneMsg{jobID: jobID, err: interaction.ErrNoIdentity}
		}
		return applyDoneMsg{jobID: jobID, err: s.Apply(context.Background(), jobID)}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg("copy failed: " + err.Error())
		}
		return statusMsg("copied to clipboard")
	}
}

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return statusMsg("could not open browser: " + err.Error())
		}
		return statusMsg("opened " + url)
	}
}

// describeErr turns store and client errors into a status line.
func describeErr(err error) string {
	var ve *client.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, interaction.ErrNoIdentity):
		return "sign in first: findy login"
	case errors.Is(err, interaction.ErrNotReady):
		return "still loading, try again in a moment"
	case errors.Is(err, interaction.ErrToggleInFlight):
		return "already updating that job"
	case errors.Is(err, interaction.ErrUnsupported):
		return "not supported by the server"
	case client.IsStatus(err, http.StatusUnauthorized):
		return "session expired: run findy login"
	case errors.As(err, &ve):
		return strings.Join(ve.Problems, "; ")
	default:
		return err.Error()
	}
}
