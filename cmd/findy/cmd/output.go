package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/domain"
)

// jsonOutput switches list commands to JSON.
var jsonOutput bool

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jobRows(rows []listing.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		flags := ""
		if r.Saved {
			flags += "★"
		}
		if r.Applied {
			flags += "✓"
		}
		out = append(out, []string{
			strconv.FormatInt(r.ID, 10), r.Title, r.Company, r.Location, r.Type, r.Salary, flags,
		})
	}
	return out
}

var jobHeaders = []string{"ID", "TITLE", "COMPANY", "LOCATION", "TYPE", "SALARY", ""}

func printJob(w io.Writer, j domain.Job) {
	fmt.Fprintf(w, "%s\n%s", j.Title, j.Company)
	if j.Location != "" {
		fmt.Fprintf(w, " · %s", j.Location)
	}
	fmt.Fprintln(w)
	meta := []string{}
	for _, s := range []string{j.Type, j.ExperienceLevel, j.Salary, j.Posting()} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, dimStyle.Render(strings.Join(meta, " · ")))
	}
	if len(j.Skills) > 0 {
		fmt.Fprintf(w, "\nSkills: %s\n", strings.Join(j.Skills, ", "))
	}
	for _, sec := range []struct{ title, body string }{
		{"Description", j.Description},
		{"Requirements", j.Requirements},
		{"Benefits", j.Benefits},
	} {
		if strings.TrimSpace(sec.body) != "" {
			fmt.Fprintf(w, "\n%s\n%s\n", sec.title, strings.TrimSpace(sec.body))
		}
	}
	if j.ApplicationDeadline != "" {
		fmt.Fprintf(w, "\nApply by %s\n", j.ApplicationDeadline)
	}
}

// loadStores opens both collections for the signed-in user and waits for
// their first load. A failed fetch leaves a collection empty; with strict
// set the collections are fetched again and any failure is returned.
func loadStores(ctx context.Context, e *env, strict bool) (*interaction.Stores, error) {
	if _, err := e.identity(); err != nil {
		return nil, err
	}
	stores := interaction.Open(e.session, e.client, e.logger, e.metrics)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, s := range []*interaction.Store{stores.Saved, stores.Applied} {
		err := s.WaitReady(ctx)
		if err == nil && strict {
			err = s.Refresh(ctx)
		}
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("load %s jobs: %w", s.Kind(), err)
		}
	}
	return stores, nil
}

func parseJobID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", s)
	}
	return id, nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
