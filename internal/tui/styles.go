package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the FINDY logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "F I N D Y" with a highlight band sweeping left
// to right, blending each letter from deep navy (#1b2a4a) to sky blue
// (#60a5fa) by its distance from the band.
func renderShimmerLogo(frame int) string {
	const (
		text   = "FINDY"
		period = 40 // frames per sweep, including a rest off-screen
		width  = 1.6
	)
	center := float64(frame%period)/float64(period)*(float64(len(text))+2*width) - width

	letters := make([]string, 0, len(text))
	for i, r := range text {
		d := math.Abs(float64(i) - center)
		glow := math.Max(0, 1-d/width)
		glow = 0.2 + 0.8*glow*glow

		c := fmt.Sprintf("#%02X%02X%02X",
			clampByte(27+glow*(96-27)),
			clampByte(42+glow*(165-42)),
			clampByte(74+glow*(250-74)))
		letters = append(letters, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c)).Render(string(r)))
	}
	return strings.Join(letters, "  ")
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3b82f6"))

	savedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15"))

	appliedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	featuredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3b82f6")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	typeColors = map[string]lipgloss.Color{
		"Full-time": lipgloss.Color("#60a0e0"),
		"Part-time": lipgloss.Color("#b080d0"),
		"Contract":  lipgloss.Color("#f0944a"),
		"Remote":    lipgloss.Color("#3ecce4"),
	}
)

// TypeStyle returns a bold style colored for a job type.
func TypeStyle(jobType string) lipgloss.Style {
	if c, ok := typeColors[jobType]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// ratingStyle colors a candidate rating from gold (4.5 and up) to slate.
func ratingStyle(rating float64) lipgloss.Style {
	switch {
	case rating >= 4.5:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15"))
	case rating >= 3.5:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#8891a5"))
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	path  string
}

var helpItems = []helpItem{
	{"Browse jobs", "/jobs"},
	{"Post a job", "/post-job"},
	{"Find talent", "/find-talent"},
	{"Your profile", "/profile"},
}

// helpView renders the interactive help overlay. Links resolve against webURL.
func helpView(cursor int, webURL string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("F I N D Y")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Jobs, saved searches and talent from your terminal.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"findy", "Open the job board (interactive TUI)"},
		{"findy login", "Sign in with email and password"},
		{"findy logout", "Clear your session"},
		{"findy jobs search", "Search and filter jobs"},
		{"findy saved toggle", "Save or unsave a job"},
		{"findy applied apply", "Apply to a job"},
		{"findy config init", "Write a starter config file"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = selStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(webURL+item.path))
	}
	return b.String()
}
