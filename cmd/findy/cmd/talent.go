package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/domain"
)

var (
	talentCriteria listing.CandidateCriteria
	talentSort     string

	joinProfile domain.Candidate
	joinSkills  string
)

var talentCmd = &cobra.Command{
	Use:   "talent [query]",
	Short: "Browse candidates on the talent board",
	Long: `Browse candidates. Filtering and sorting happen locally.

Sort orders: rating, rate-low, rate-high, experience.

Examples:
  findy talent react --available
  findy talent --level "Senior Level" --sort rate-low`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTalent,
}

var talentJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "List yourself on the talent board",
	Long: `Add a candidate profile to the talent board.

Example:
  findy talent join --name "Ada Lovelace" --title "Backend Engineer" \
    --location Pune --level "Senior Level" --experience "7 years" \
    --rate "$50-70/hr" --skills go,postgres --available`,
	Args: cobra.NoArgs,
	RunE: runTalentJoin,
}

func init() {
	j := talentJoinCmd.Flags()
	j.StringVar(&joinProfile.Name, "name", "", "display name")
	j.StringVar(&joinProfile.Title, "title", "", "headline job title")
	j.StringVar(&joinProfile.Location, "location", "", "location")
	j.StringVar(&joinProfile.ExperienceLevel, "level", "", "experience level")
	j.StringVar(&joinProfile.Experience, "experience", "", "experience, e.g. \"5 years\"")
	j.StringVar(&joinProfile.Rate, "rate", "", "rate, e.g. \"$50-70/hr\"")
	j.StringVar(&joinProfile.Description, "about", "", "short description")
	j.StringVar(&joinSkills, "skills", "", "comma-separated skills")
	j.BoolVar(&joinProfile.Available, "available", false, "available for work")
	_ = talentJoinCmd.MarkFlagRequired("name")
	talentCmd.AddCommand(talentJoinCmd)

	f := talentCmd.Flags()
	f.StringVar(&talentCriteria.Location, "location", "", "location substring")
	f.StringVar(&talentCriteria.ExperienceLevel, "level", "", "experience level: "+strings.Join(domain.ExperienceLevels, ", "))
	f.BoolVar(&talentCriteria.AvailableOnly, "available", false, "only candidates available for work")
	f.StringVar(&talentSort, "sort", "", "sort order: rating, rate-low, rate-high, experience")
	f.BoolVar(&jsonOutput, "json", false, "print JSON")
	rootCmd.AddCommand(talentCmd)
}

func runTalent(cmd *cobra.Command, args []string) error {
	sortBy, ok := listing.ParseSortOption(talentSort)
	if !ok {
		return fmt.Errorf("unknown sort %q", talentSort)
	}
	crit := talentCriteria
	if len(args) == 1 {
		crit.Search = args[0]
	}

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()

	cands, err := e.client.ListCandidates(cmd.Context())
	if err != nil {
		return err
	}
	shown := listing.SortCandidates(listing.FilterCandidates(cands, crit), sortBy)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, shown)
	}
	if len(shown) == 0 {
		fmt.Fprintln(out, "No candidates match.")
		return nil
	}
	rows := make([][]string, 0, len(shown))
	for _, c := range shown {
		avail := ""
		if c.Available {
			avail = "yes"
		}
		rows = append(rows, []string{
			c.Name, c.Title, c.Location, c.ExperienceLevel, c.Rate,
			strconv.FormatFloat(c.Rating, 'f', 1, 64), avail,
		})
	}
	renderTable(out, []string{"NAME", "TITLE", "LOCATION", "LEVEL", "RATE", "RATING", "AVAILABLE"}, rows)
	fmt.Fprintf(out, "%d candidates\n", len(shown))
	return nil
}

func runTalentJoin(cmd *cobra.Command, _ []string) error {
	cand := joinProfile
	cand.Skills = splitList(joinSkills)

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()
	if _, err := e.identity(); err != nil {
		return err
	}
	created, err := e.client.CreateCandidate(cmd.Context(), cand)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listed %s on the talent board (#%d).\n", created.Name, created.ID)
	return nil
}
