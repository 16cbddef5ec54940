package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/findyjobs/findy/internal/browser"
	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

var (
	searchCriteria listing.JobCriteria

	postReq    client.CreateJobRequest
	postSkills string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search, view and post jobs",
}

var jobsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search job listings",
	Long: `Search job listings. Location, type and level are sent to the API and
applied again locally; the salary bucket is matched locally only.

Salary buckets: "0 LPA - 4 LPA", "4 LPA - 8 LPA", "8 LPA - 12 LPA", "12 LPA+".

Examples:
  findy jobs search golang
  findy jobs search --location Bangalore --type Full-time
  findy jobs search --salary "8 LPA - 12 LPA" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobsSearch,
}

var jobsFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		jobs, err := e.client.FeaturedJobs(cmd.Context())
		if err != nil {
			return err
		}
		return printJobList(cmd, e, jobs)
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		j, err := e.client.GetJob(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), j)
		}
		printJob(cmd.OutOrStdout(), *j)
		return nil
	},
}

var jobsOpenCmd = &cobra.Command{
	Use:   "open ID",
	Short: "Open a job in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		target := fmt.Sprintf("%s/jobs/%d", strings.TrimRight(e.cfg.WebURL, "/"), id)
		if err := browser.Open(target); err != nil {
			return fmt.Errorf("open %s: %w", target, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), target)
		return nil
	},
}

var jobsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a job",
	Long: `Post a job listing. Requires a signed-in account.

Example:
  findy jobs post --title "Go Engineer" --company Acme --location Pune \
    --type Full-time --description "Build services" --skills go,postgres`,
	Args: cobra.NoArgs,
	RunE: runJobsPost,
}

func init() {
	f := jobsSearchCmd.Flags()
	f.StringVar(&searchCriteria.Location, "location", "", "location substring")
	f.StringVar(&searchCriteria.Type, "type", "", "job type: "+strings.Join(domain.JobTypes, ", "))
	f.StringVar(&searchCriteria.ExperienceLevel, "level", "", "experience level: "+strings.Join(domain.ExperienceLevels, ", "))
	f.StringVar(&searchCriteria.Salary, "salary", "", "salary bucket or range")

	p := jobsPostCmd.Flags()
	p.StringVar(&postReq.Title, "title", "", "job title")
	p.StringVar(&postReq.Company, "company", "", "company name")
	p.StringVar(&postReq.Location, "location", "", "location")
	p.StringVar(&postReq.Type, "type", "", "job type: "+strings.Join(domain.JobTypes, ", "))
	p.StringVar(&postReq.Salary, "salary", "", "salary, e.g. \"8-12\"")
	p.StringVar(&postReq.Description, "description", "", "description")
	p.StringVar(&postReq.Requirements, "requirements", "", "requirements, one per line")
	p.StringVar(&postReq.Benefits, "benefits", "", "benefits, one per line")
	p.StringVar(&postSkills, "skills", "", "comma-separated skills")
	p.StringVar(&postReq.ExperienceLevel, "level", "", "experience level")
	p.BoolVar(&postReq.Remote, "remote", false, "remote friendly")
	p.BoolVar(&postReq.Urgent, "urgent", false, "mark as urgent")
	p.StringVar(&postReq.ApplicationEmail, "apply-email", "", "email for applications")
	p.StringVar(&postReq.ApplicationDeadline, "deadline", "", "application deadline (YYYY-MM-DD)")
	p.BoolVar(&postReq.AcceptApplications, "accept-applications", true, "accept applications through Findy")

	jobsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON")
	jobsCmd.AddCommand(jobsSearchCmd, jobsFeaturedCmd, jobsShowCmd, jobsOpenCmd, jobsPostCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsSearch(cmd *cobra.Command, args []string) error {
	crit := searchCriteria
	if len(args) == 1 {
		crit.Search = args[0]
	}
	if crit.Type != "" && !domain.ValidJobType(crit.Type) {
		return fmt.Errorf("unknown job type %q (want one of %s)", crit.Type, strings.Join(domain.JobTypes, ", "))
	}

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()

	jobs, err := e.client.ListJobs(cmd.Context(), client.JobQuery{
		Search:          crit.Search,
		Location:        crit.Location,
		Type:            crit.Type,
		ExperienceLevel: crit.ExperienceLevel,
	})
	if err != nil {
		return err
	}
	e.logger.Debug("jobs fetched", "count", len(jobs))
	return printJobList(cmd, e, listing.FilterJobs(jobs, crit))
}

// printJobList prints jobs as a table, marking saved and applied ones when
// signed in.
func printJobList(cmd *cobra.Command, e *env, jobs []domain.Job) error {
	var saved, applied listing.Membership
	if stores, err := loadStores(cmd.Context(), e, false); err == nil {
		defer stores.Close()
		saved, applied = stores.Saved.Snapshot(), stores.Applied.Snapshot()
	} else if !errors.Is(err, errNotSignedIn) {
		e.logger.Warn("could not load saved and applied jobs", "error", err)
	}
	rows := listing.Annotate(jobs, saved, applied)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No jobs found.")
		return nil
	}
	renderTable(out, jobHeaders, jobRows(rows))
	fmt.Fprintf(out, "%d jobs\n", len(rows))
	return nil
}

func runJobsPost(cmd *cobra.Command, _ []string) error {
	req := postReq
	req.Skills = splitList(postSkills)
	if req.Type != "" && !domain.ValidJobType(req.Type) {
		return fmt.Errorf("unknown job type %q (want one of %s)", req.Type, strings.Join(domain.JobTypes, ", "))
	}

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()
	if _, err := e.identity(); err != nil {
		return err
	}

	j, err := e.client.CreateJob(cmd.Context(), req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), j)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted job #%d: %s at %s\n", j.ID, j.Title, j.Company)
	return nil
}
