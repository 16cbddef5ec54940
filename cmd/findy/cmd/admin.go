package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/findyjobs/findy/pkg/domain"
)

var (
	adminUsers bool
	adminJobs  bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Show the admin dashboard",
	Long: `Show dashboard totals, and optionally every user and job.
Requires an admin session: findy login --admin.`,
	Args: cobra.NoArgs,
	RunE: runAdmin,
}

func init() {
	adminCmd.Flags().BoolVar(&adminUsers, "users", false, "list all users")
	adminCmd.Flags().BoolVar(&adminJobs, "jobs", false, "list all jobs")
	adminCmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	rootCmd.AddCommand(adminCmd)
}

type adminReport struct {
	Stats *domain.DashboardStats `json:"stats"`
	Users []domain.User          `json:"users,omitempty"`
	Jobs  []domain.Job           `json:"jobs,omitempty"`
}

func runAdmin(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()
	id, err := e.identity()
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		return errors.New("admin access required: findy login --admin")
	}

	var r adminReport
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() (err error) {
		r.Stats, err = e.client.AdminDashboard(ctx)
		return err
	})
	if adminUsers {
		g.Go(func() (err error) {
			r.Users, err = e.client.AdminUsers(ctx)
			return err
		})
	}
	if adminJobs {
		g.Go(func() (err error) {
			r.Jobs, err = e.client.AdminJobs(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, r)
	}
	s := r.Stats
	renderTable(out, []string{"USERS", "NEW THIS MONTH", "JOBS", "ACTIVE", "FEATURED", "APPLICATIONS"}, [][]string{{
		strconv.Itoa(s.TotalUsers), strconv.Itoa(s.NewUsersThisMonth), strconv.Itoa(s.TotalJobs),
		strconv.Itoa(s.ActiveJobs), strconv.Itoa(s.FeaturedJobs), strconv.Itoa(s.JobApplications),
	}})
	if adminUsers {
		rows := make([][]string, 0, len(r.Users))
		for _, u := range r.Users {
			rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.FullName(), u.Email, u.Role, u.CreatedAt})
		}
		fmt.Fprintln(out)
		renderTable(out, []string{"ID", "NAME", "EMAIL", "ROLE", "JOINED"}, rows)
	}
	if adminJobs {
		rows := make([][]string, 0, len(r.Jobs))
		for _, j := range r.Jobs {
			rows = append(rows, []string{strconv.FormatInt(j.ID, 10), j.Title, j.Company, j.Type, j.Posting()})
		}
		fmt.Fprintln(out)
		renderTable(out, []string{"ID", "TITLE", "COMPANY", "TYPE", "POSTED"}, rows)
	}
	return nil
}
