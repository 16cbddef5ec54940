package cmd

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/listing"
	"github.com/findyjobs/findy/pkg/domain"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved jobs",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, stores, err := openStores(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		defer stores.Close()

		sn := stores.Saved.Snapshot()
		jobs := slices.Clone(sn.Details)
		known := make(map[int64]bool, len(jobs))
		for _, j := range jobs {
			known[j.ID] = true
		}
		for _, id := range sn.Members {
			if !known[id] {
				jobs = append(jobs, domain.Job{ID: id, Title: fmt.Sprintf("job #%d", id)})
			}
		}
		slices.SortFunc(jobs, func(a, b domain.Job) int { return cmp.Compare(a.ID, b.ID) })
		return printRows(cmd, listing.Annotate(jobs, sn, stores.Applied.Snapshot()), "saved")
	},
}

var savedToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Save a job, or unsave it if already saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		e, stores, err := openStores(cmd, true)
		if err != nil {
			return err
		}
		defer e.close()
		defer stores.Close()

		txn, err := stores.Saved.Toggle(cmd.Context(), id)
		if err != nil && txn == nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch txn.State() {
		case interaction.TxnConfirmed:
			if txn.WasMember {
				fmt.Fprintf(out, "Removed job #%d from saved.\n", id)
			} else {
				fmt.Fprintf(out, "Saved job #%d.\n", id)
			}
		case interaction.TxnRolledBack:
			return fmt.Errorf("could not update job #%d: %w", id, txn.Err())
		default:
			return fmt.Errorf("job #%d: change %s", id, txn.State())
		}
		return nil
	},
}

var appliedCmd = &cobra.Command{
	Use:   "applied",
	Short: "Manage job applications",
}

var appliedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs you applied to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, stores, err := openStores(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		defer stores.Close()

		sn := stores.Applied.Snapshot()
		var jobs []domain.Job
		if sn.Len() > 0 {
			fetched, err := e.client.JobsByIDs(cmd.Context(), sn.Members)
			if err != nil {
				e.logger.Warn("could not load applied job details", "error", err)
			}
			byID := make(map[int64]domain.Job, len(fetched))
			for _, j := range fetched {
				byID[j.ID] = j
			}
			for _, id := range sn.Members {
				j, ok := byID[id]
				if !ok {
					j = domain.Job{ID: id, Title: fmt.Sprintf("job #%d", id)}
				}
				jobs = append(jobs, j)
			}
		}
		return printRows(cmd, listing.Annotate(jobs, stores.Saved.Snapshot(), sn), "applied")
	},
}

var appliedApplyCmd = &cobra.Command{
	Use:   "apply ID",
	Short: "Apply to a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		e, stores, err := openStores(cmd, true)
		if err != nil {
			return err
		}
		defer e.close()
		defer stores.Close()

		if stores.Applied.Contains(id) {
			fmt.Fprintf(cmd.OutOrStdout(), "Already applied to job #%d.\n", id)
			return nil
		}
		if err := stores.Applied.Apply(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied to job #%d.\n", id)
		return nil
	},
}

func init() {
	savedCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON")
	appliedCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON")
	savedCmd.AddCommand(savedListCmd, savedToggleCmd)
	appliedCmd.AddCommand(appliedListCmd, appliedApplyCmd)
	rootCmd.AddCommand(savedCmd, appliedCmd)
}

// openStores opens the env and both collections, failing when signed out.
// Commands that change a collection pass strict so they never act on a
// membership list that failed to load.
func openStores(cmd *cobra.Command, strict bool) (*env, *interaction.Stores, error) {
	e, err := openEnv(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	stores, err := loadStores(cmd.Context(), e, strict)
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return e, stores, nil
}

func printRows(cmd *cobra.Command, rows []listing.Row, noun string) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "No %s jobs.\n", noun)
		return nil
	}
	renderTable(out, jobHeaders, jobRows(rows))
	fmt.Fprintf(out, "%d %s\n", len(rows), noun)
	return nil
}
