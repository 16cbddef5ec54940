package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/findyjobs/findy/pkg/client"
	"github.com/findyjobs/findy/pkg/domain"
)

var profileEdit domain.User

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update profile fields. Only the flags you pass are changed.

Example:
  findy profile update --job-title "Backend Engineer" --location Pune`,
	Args: cobra.NoArgs,
	RunE: runProfileUpdate,
}

// profileFields maps update flags to the field they set.
var profileFields = []struct {
	flag, usage string
	field       func(*domain.User) *string
}{
	{"first-name", "first name", func(u *domain.User) *string { return &u.FirstName }},
	{"last-name", "last name", func(u *domain.User) *string { return &u.LastName }},
	{"job-title", "job title", func(u *domain.User) *string { return &u.JobTitle }},
	{"location", "location", func(u *domain.User) *string { return &u.Location }},
	{"level", "experience level", func(u *domain.User) *string { return &u.ExperienceLevel }},
	{"phone", "phone number", func(u *domain.User) *string { return &u.Phone }},
	{"bio", "short bio", func(u *domain.User) *string { return &u.Bio }},
}

func init() {
	for _, pf := range profileFields {
		profileUpdateCmd.Flags().StringVar(pf.field(&profileEdit), pf.flag, "", pf.usage)
	}
	profileCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON")
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

// fetchMe loads the profile, ending the session when the API rejects it.
func fetchMe(cmd *cobra.Command, e *env) (*domain.User, error) {
	if _, err := e.identity(); err != nil {
		return nil, err
	}
	me, err := e.client.GetMe(cmd.Context())
	if client.IsStatus(err, http.StatusUnauthorized) {
		if lerr := e.session.Logout(); lerr != nil {
			return nil, lerr
		}
		return nil, errors.New("session expired: run findy login")
	}
	return me, err
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()
	me, err := fetchMe(cmd, e)
	if err != nil {
		return err
	}
	printProfile(cmd, me)
	return nil
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()
	me, err := fetchMe(cmd, e)
	if err != nil {
		return err
	}

	changed := 0
	for _, pf := range profileFields {
		if cmd.Flags().Changed(pf.flag) {
			*pf.field(me) = *pf.field(&profileEdit)
			changed++
		}
	}
	if changed == 0 {
		return errors.New("nothing to update: pass at least one field flag")
	}
	updated, err := e.client.UpdateUser(cmd.Context(), me.ID, *me)
	if err != nil {
		return err
	}
	e.logger.Debug("profile updated", "user_id", me.ID, "fields", changed)
	printProfile(cmd, updated)
	return nil
}

func printProfile(cmd *cobra.Command, u *domain.User) {
	out := cmd.OutOrStdout()
	if jsonOutput {
		_ = writeJSON(out, u)
		return
	}
	fmt.Fprintln(out, u.FullName())
	for _, row := range [][2]string{
		{"email", u.Email},
		{"title", u.JobTitle},
		{"location", u.Location},
		{"level", u.ExperienceLevel},
		{"phone", u.Phone},
		{"bio", u.Bio},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "  %-9s %s\n", row[0]+":", row[1])
		}
	}
}
