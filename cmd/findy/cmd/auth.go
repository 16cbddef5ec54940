package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/client"
)

var (
	loginEmail    string
	loginPassword string
	loginAdmin    bool

	registerReq client.RegisterRequest
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in and store the session token in the token file.

The password is read from standard input when --password is not given.

Examples:
  findy login --email you@example.com
  echo "$PASSWORD" | findy login --email you@example.com
  findy login --admin --email admin@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear your session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		if e.session.Token() == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
			return nil
		}
		if err := e.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	Long: `Show the identity read from the stored token, then confirm it with the
API. A rejected token ends the session.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		if registerReq.Password == "" {
			if registerReq.Password, err = readPassword(cmd); err != nil {
				return err
			}
		}
		u, err := e.client.Register(cmd.Context(), registerReq)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s). Sign in with: findy login --email %s\n", u.FullName(), u.Email, u.Email)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (read from stdin when empty)")
	loginCmd.Flags().BoolVar(&loginAdmin, "admin", false, "sign in through the admin endpoint")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerReq.FirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerReq.LastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&registerReq.Email, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerReq.Password, "password", "", "password, at least 6 characters (read from stdin when empty)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()

	password := loginPassword
	if password == "" {
		if password, err = readPassword(cmd); err != nil {
			return err
		}
	}
	creds := client.Credentials{Email: loginEmail, Password: password}

	var resp *client.LoginResponse
	if loginAdmin {
		resp, err = e.client.AdminLogin(cmd.Context(), creds)
	} else {
		resp, err = e.client.Login(cmd.Context(), creds)
	}
	if err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return errors.New("invalid email or password")
		}
		return err
	}
	if err := e.session.Login(resp.Token); err != nil {
		return err
	}

	id := e.session.CurrentIdentity()
	if id == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed in, but the token could not be read; some features will be unavailable.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s%s\n", id.Email, rolesSuffix(id))
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.close()

	id, err := e.identity()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s%s\n", id.Email, rolesSuffix(id))
	fmt.Fprintf(out, "  subject: %s\n", id.Subject)
	if !id.ExpiresAt.IsZero() {
		state := "valid"
		if id.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(out, "  expires: %s (%s)\n", id.ExpiresAt.Local().Format(time.RFC3339), state)
	}

	me, err := e.client.GetMe(cmd.Context())
	switch {
	case client.IsStatus(err, http.StatusUnauthorized):
		if lerr := e.session.Logout(); lerr != nil {
			return lerr
		}
		return errors.New("session expired: run findy login")
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "  name:    %s\n", me.FullName())
	return nil
}

func rolesSuffix(id *session.Identity) string {
	if len(id.Roles) == 0 {
		return ""
	}
	return " (" + strings.Join(id.Roles, ", ") + ")"
}

// readPassword reads one line from the command's input.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}
