// Package cmd provides the findy command-line interface.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/findyjobs/findy/internal/config"
	"github.com/findyjobs/findy/internal/interaction"
	"github.com/findyjobs/findy/internal/metrics"
	"github.com/findyjobs/findy/internal/tui"
)

var (
	cfgFile     string
	apiURL      string
	logLevel    string
	showMetrics bool

	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "findy",
	Short: "Findy - job board in your terminal",
	Long: `Findy is a terminal client for the Findy job board.

Run it without arguments to open the interactive board, or use the
subcommands below for scripting.

Quick start:
  1. findy login --email you@example.com
  2. findy jobs search golang --type Full-time
  3. findy saved toggle 42

Configuration:
  Config is loaded from findy.yaml in the current directory or ~/.findy/.
  Environment variables override config values with the FINDY_ prefix.
  Example: FINDY_API_URL=http://localhost:8081`,
	SilenceUsage:       true,
	RunE:               runTUI,
	PersistentPostRunE: dumpMetrics,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./findy.yaml or ~/.findy/findy.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API root URL (overrides api_url)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print API metrics to stderr on exit")
}

func initConfig() {
	v = viper.New()
	config.InitViper(v, cfgFile)
	_ = v.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func runTUI(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.close()

	stores := interaction.Open(e.session, e.client, e.logger, e.metrics)
	defer stores.Close()

	app := tui.NewApp(tui.Deps{
		Client:  e.client,
		Session: e.session,
		Saved:   stores.Saved,
		Applied: stores.Applied,
		WebURL:  e.cfg.WebURL,
	})
	defer app.Close()

	e.logger.Info("starting terminal UI", "api", e.cfg.APIURL)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func dumpMetrics(cmd *cobra.Command, _ []string) error {
	e := envFrom(cmd.Context())
	if !showMetrics || e == nil {
		return nil
	}
	return metrics.Dump(cmd.ErrOrStderr(), e.registry)
}
