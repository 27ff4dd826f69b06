package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live dashboard",
	Long: `Open the full-screen dashboard for the configured backend.

Keys:
  tab, 1-9    switch tabs
  r           refresh the snapshot
  d           replay the demo workflow
  j/k         move the review cursor
  a / x       approve or reject the highlighted candidate
  q           quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deck, err := resolveProfile(cfg)
	if err != nil {
		return err
	}
	app, err := tui.NewApp(cfg, deck)
	if err != nil {
		return err
	}
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
