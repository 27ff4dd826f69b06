package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var profileFlag string

var rootCmd = &cobra.Command{
	Use:   "crewdeck",
	Short: "Terminal mission control for agent-fleet backends",
	Long: `Crewdeck is a terminal dashboard for agent-fleet backends.

It mirrors whatever the fleet API reports:
  - Live tabbed dashboard over one coherent backend snapshot
  - One-shot status output for scripts and CI
  - Action dispatch to individual agents
  - Compliance report export with markdown rendering
  - A local simulation backend for offline demos

Run it bare in a terminal to open the dashboard; piped or redirected
invocations print a status summary instead.`,
	Args: cobra.NoArgs,
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Deck profile id (overrides config)")
}

// runRoot keeps `crewdeck` with no arguments useful in both worlds: humans
// get the dashboard, pipes get parseable status.
func runRoot(cmd *cobra.Command, args []string) error {
	if stdoutIsTerminal() {
		return runDashboard(cmd, args)
	}
	return runStatus(cmd, args)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
