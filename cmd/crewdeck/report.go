package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/report"
)

var (
	reportRender bool
	reportList   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the backend's compliance report",
	Long: `Fetch the compliance report, save it as markdown with a crewdeck
frontmatter envelope under .crewdeck/reports, and optionally render it.

Examples:
  # Export and print the saved path
  crewdeck report

  # Export and render styled markdown to the terminal
  crewdeck report --render

  # List previously exported reports
  crewdeck report --list`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportRender, "render", false, "Render the report to the terminal")
	reportCmd.Flags().BoolVar(&reportList, "list", false, "List stored reports instead of exporting")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := report.NewStore(cfg.ReportsDir())

	if reportList {
		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No reports exported yet.")
			return nil
		}
		for _, entry := range entries {
			fmt.Printf("%s  %-12s %s\n",
				entry.Metadata.GeneratedAt.Format("2006-01-02 15:04"),
				entry.Metadata.Kind,
				entry.Path)
		}
		return nil
	}

	deck, err := resolveProfile(cfg)
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snap, err := client.FetchSnapshot(ctx, []api.Slot{
		{Key: api.SlotCompliance, Path: "/api/audit/compliance-report"},
	})
	if err != nil {
		return err
	}
	if snap.Compliance == nil {
		return fmt.Errorf("backend returned no compliance report")
	}

	body := report.BuildCompliance(snap.Compliance)
	meta := report.Metadata{Kind: "compliance", Profile: deck.ID, BaseURL: cfg.BaseURL()}
	path, err := store.Save(meta, body)
	if err != nil {
		return err
	}
	fmt.Printf("Report saved to %s\n", path)

	if reportRender {
		rendered, err := report.Render(string(body), terminalWidth())
		if err != nil {
			return err
		}
		fmt.Print(rendered)
	}
	return nil
}
