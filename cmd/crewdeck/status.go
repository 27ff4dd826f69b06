package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/config"
	"github.com/crewdeck/crewdeck/internal/profile"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print one snapshot of the backend",
	Long: `Fetch every slot of the configured deck once and print a summary.

The fetch is all-or-nothing: either every endpoint answered and the output
reflects one moment, or the command fails.

Examples:
  # Human-readable status
  crewdeck status

  # Full snapshot as JSON
  crewdeck status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the full snapshot as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deck, err := resolveProfile(cfg)
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snap, err := client.FetchSnapshot(ctx, deck.FetchPlan())
	if err != nil {
		return err
	}

	if statusJSON {
		doc := snapshotDocument(snap, deck)
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printSummary(snap, deck, cfg)
	return nil
}

// snapshotDocument lays the snapshot out by slot key so the JSON shape
// follows the deck's fetch plan.
func snapshotDocument(snap *api.Snapshot, deck profile.Profile) map[string]any {
	doc := make(map[string]any, len(deck.Slots)+1)
	for _, slot := range deck.Slots {
		switch slot.Key {
		case api.SlotService:
			doc[slot.Key] = snap.Service
		case api.SlotAgents:
			doc[slot.Key] = snap.Agents
		case api.SlotStats:
			doc[slot.Key] = snap.Stats
		case api.SlotPipeline:
			doc[slot.Key] = snap.Pipeline
		case api.SlotFunnel:
			doc[slot.Key] = snap.Funnel
		case api.SlotJobs:
			doc[slot.Key] = snap.Jobs
		case api.SlotScreening:
			doc[slot.Key] = snap.Screening
		case api.SlotSources:
			doc[slot.Key] = snap.Sources
		case api.SlotCompliance:
			doc[slot.Key] = snap.Compliance
		default:
			doc[slot.Key] = snap.RawSlot(slot.Key)
		}
	}
	doc["fetched_at"] = snap.FetchedAt.UTC().Format(time.RFC3339)
	return doc
}

func printSummary(snap *api.Snapshot, deck profile.Profile, cfg *config.Config) {
	fmt.Printf("Backend    %s (%s deck)\n", cfg.BaseURL(), deck.ID)
	if svc := snap.Service; svc != nil {
		fmt.Printf("Service    %s %s (%s)\n", svc.Service, svc.Version, svc.Status)
	}
	if agents := snap.Agents; agents != nil {
		fmt.Printf("Agents     %d registered plus orchestrator %s\n", len(agents.Agents), agents.Orchestrator.Name)
	}
	if stats := snap.Stats; stats != nil {
		fmt.Printf("Sourcing   %d sourced, avg match %.2f\n", stats.Sourcing.TotalSourced, stats.Sourcing.AvgMatchScore)
		fmt.Printf("Pipeline   %d active, %d hired\n", stats.Pipeline.TotalActive, stats.Pipeline.TotalHired)
	}
	if screening := snap.Screening; screening != nil {
		fmt.Printf("Review     %d candidates awaiting human review\n", screening.QueueLength)
	}
	if jobs := snap.Jobs; jobs != nil {
		fmt.Printf("Jobs       %d roles open\n", jobs.Count)
	}
	if sources := snap.Sources; sources != nil {
		fmt.Printf("Sources    %d sourcing platforms\n", sources.TotalSources)
	}
	if len(snap.Raw) > 0 {
		keys := make([]string, 0, len(snap.Raw))
		for _, slot := range deck.Slots {
			if _, ok := snap.Raw[slot.Key]; ok {
				keys = append(keys, slot.Key)
			}
		}
		fmt.Printf("Raw slots  %s (use --json for payloads)\n", strings.Join(keys, ", "))
	}
	fmt.Printf("Fetched    %s\n", snap.FetchedAt.UTC().Format(time.RFC3339))
}
