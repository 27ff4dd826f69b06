package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
)

var (
	searchSkills   []string
	searchMinYears int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search ROLE",
	Short: "Search sourced candidates for a role",
	Long: `Run a candidate search against the backend and print the matches,
best score first.

Examples:
  # Everyone sourced for a role
  crewdeck search "Robotics Engineer"

  # Narrow by skills and minimum experience
  crewdeck search "ML Engineer" --skills PyTorch,SLAM --min-years 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringSliceVar(&searchSkills, "skills", nil, "Skills the candidate must match (any of)")
	searchCmd.Flags().IntVar(&searchMinYears, "min-years", 0, "Minimum years of experience")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the result list as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	list, err := client.SearchCandidates(ctx, api.CandidateSearchRequest{
		Role:          args[0],
		Skills:        searchSkills,
		ExperienceMin: searchMinYears,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		return printJSON(list)
	}
	if list.Count == 0 {
		fmt.Println("No candidates matched.")
		return nil
	}
	for _, cand := range list.Candidates {
		fmt.Printf("%.2f  %-24s %s", cand.MatchScore, cand.Name, cand.Title)
		if cand.CurrentCompany != "" {
			fmt.Printf(" @ %s", cand.CurrentCompany)
		}
		fmt.Println()
		if len(cand.Skills) > 0 {
			fmt.Printf("      %s\n", strings.Join(cand.Skills, ", "))
		}
	}
	fmt.Printf("%d candidates matched\n", list.Count)
	return nil
}
