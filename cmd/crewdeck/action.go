package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewdeck/internal/api"
)

var actionPayload string

var actionCmd = &cobra.Command{
	Use:   "action AGENT ACTION",
	Short: "Dispatch one action to a backend agent",
	Long: `Dispatch an action to a named agent and print the backend's reply.

Examples:
  # Ask the sourcer to run a sweep
  crewdeck action sourcer run_sourcing_sweep

  # Include a JSON payload
  crewdeck action screener rescore --payload '{"batch": 12}'`,
	Args: cobra.ExactArgs(2),
	RunE: runAction,
}

func init() {
	rootCmd.AddCommand(actionCmd)
	actionCmd.Flags().StringVar(&actionPayload, "payload", "", "JSON object sent as the action payload")
}

func runAction(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	req := api.AgentActionRequest{Action: args[1]}
	if actionPayload != "" {
		if err := json.Unmarshal([]byte(actionPayload), &req.Payload); err != nil {
			return fmt.Errorf("parse --payload: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	raw, err := client.AgentAction(ctx, args[0], req)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	fmt.Println(buf.String())
	return nil
}
