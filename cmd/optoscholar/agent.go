// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/optoscholar/internal/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent <question>",
	Short: "Ask the research agent a question",
	Long: `Agent submits the question to the asynchronous research agent and polls
until the answer is ready. The agent URL comes from agent.base_url,
OPTOSCHOLAR_AGENT_BASE_URL, or .secrets/agent-url.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	if interval, _ := cmd.Flags().GetDuration("poll-interval"); interval > 0 {
		cfg.Agent.PollInterval = interval
	}
	if attempts, _ := cmd.Flags().GetInt("max-attempts"); attempts > 0 {
		cfg.Agent.MaxAttempts = attempts
	}

	text, err := agent.New(cfg.Agent, nil, logger, metrics).Run(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func init() {
	agentCmd.Flags().Duration("poll-interval", 0, "delay between status polls (0 = configured default)")
	agentCmd.Flags().Int("max-attempts", 0, "maximum status polls (0 = configured default)")

	rootCmd.AddCommand(agentCmd)
}
