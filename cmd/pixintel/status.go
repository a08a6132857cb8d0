package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pipeline stage workers and readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Close()

		status := application.Orchestrator.Status()
		status.Version = common.GetVersion()

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status: %s\n", status.Status)
		fmt.Fprintf(out, "Agentes: %d\n", status.Total)
		for _, agent := range status.Agents {
			fmt.Fprintf(out, "  - %-18s %s\n", agent.Name, agent.Description)
		}
		return nil
	},
}

var jsonOutput bool

func init() {
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the status as JSON")
}
