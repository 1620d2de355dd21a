package cmd

import (
	"github.com/spf13/cobra"

	"github.com/critflow/studio/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets coding agents drive the review studio natively: open drafts,
stack cards, pin annotations, and submit when the gate passes. Configure
in Claude Code with:

  {
    "mcpServers": {
      "studio": { "command": "studio", "args": ["mcp"] }
    }
  }

Available tools: studio_open_draft, studio_add_issue, studio_add_strength,
studio_update_card, studio_delete_card, studio_reorder_cards,
studio_add_annotation, studio_link_annotation, studio_set_verdict,
studio_quality, studio_readiness, studio_submit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := getBridge()
		if err != nil {
			return err
		}
		return mcp.NewServer(b, debounceDuration()).ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
