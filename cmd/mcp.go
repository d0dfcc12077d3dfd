package cmd

import (
	"github.com/huangsam/stepviz/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [files...]",
	Short: "Start the stepviz MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents list experiments and fetch downsampled chart data.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr, so stdout stays free for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		src := openSource()
		defer closeSource(src)
		return mcp.StartMCPServer(rootCtx, cfg, src)
	},
}
