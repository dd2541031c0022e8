package main

import (
	"github.com/aretw0/lay/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP or MCP server",
	Long: `Starts an HTTP server accepting programs on POST /v1/run, serving recorded
traces under /v1/sessions and /v1/traces, Prometheus metrics on /metrics and
the OpenAPI description on /openapi.yaml.

With --mcp the same operations are served as Model Context Protocol tools
(run_program, list_sessions, list_traces, get_trace) over stdio, or over SSE
on --port with --mcp=sse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		maxQubits, _ := cmd.Flags().GetInt("max-qubits")
		maxSlots, _ := cmd.Flags().GetInt("max-slots")
		mcpMode, _ := cmd.Flags().GetString("mcp")
		logLevel, _ := cmd.Flags().GetString("log-level")
		if !cmd.Flags().Changed("log-level") {
			logLevel = "info"
		}

		return cli.Serve(cli.ServeOptions{
			Backend:   backendOptions(cmd),
			Addr:      ":" + port,
			Store:     storeOptions(cmd),
			LogLevel:  logLevel,
			MaxQubits: maxQubits,
			MaxSlots:  maxSlots,
			MCP:       mcpMode,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Int("max-qubits", 64, "Reject programs needing more qubits")
	serveCmd.Flags().Int("max-slots", 1024, "Reject programs writing more classical slots")
	serveCmd.Flags().String("mcp", "", "Serve MCP tools instead of HTTP: stdio or sse")
	serveCmd.Flags().Lookup("mcp").NoOptDefVal = "stdio"
}
