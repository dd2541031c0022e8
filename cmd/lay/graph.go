package main

import (
	"fmt"

	"github.com/aretw0/lay/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <program.yaml|program.json>",
	Short: "Print a Mermaid diagram of a program",
	Long: `Prints a Mermaid flowchart with one node per operation and one edge per
qubit hand-off. With --run the program is dispatched first and measurement
nodes are colored by their result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withRun, _ := cmd.Flags().GetBool("run")
		out, err := cli.Graph(cli.GraphOptions{
			Backend: backendOptions(cmd),
			Program: args[0],
			Run:     withRun,
		})
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("run", false, "Run the program and overlay measured bits")
}
