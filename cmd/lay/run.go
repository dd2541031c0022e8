package main

import (
	"github.com/aretw0/lay/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <program.yaml|program.json>",
	Short: "Run a program file",
	Long: `Loads a program file, builds it for the selected backend and dispatches it
as a single batch. Results are printed as a report on a terminal, as a bit
string otherwise, or as JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, _ := cmd.Flags().GetString("log-level")
		jsonMode, _ := cmd.Flags().GetBool("json")
		style, _ := cmd.Flags().GetString("style")

		return cli.Execute(cli.RunOptions{
			Backend:  backendOptions(cmd),
			Program:  args[0],
			Store:    storeOptions(cmd),
			LogLevel: logLevel,
			JSON:     jsonMode,
			Style:    style,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.Flags().String("style", "", "Report style (dark, light, notty); detected by default")
}
