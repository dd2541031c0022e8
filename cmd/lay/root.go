package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/lay/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lay",
	Short: "lay dispatches quantum operation batches to pluggable backends",
	Long: `lay builds batches of quantum operations from program files, checks them
against the capabilities of the selected backend and dispatches them through
a stack of layers (grid addressing, metrics, trace recording).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("backend", "sim", "Backend to dispatch to ("+strings.Join(cli.Backends, ", ")+")")
	rootCmd.PersistentFlags().Int("qubits", 0, "Minimum number of simulated qubits")
	rootCmd.PersistentFlags().String("caps", "", "Restrict the backend to these gate families (e.g. pauli|cx)")
	rootCmd.PersistentFlags().Int("grid", 0, "Address qubits as [x, y] points on a grid of this width")
	rootCmd.PersistentFlags().Bool("color", false, "Colorize echo backend output")
	rootCmd.PersistentFlags().String("redis", "", "Record traces in Redis (redis://host:port/db)")
	rootCmd.PersistentFlags().String("trace-dir", "", "Record traces as JSON files in this directory")
	rootCmd.PersistentFlags().String("trace-key", "", "Hex encoded AES-256 key sealing recorded traces")
	rootCmd.PersistentFlags().StringSlice("redact", nil, "Mask recorded operations matching these patterns")
	rootCmd.PersistentFlags().String("log-level", "", "Log to stderr at this level (debug, info, warn, error)")
}

func backendOptions(cmd *cobra.Command) cli.BackendOptions {
	kind, _ := cmd.Flags().GetString("backend")
	qubits, _ := cmd.Flags().GetInt("qubits")
	caps, _ := cmd.Flags().GetString("caps")
	grid, _ := cmd.Flags().GetInt("grid")
	color, _ := cmd.Flags().GetBool("color")
	return cli.BackendOptions{
		Kind:   kind,
		Qubits: qubits,
		Caps:   caps,
		Grid:   grid,
		Color:  color,
	}
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	redisURL, _ := cmd.Flags().GetString("redis")
	dir, _ := cmd.Flags().GetString("trace-dir")
	key, _ := cmd.Flags().GetString("trace-key")
	redact, _ := cmd.Flags().GetStringSlice("redact")
	return cli.StoreOptions{
		RedisURL: redisURL,
		Dir:      dir,
		Key:      key,
		Redact:   redact,
	}
}
