package main

import (
	"fmt"
	"os"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lay",
	Run: func(cmd *cobra.Command, args []string) {
		banner, _ := cmd.Flags().GetBool("banner")
		if banner {
			tui.PrintBanner(os.Stdout)
		}
		fmt.Printf("lay version %s\n", lay.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner before the version")
}
