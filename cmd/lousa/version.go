package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/lousa"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lousa",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lousa version %s\n", strings.TrimSpace(lousa.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
