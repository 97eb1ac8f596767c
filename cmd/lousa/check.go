package main

import (
	"os"

	"github.com/aretw0/lousa/internal/cli"
	"github.com/aretw0/lousa/internal/presentation/tui"
	"github.com/aretw0/lousa/pkg/equiv"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <lhs> <rhs>",
	Short: "Check whether two expressions are equivalent",
	Long: `Checks two algebraic expressions symbolically and, when that is inconclusive,
by numeric sampling. Exits with status 1 when they differ and 2 when the check fails.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		graph, _ := cmd.Flags().GetBool("graph")
		out := cmd.OutOrStdout()

		v := cli.RunCheck(out, args[0], args[1], cli.CheckOptions{
			Graph: graph,
			Color: tui.IsTerminal(out),
		})
		switch v.Kind {
		case equiv.Different:
			os.Exit(1)
		case equiv.Error:
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("graph", false, "Print a Mermaid flowchart of both expressions and the residual")
}
