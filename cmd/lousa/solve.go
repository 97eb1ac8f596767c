package main

import (
	"fmt"

	"github.com/aretw0/lousa/internal/cli"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve <image>",
	Short: "Solve the problem in a photo or sketch",
	Long: `Composites the image onto a fresh board and sends it to a vision model.
By default the request goes to a running lousa server; with --direct it is relayed
in-process using the API keys from the environment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return fmt.Errorf("error initializing lousa: %w", err)
		}
		defer app.Close()

		server, _ := cmd.Flags().GetString("server")
		direct, _ := cmd.Flags().GetBool("direct")
		prompt, _ := cmd.Flags().GetString("prompt")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		pngPath, _ := cmd.Flags().GetString("png")

		var solver relay.Solver = relay.NewClient(server)
		if direct {
			solver = app.Relay
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err = cli.RunSolve(ctx, cmd.OutOrStdout(), cli.SolveOptions{
			Image:    args[0],
			Prompt:   prompt,
			PDFPath:  pdfPath,
			PNGPath:  pngPath,
			Solver:   solver,
			Settings: app.Settings,
			Boards:   app.BoardOptions(),
			Logger:   app.Logger,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().String("server", "http://localhost:8787", "Base URL of the lousa server")
	solveCmd.Flags().Bool("direct", false, "Relay in-process instead of calling a server")
	solveCmd.Flags().String("prompt", "", "Prompt override for this call")
	solveCmd.Flags().String("pdf", "", "Write a PDF report to this path")
	solveCmd.Flags().String("png", "", "Write the board image to this path")
}
