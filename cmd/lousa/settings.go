package main

import (
	"fmt"

	"github.com/aretw0/lousa/internal/cli"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the solver settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ShowSettings(cmd.Context(), cmd.OutOrStdout(), app.Settings)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Update provider, model, temperature or prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := cli.SetSettings(cmd.Context(), app.Settings, args); err != nil {
			return err
		}
		return cli.ShowSettings(cmd.Context(), cmd.OutOrStdout(), app.Settings)
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored settings and fall back to the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Settings.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "settings cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsClearCmd)
}
