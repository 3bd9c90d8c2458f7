// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/csyork/csbot/cmd/csbot/internal"
	"github.com/csyork/csbot/cmd/csbot/internal/plugin"
	"github.com/csyork/csbot/cmd/csbot/internal/runner"
	"github.com/csyork/csbot/cmd/csbot/internal/version"
)

func NewCsbotCommand() *cobra.Command {
	opts := runner.Options{ConfigPath: internal.DefaultConfigPath}

	cmd := &cobra.Command{
		Use:   "csbot",
		Short: "Plugin-driven IRC bot",
		Long: "csbot connects to an IRC server, joins the configured channels and\n" +
			"hands messages to its plugins. Configuration is read from a TOML (or\n" +
			"YAML) file; CSBOT_* environment variables override the DEFAULT keys.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runner.Run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", internal.DefaultConfigPath, "Path to config file")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(
		version.NewVersionCommand(),
		plugin.NewPluginsCommand(&opts.ConfigPath),
	)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewCsbotCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
