// Package runner wires configuration, plugins, the dispatcher and the IRC
// transport together for the root command.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/csyork/csbot/cmd/csbot/internal"
	"github.com/csyork/csbot/pkg/bot"
	"github.com/csyork/csbot/pkg/bus"
	"github.com/csyork/csbot/pkg/logger"
	"github.com/csyork/csbot/pkg/plugin/builtin"
	"github.com/csyork/csbot/pkg/transport/irc"
)

type Options struct {
	ConfigPath string
	Debug      bool
}

// Run starts the bot and blocks until ctx is cancelled or the connection
// policy gives up.
func Run(ctx context.Context, opts Options) error {
	if opts.Debug {
		logger.SetLevel(logger.DEBUG)
		logger.DebugC("csbot", "Debug mode enabled")
	}

	cfg, err := internal.LoadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	core := cfg.Core()

	mb := bus.NewMessageBus()
	defer mb.Close()

	client := irc.New(core, mb, bot.PolicyFromConfig(core), opts.Debug)
	b := bot.New(cfg, mb, client, builtin.Select(core.Plugins)...)

	logger.InfoCF("csbot", "Starting csbot",
		map[string]any{
			"version": internal.FormatVersion(),
			"server":  core.Server(),
			"nick":    core.Nickname,
			"plugins": b.Plugins().Names(),
		})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// transport callbacks still publishing while QUIT completes must
		// not wait on a loop that has stopped consuming
		defer mb.Close()
		return b.Run(gctx)
	})
	g.Go(func() error {
		// the bot has nothing to do once the transport is gone
		defer cancel()
		return client.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.InfoC("csbot", "csbot stopped")
	return nil
}
