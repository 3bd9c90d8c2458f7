// Package meta provides commands that describe the bot itself.
package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/plugin"
)

const Name = "meta"

type Plugin struct {
	plugin.Base
	env *plugin.Env
}

func New(env *plugin.Env) (plugin.Plugin, error) {
	return &Plugin{env: env}, nil
}

func (p *Plugin) Name() string {
	return Name
}

func (p *Plugin) Register(r *plugin.Registrar) error {
	r.Command("plugins", "List the loaded plugins.", p.plugins)
	r.Command("commands", "List every available command.", p.commands)
	r.Command("source", "Where to find the bot's source code.", p.source)
	r.Command("help", "help <command>: describe a command.", p.help)
	return nil
}

func (p *Plugin) plugins(_ context.Context, ev *commands.Event) error {
	ev.Reply("loaded plugins: " + strings.Join(p.env.Plugins(), ", "))
	return nil
}

func (p *Plugin) commands(_ context.Context, ev *commands.Event) error {
	ev.Reply("commands: " + strings.Join(p.env.Commands().Names(), ", "))
	return nil
}

func (p *Plugin) source(_ context.Context, ev *commands.Event) error {
	url, err := p.env.ConfigGet(config.KeySourceURL)
	if err != nil {
		return err
	}
	ev.Reply(url)
	return nil
}

func (p *Plugin) help(_ context.Context, ev *commands.Event) error {
	args, err := ev.Args()
	if err != nil {
		return nil
	}
	if len(args) == 0 {
		ev.Reply("usage: help <command>; try \"commands\" for a list")
		return nil
	}

	def, ok := p.env.Commands().Lookup(args[0])
	switch {
	case !ok:
		ev.Error(fmt.Sprintf("Command %q not found", args[0]))
	case def.Help == "":
		ev.Reply(fmt.Sprintf("%s (%s): no help available", def.Name, def.Plugin))
	default:
		ev.Reply(fmt.Sprintf("%s (%s): %s", def.Name, def.Plugin, def.Help))
	}
	return nil
}
