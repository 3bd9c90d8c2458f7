// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

package plugin

import (
	"context"

	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/hooks"
)

// Plugin is the compile-time contract for bot extensions. Hooks are opted
// into by implementing the interfaces in package hooks.
type Plugin interface {
	Name() string
	// Register declares the plugin's commands and explicit hooks. It is
	// called once, while the plugin loads.
	Register(r *Registrar) error
	// Setup runs each time the bot connects, Teardown each time it
	// disconnects.
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
}

// Base provides no-op defaults for everything but Name. Embed it.
type Base struct{}

func (Base) Register(*Registrar) error      { return nil }
func (Base) Setup(context.Context) error    { return nil }
func (Base) Teardown(context.Context) error { return nil }

// Factory constructs a plugin. It is called at most once per process.
type Factory func(env *Env) (Plugin, error)

// Host is what the bot offers plugins beyond the manager itself.
type Host interface {
	// Emit broadcasts a hook to every subscribed plugin from the dispatch
	// loop. It is safe to call from any goroutine.
	Emit(hook string, payload any)
	// Nick is the nick the bot currently holds on the network.
	Nick() string
}

// Env is a plugin's view of the bot: its own config section, the loaded
// plugins and commands, and a way to emit hooks.
type Env struct {
	name    string
	config  config.Section
	manager *Manager
}

func (e *Env) Name() string {
	return e.name
}

// Config returns the plugin's section, which falls back to DEFAULT.
func (e *Env) Config() config.Section {
	return e.config
}

// ConfigGet looks key up in the plugin's section, then in DEFAULT. A key in
// neither is a *config.KeyNotFoundError.
func (e *Env) ConfigGet(key string) (string, error) {
	return e.config.Get(key)
}

func (e *Env) Emit(hook string, payload any) {
	if e.manager.host == nil {
		return
	}
	e.manager.host.Emit(hook, payload)
}

// BotNick is the bot's nick as accepted by the server, which may differ from
// the configured one. Without a host it is the configured nickname.
func (e *Env) BotNick() string {
	if e.manager.host != nil {
		if nick := e.manager.host.Nick(); nick != "" {
			return nick
		}
	}
	nick, _ := e.config.Get(config.KeyNickname)
	return nick
}

// Plugins returns the names of the plugins loaded so far, in load order.
func (e *Env) Plugins() []string {
	return e.manager.Names()
}

// Commands returns the shared command table.
func (e *Env) Commands() *commands.Table {
	return e.manager.commands
}

type hookSubscription struct {
	hook    string
	handler hooks.Handler
}

// Registrar collects a plugin's (name, handler) pairs during Register. The
// manager applies them once Register returns without error.
type Registrar struct {
	plugin   string
	commands []commands.Definition
	hooks    []hookSubscription
}

// Command declares a command handled exclusively by this plugin.
func (r *Registrar) Command(name, help string, handler commands.Handler) {
	r.commands = append(r.commands, commands.Definition{
		Name:    name,
		Help:    help,
		Plugin:  r.plugin,
		Handler: handler,
	})
}

// Hook subscribes handler to a named hook, including hooks that other
// plugins emit.
func (r *Registrar) Hook(name string, handler hooks.Handler) {
	r.hooks = append(r.hooks, hookSubscription{hook: name, handler: handler})
}
