// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

// Package bot is the dispatcher: it turns connection events into plugin
// lifecycle calls, command dispatch and hook broadcasts.
package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/csyork/csbot/pkg/bus"
	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/hooks"
	"github.com/csyork/csbot/pkg/identity"
	"github.com/csyork/csbot/pkg/logger"
	"github.com/csyork/csbot/pkg/plugin"
)

// Transport is the bot's way out to the network. Both methods must be safe
// to call from any goroutine and must not block on the network.
type Transport interface {
	Send(target, text string)
	Join(channel string)
}

// Bot owns the plugin manager and runs the dispatch loop. Everything except
// Reply and Emit happens on the goroutine that calls Run.
type Bot struct {
	core      config.Core
	bus       *bus.MessageBus
	transport Transport
	plugins   *plugin.Manager
	policy    ConnectionPolicy

	setUp bool

	nickMu sync.RWMutex
	nick   string
}

// New loads the given plugins, in order, and returns a bot ready to Run.
func New(cfg *config.Config, mb *bus.MessageBus, t Transport, entries ...plugin.Entry) *Bot {
	core := cfg.Core()
	b := &Bot{
		core:      core,
		bus:       mb,
		transport: t,
		nick:      core.Nickname,
		policy:    PolicyFromConfig(core),
	}
	b.plugins = plugin.NewManager(cfg, b)
	loaded := b.plugins.LoadAll(entries...)

	logger.InfoCF("bot", "Bot initialized",
		map[string]any{
			"plugins":  loaded,
			"commands": b.plugins.Commands().Len(),
			"channels": core.Channels,
		})
	return b
}

func (b *Bot) Plugins() *plugin.Manager {
	return b.plugins
}

func (b *Bot) Policy() ConnectionPolicy {
	return b.policy
}

// Nick is the bot's current nick on the network.
func (b *Bot) Nick() string {
	b.nickMu.RLock()
	defer b.nickMu.RUnlock()
	return b.nick
}

func (b *Bot) setNick(nick string) {
	b.nickMu.Lock()
	b.nick = nick
	b.nickMu.Unlock()
}

// Run consumes inbound events until ctx is cancelled or the bus is closed.
// Plugins still set up are torn down before it returns.
func (b *Bot) Run(ctx context.Context) error {
	defer b.shutdown(context.WithoutCancel(ctx))

	for {
		ev, ok := b.bus.ConsumeInbound(ctx)
		if !ok {
			return nil
		}
		b.Handle(ctx, ev)
	}
}

func (b *Bot) shutdown(ctx context.Context) {
	if b.setUp {
		b.plugins.TeardownAll(ctx)
		b.setUp = false
	}
	logger.InfoC("bot", "Dispatch loop stopped")
}

// Handle processes one inbound event. Run calls it; tests call it directly.
func (b *Bot) Handle(ctx context.Context, ev bus.InboundEvent) {
	switch ev.Kind {
	case bus.KindConnected:
		b.onConnected(ctx, ev.Text)
	case bus.KindDisconnected:
		b.onDisconnected(ctx, ev.Err)
	case bus.KindMessage:
		b.onMessage(ctx, ev.User, ev.Target, ev.Text)
	case bus.KindAction:
		b.plugins.Broadcast(ctx, hooks.HookAction,
			&hooks.Action{User: ev.User, Channel: ev.Target, Text: ev.Text})
	case bus.KindJoin:
		b.plugins.Broadcast(ctx, hooks.HookJoin,
			&hooks.Join{User: ev.User, Channel: ev.Target})
		if len(ev.Extra) > 0 {
			b.plugins.Broadcast(ctx, hooks.HookIdentified,
				&hooks.Identified{User: ev.User, Account: ev.Extra[0]})
		}
	case bus.KindAccount:
		b.plugins.Broadcast(ctx, hooks.HookIdentified,
			&hooks.Identified{User: ev.User, Account: ev.Text})
	case bus.KindPart:
		part := &hooks.Part{User: ev.User, Channel: ev.Target, Reason: ev.Text}
		if len(ev.Extra) > 0 {
			part.Kicker = ev.Extra[0]
		}
		b.plugins.Broadcast(ctx, hooks.HookPart, part)
	case bus.KindQuit:
		b.plugins.Broadcast(ctx, hooks.HookQuit,
			&hooks.Quit{User: ev.User, Reason: ev.Text})
	case bus.KindNick:
		oldNick := identity.Nick(ev.User)
		if strings.EqualFold(oldNick, b.Nick()) {
			b.setNick(ev.Text)
		}
		b.plugins.Broadcast(ctx, hooks.HookNick,
			&hooks.Nick{User: ev.User, OldNick: oldNick, NewNick: ev.Text})
	case bus.KindTopic:
		b.plugins.Broadcast(ctx, hooks.HookTopic,
			&hooks.Topic{User: ev.User, Channel: ev.Target, Topic: ev.Text})
	case bus.KindNames:
		b.plugins.Broadcast(ctx, hooks.HookNames,
			&hooks.Names{Channel: ev.Target, Nicks: ev.Extra})
	case bus.KindHook:
		b.plugins.Broadcast(ctx, ev.Hook, ev.Payload)
	default:
		logger.WarnCF("bot", "Unhandled inbound event", map[string]any{"kind": ev.Kind.String()})
	}
}

// onConnected sets plugins up, then joins the configured channels. nick is
// the nick the server accepted, when the transport knows it.
func (b *Bot) onConnected(ctx context.Context, nick string) {
	if nick != "" {
		b.setNick(nick)
	}
	if b.setUp {
		// a connect without a disconnect in between; pair teardown with the old setup
		b.plugins.TeardownAll(ctx)
	}
	b.plugins.SetupAll(ctx)
	b.setUp = true

	for _, channel := range b.policy.Channels {
		b.transport.Join(channel)
	}
	logger.InfoCF("bot", "Connected",
		map[string]any{
			"nick":     b.Nick(),
			"channels": b.policy.Channels,
		})
}

func (b *Bot) onDisconnected(ctx context.Context, reason error) {
	if !b.setUp {
		return
	}
	b.plugins.TeardownAll(ctx)
	b.setUp = false

	fields := map[string]any{}
	if reason != nil {
		fields["reason"] = reason.Error()
	}
	logger.InfoCF("bot", "Disconnected", fields)
}

// onMessage dispatches a command if the message is one, then broadcasts the
// message to every privmsg subscriber either way.
func (b *Bot) onMessage(ctx context.Context, user, channel, text string) {
	r := commands.Recognizer{
		Nick:      b.Nick(),
		Prefix:    b.policy.CommandPrefix,
		Responder: b,
	}
	if ev, ok := r.Recognize(user, channel, text); ok {
		logger.DebugCF("bot", "Command received",
			map[string]any{
				"event_id": ev.ID,
				"command":  ev.Command,
				"user":     user,
				"channel":  channel,
				"direct":   ev.Direct,
			})
		b.plugins.DispatchCommand(ctx, ev)
	}

	b.plugins.Broadcast(ctx, hooks.HookMessage,
		&hooks.Message{User: user, Channel: channel, Text: text})
}

// Reply implements commands.Responder. Private messages are answered
// privately. In a channel, quiet replies are only sent when the bot was
// addressed directly.
func (b *Bot) Reply(ev *commands.Event, text string, quiet bool) {
	switch {
	case strings.EqualFold(ev.Channel, b.Nick()):
		b.transport.Send(identity.Nick(ev.User), text)
	case ev.Direct || !quiet:
		b.transport.Send(ev.Channel, text)
	default:
		logger.DebugCF("bot", "Quiet reply suppressed",
			map[string]any{
				"event_id": ev.ID,
				"channel":  ev.Channel,
			})
	}
}

// Emit implements plugin.Host. The hook is broadcast later from the dispatch
// loop; when the inbound queue is full it is dropped.
func (b *Bot) Emit(hook string, payload any) {
	if !b.bus.OfferInbound(bus.InboundEvent{Kind: bus.KindHook, Hook: hook, Payload: payload}) {
		logger.WarnCF("bot", "Inbound queue full, dropping hook", map[string]any{"hook": hook})
	}
}
