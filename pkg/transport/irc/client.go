// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

// Package irc connects the bot to an IRC server through ergochat's ircevent.
// Server messages are published to the inbound bus; replies are taken from
// the outbound bus and written at no more than line_rate lines per second.
package irc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/csyork/csbot/pkg/bot"
	"github.com/csyork/csbot/pkg/bus"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/logger"
	"github.com/csyork/csbot/pkg/utils"
)

const (
	// maxLineBytes keeps "PRIVMSG <target> :<text>" plus the server-added
	// prefix under the 512 byte protocol limit.
	maxLineBytes   = 400
	reconnectDelay = 30 * time.Second
	quitMessage    = "csbot shutting down"
)

var (
	// ErrStopped is returned by Run when the connection policy gives up.
	ErrStopped = errors.New("irc connection stopped by policy")

	errLoopDone = errors.New("irc loop finished")

	// requested when the server offers them; they drive account tracking
	requestCaps = []string{"account-notify", "extended-join"}
)

// Policy decides what happens after connection failures.
type Policy interface {
	OnConnectionLost(reason error) bot.Decision
	OnConnectFailed(err error) bot.Decision
}

// sender is the part of *ircevent.Connection the outbound pump writes to.
type sender interface {
	Privmsg(target, text string) error
	Join(channel string) error
}

// Client is the IRC transport. It implements bot.Transport.
type Client struct {
	core   config.Core
	bus    *bus.MessageBus
	policy Policy
	debug  bool

	limiter  *rate.Limiter
	stopped  atomic.Bool
	quitOnce sync.Once
}

func New(core config.Core, mb *bus.MessageBus, policy Policy, debug bool) *Client {
	return &Client{
		core:    core,
		bus:     mb,
		policy:  policy,
		debug:   debug,
		limiter: rate.NewLimiter(rate.Limit(core.LineRate), 1),
	}
}

// Send queues text for target, one PRIVMSG per line.
func (c *Client) Send(target, text string) {
	for _, line := range utils.SplitLines(text, maxLineBytes) {
		c.bus.PublishOutbound(bus.OutboundMessage{
			Command: bus.CommandPrivmsg,
			Target:  target,
			Content: line,
		})
	}
}

func (c *Client) Join(channel string) {
	c.bus.PublishOutbound(bus.OutboundMessage{Command: bus.CommandJoin, Target: channel})
}

func (c *Client) newConnection() *ircevent.Connection {
	conn := &ircevent.Connection{
		Server:        c.core.Server(),
		Nick:          c.core.Nickname,
		User:          c.core.Username,
		RealName:      c.core.Realname,
		RequestCaps:   requestCaps,
		QuitMessage:   quitMessage,
		ReconnectFreq: reconnectDelay,
		Debug:         c.debug,
		Log:           log.New(logger.Writer("irc", logger.DEBUG), "", 0),
	}

	conn.AddConnectCallback(func(ircmsg.Message) {
		c.bus.PublishInbound(bus.InboundEvent{Kind: bus.KindConnected, Text: conn.CurrentNick()})
	})
	conn.AddDisconnectCallback(func(msg ircmsg.Message) {
		c.onDisconnect(msg, func() { c.quit(conn) })
	})

	for _, code := range []string{"PRIVMSG", "JOIN", "PART", "KICK", "QUIT", "NICK", "TOPIC", "ACCOUNT", rplTopic, rplNamReply} {
		conn.AddCallback(code, func(msg ircmsg.Message) {
			if ev, ok := translate(msg); ok {
				c.bus.PublishInbound(ev)
			}
		})
	}
	return conn
}

// onDisconnect reports a dropped connection to the dispatcher, then asks the
// policy whether ircevent may reconnect. quit ends the connection loop.
func (c *Client) onDisconnect(msg ircmsg.Message, quit func()) {
	reason := errors.New("connection closed")
	if len(msg.Params) > 0 && msg.Params[len(msg.Params)-1] != "" {
		reason = errors.New(msg.Params[len(msg.Params)-1])
	}
	c.bus.PublishInbound(bus.InboundEvent{Kind: bus.KindDisconnected, Err: reason})

	if c.stopped.Load() {
		return
	}
	if c.policy.OnConnectionLost(reason) == bot.Stop {
		c.stopped.Store(true)
		quit()
	}
}

// Run connects and serves the connection until ctx is cancelled or the
// policy says stop. A failed connect is returned as an error.
func (c *Client) Run(ctx context.Context) error {
	conn := c.newConnection()
	if err := c.connect(ctx, conn); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.pump(gctx, conn)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.stopped.Store(true)
		c.quit(conn)
		return nil
	})
	g.Go(func() error {
		conn.Loop()
		if ctx.Err() == nil && c.stopped.Load() {
			return ErrStopped
		}
		return errLoopDone
	})

	err := g.Wait()
	if errors.Is(err, errLoopDone) {
		err = nil
	}
	logger.InfoC("irc", "IRC client stopped")
	return err
}

func (c *Client) connect(ctx context.Context, conn *ircevent.Connection) error {
	for {
		logger.InfoCF("irc", "Connecting", map[string]any{"server": conn.Server, "nick": conn.Nick})
		err := conn.Connect()
		if err == nil {
			return nil
		}
		if c.policy.OnConnectFailed(err) == bot.Stop {
			return fmt.Errorf("%w: connect to %s: %w", ErrStopped, conn.Server, err)
		}

		timer := time.NewTimer(reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) quit(conn *ircevent.Connection) {
	c.quitOnce.Do(conn.Quit)
}

// pump writes outbound messages to out, waiting on the line rate limiter
// before each one.
func (c *Client) pump(ctx context.Context, out sender) error {
	for {
		msg, ok := c.bus.SubscribeOutbound(ctx)
		if !ok {
			return nil
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil
		}
		c.deliver(out, msg)
	}
}

func (c *Client) deliver(out sender, msg bus.OutboundMessage) {
	var err error
	switch msg.Command {
	case bus.CommandPrivmsg:
		err = out.Privmsg(msg.Target, msg.Content)
	case bus.CommandJoin:
		err = out.Join(msg.Target)
	default:
		err = fmt.Errorf("unsupported command %q", msg.Command)
	}
	if err != nil {
		logger.ErrorCF("irc", "Error sending message",
			map[string]any{
				"command": msg.Command,
				"target":  msg.Target,
				"error":   err.Error(),
			})
	}
}
