// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

package hooks

import (
	"context"
	"time"
)

// Hook names broadcast by the bot.
const (
	HookMessage = "core.message.privmsg"
	HookAction  = "core.message.action"
	HookJoin    = "core.channel.joined"
	HookPart    = "core.channel.left"
	HookTopic   = "core.channel.topic"
	HookNames   = "core.channel.names"
	HookQuit    = "core.user.quit"
	HookNick    = "core.user.renamed"
	// HookIdentified needs the account-notify and extended-join capabilities.
	HookIdentified = "core.user.identified"

	HookCronHourly = "cron.hourly"
	HookCronDaily  = "cron.daily"
	HookCronWeekly = "cron.weekly"
)

// Message is fired for every channel or private message, command or not.
type Message struct {
	User    string
	Channel string
	Text    string
}

// Action is fired for CTCP ACTION ("/me") messages.
type Action struct {
	User    string
	Channel string
	Text    string
}

// Join is fired when anyone, the bot included, joins a channel.
type Join struct {
	User    string
	Channel string
}

// Part is fired when a user leaves a channel. Kicker is set for kicks.
type Part struct {
	User    string
	Channel string
	Reason  string
	Kicker  string
}

// Quit is fired when a user disconnects from the network.
type Quit struct {
	User   string
	Reason string
}

// Nick is fired on a nick change. User is the old full identity.
type Nick struct {
	User    string
	OldNick string
	NewNick string
}

// Identified is fired when the network reports the services account a user
// is logged in to. An empty Account means the user is not logged in.
type Identified struct {
	User    string
	Account string
}

type Topic struct {
	User    string
	Channel string
	Topic   string
}

// Names carries the nicks listed for a channel (RPL_NAMREPLY), with mode
// prefixes removed.
type Names struct {
	Channel string
	Nicks   []string
}

// Cron is fired by the cron plugin under one of the cron.* hook names.
type Cron struct {
	Name string
	Time time.Time
}

// Capability interfaces. A plugin whose type implements one of these is
// subscribed to the matching hook when it loads; a plugin that does not is
// simply never called for it.

type MessageHook interface {
	OnMessage(ctx context.Context, ev *Message) error
}

type ActionHook interface {
	OnAction(ctx context.Context, ev *Action) error
}

type JoinHook interface {
	OnJoin(ctx context.Context, ev *Join) error
}

type PartHook interface {
	OnPart(ctx context.Context, ev *Part) error
}

type QuitHook interface {
	OnQuit(ctx context.Context, ev *Quit) error
}

type NickHook interface {
	OnNick(ctx context.Context, ev *Nick) error
}

type IdentifiedHook interface {
	OnIdentified(ctx context.Context, ev *Identified) error
}

type TopicHook interface {
	OnTopic(ctx context.Context, ev *Topic) error
}

type NamesHook interface {
	OnNames(ctx context.Context, ev *Names) error
}

// CronHook receives every cron.* hook; ev.Name tells them apart.
type CronHook interface {
	OnCron(ctx context.Context, ev *Cron) error
}
