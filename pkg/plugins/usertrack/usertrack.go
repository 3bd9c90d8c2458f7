// Package usertrack remembers which nicks are in which channels, and which
// services account each nick is logged in to, driven by membership hooks.
package usertrack

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/hooks"
	"github.com/csyork/csbot/pkg/identity"
	"github.com/csyork/csbot/pkg/plugin"
)

const Name = "usertrack"

type Plugin struct {
	plugin.Base
	env *plugin.Env

	mu sync.RWMutex
	// channel -> lowercased nick -> nick as last seen
	members map[string]map[string]string
	// lowercased nick -> account, "" when known not to be logged in
	accounts map[string]string
}

func New(env *plugin.Env) (plugin.Plugin, error) {
	return &Plugin{
		env:      env,
		members:  make(map[string]map[string]string),
		accounts: make(map[string]string),
	}, nil
}

func (p *Plugin) Name() string {
	return Name
}

func (p *Plugin) Register(r *plugin.Registrar) error {
	r.Command("channels", "channels [nick]: channels the bot has seen nick in.", p.channelsCommand)
	r.Command("users", "users <channel>: nicks currently in a channel.", p.usersCommand)
	r.Command("account", "account [nick]: the services account nick is logged in to.", p.accountCommand)
	return nil
}

// Teardown forgets everything; membership is rebuilt from NAMES on rejoin.
func (p *Plugin) Teardown(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.members)
	clear(p.accounts)
	return nil
}

func (p *Plugin) OnJoin(_ context.Context, ev *hooks.Join) error {
	p.add(ev.Channel, identity.Nick(ev.User))
	return nil
}

func (p *Plugin) OnPart(_ context.Context, ev *hooks.Part) error {
	nick := identity.Nick(ev.User)

	self := p.env.BotNick()

	p.mu.Lock()
	defer p.mu.Unlock()
	channel := key(ev.Channel)
	if strings.EqualFold(nick, self) {
		delete(p.members, channel)
		p.forgetUnseen()
		return nil
	}
	if set, ok := p.members[channel]; ok {
		delete(set, key(nick))
	}
	p.forgetUnseen()
	return nil
}

func (p *Plugin) OnQuit(_ context.Context, ev *hooks.Quit) error {
	nick := key(identity.Nick(ev.User))

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, set := range p.members {
		delete(set, nick)
	}
	delete(p.accounts, nick)
	return nil
}

func (p *Plugin) OnNick(_ context.Context, ev *hooks.Nick) error {
	oldKey := key(ev.OldNick)

	newKey := key(ev.NewNick)

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, set := range p.members {
		if _, ok := set[oldKey]; ok {
			delete(set, oldKey)
			set[newKey] = ev.NewNick
		}
	}
	if account, ok := p.accounts[oldKey]; ok {
		delete(p.accounts, oldKey)
		p.accounts[newKey] = account
	}
	return nil
}

func (p *Plugin) OnIdentified(_ context.Context, ev *hooks.Identified) error {
	nick := identity.Nick(ev.User)
	if nick == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[key(nick)] = ev.Account
	return nil
}

// forgetUnseen drops accounts of nicks no longer in any tracked channel; the
// server stops sending account-notify for them. Callers hold p.mu.
func (p *Plugin) forgetUnseen() {
	for nick := range p.accounts {
		if !p.seen(nick) {
			delete(p.accounts, nick)
		}
	}
}

func (p *Plugin) seen(nick string) bool {
	for _, set := range p.members {
		if _, ok := set[nick]; ok {
			return true
		}
	}
	return false
}

func (p *Plugin) OnNames(_ context.Context, ev *hooks.Names) error {
	for _, nick := range ev.Nicks {
		p.add(ev.Channel, nick)
	}
	return nil
}

func (p *Plugin) add(channel, nick string) {
	if nick == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.members[key(channel)]
	if !ok {
		set = make(map[string]string)
		p.members[key(channel)] = set
	}
	set[key(nick)] = nick
}

// ChannelsOf returns the channels nick is known to be in, sorted.
func (p *Plugin) ChannelsOf(nick string) []string {
	k := key(nick)

	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for channel, set := range p.members {
		if _, ok := set[k]; ok {
			out = append(out, channel)
		}
	}
	slices.Sort(out)
	return out
}

// Account returns the account nick is logged in to. known is false when
// nothing has been heard about nick; a known nick with an empty account is
// not logged in.
func (p *Plugin) Account(nick string) (account string, known bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	account, known = p.accounts[key(nick)]
	return account, known
}

// Users returns the nicks known to be in channel, sorted.
func (p *Plugin) Users(channel string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Values(p.members[key(channel)]))
}

func (p *Plugin) channelsCommand(_ context.Context, ev *commands.Event) error {
	args, err := ev.Args()
	if err != nil {
		return nil
	}
	nick := ev.Nick()
	if len(args) > 0 {
		nick = args[0]
	}

	chans := p.ChannelsOf(nick)
	if len(chans) == 0 {
		ev.Reply(fmt.Sprintf("%s is not in any channel I know of", nick))
		return nil
	}
	ev.Reply(fmt.Sprintf("%s is in: %s", nick, strings.Join(chans, ", ")))
	return nil
}

func (p *Plugin) usersCommand(_ context.Context, ev *commands.Event) error {
	args, err := ev.Args()
	if err != nil {
		return nil
	}
	channel := ev.Channel
	if len(args) > 0 {
		channel = args[0]
	}
	if !identity.IsChannel(channel) {
		ev.Error("usage: users <channel>")
		return nil
	}

	users := p.Users(channel)
	if len(users) == 0 {
		ev.Reply(fmt.Sprintf("nobody I know of is in %s", channel))
		return nil
	}
	ev.Reply(fmt.Sprintf("%s: %s", channel, strings.Join(users, " ")))
	return nil
}

func (p *Plugin) accountCommand(_ context.Context, ev *commands.Event) error {
	args, err := ev.Args()
	if err != nil {
		return nil
	}
	nick := ev.Nick()
	if len(args) > 0 {
		nick = args[0]
	}

	account, known := p.Account(nick)
	switch {
	case !known:
		ev.Reply(fmt.Sprintf("I don't know whether %s is identified", nick))
	case account == "":
		ev.Reply(fmt.Sprintf("%s is not identified", nick))
	default:
		ev.Reply(fmt.Sprintf("%s is identified as %s", nick, account))
	}
	return nil
}

// IRC channel names are case-insensitive.
func key(s string) string {
	return strings.ToLower(s)
}
