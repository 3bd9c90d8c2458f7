package usertrack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/hooks"
	"github.com/csyork/csbot/pkg/plugin"
)

type recorder struct {
	replies []string
}

func (r *recorder) Reply(_ *commands.Event, text string, _ bool) {
	r.replies = append(r.replies, text)
}

// serverHost reports the nick the server gave the bot.
type serverHost struct {
	nick string
}

func (serverHost) Emit(string, any) {}

func (h serverHost) Nick() string {
	return h.nick
}

func setup(t *testing.T) (*plugin.Manager, *Plugin) {
	t.Helper()
	return setupWithHost(t, nil)
}

func setupWithHost(t *testing.T, host plugin.Host) (*plugin.Manager, *Plugin) {
	t.Helper()
	cfg, err := config.New(map[string]string{config.KeyNickname: "bot"}, nil)
	require.NoError(t, err)

	m := plugin.NewManager(cfg, host)
	require.NoError(t, m.Load(Name, New))
	p, ok := m.Get(Name)
	require.True(t, ok)
	return m, p.(*Plugin)
}

func TestMembershipTracking(t *testing.T) {
	m, p := setup(t)
	ctx := context.Background()

	m.Broadcast(ctx, hooks.HookNames, &hooks.Names{Channel: "#York", Nicks: []string{"bot", "alice", "bob"}})
	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "carol!c@host", Channel: "#york"})
	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "alice!a@host", Channel: "#other"})

	assert.Equal(t, []string{"#other", "#york"}, p.ChannelsOf("ALICE"))
	assert.Equal(t, []string{"alice", "bob", "bot", "carol"}, p.Users("#york"))

	m.Broadcast(ctx, hooks.HookPart, &hooks.Part{User: "bob!b@host", Channel: "#york"})
	m.Broadcast(ctx, hooks.HookNick, &hooks.Nick{User: "carol!c@host", OldNick: "carol", NewNick: "caz"})
	m.Broadcast(ctx, hooks.HookQuit, &hooks.Quit{User: "alice!a@host"})

	assert.Equal(t, []string{"bot", "caz"}, p.Users("#york"))
	assert.Empty(t, p.ChannelsOf("alice"))
	assert.Equal(t, []string{"#york"}, p.ChannelsOf("caz"))
}

func TestBotLeavingForgetsChannel(t *testing.T) {
	m, p := setup(t)
	ctx := context.Background()

	m.Broadcast(ctx, hooks.HookNames, &hooks.Names{Channel: "#york", Nicks: []string{"bot", "alice"}})
	m.Broadcast(ctx, hooks.HookPart, &hooks.Part{User: "bot!b@host", Channel: "#york", Kicker: "op"})

	assert.Empty(t, p.Users("#york"))
	assert.Empty(t, p.ChannelsOf("alice"))
}

func TestBotLeavingUsesServerNick(t *testing.T) {
	m, p := setupWithHost(t, serverHost{nick: "bot_"})
	ctx := context.Background()

	m.Broadcast(ctx, hooks.HookNames, &hooks.Names{Channel: "#york", Nicks: []string{"bot_", "alice"}})
	m.Broadcast(ctx, hooks.HookPart, &hooks.Part{User: "bot_!b@host", Channel: "#york"})

	assert.Empty(t, p.Users("#york"))
	assert.Empty(t, p.ChannelsOf("alice"))
}

func TestAccountTracking(t *testing.T) {
	m, p := setup(t)
	ctx := context.Background()

	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "alice!a@host", Channel: "#york"})
	m.Broadcast(ctx, hooks.HookIdentified, &hooks.Identified{User: "alice!a@host", Account: "alice"})
	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "bob!b@host", Channel: "#york"})
	m.Broadcast(ctx, hooks.HookIdentified, &hooks.Identified{User: "bob!b@host"})

	account, known := p.Account("ALICE")
	assert.True(t, known)
	assert.Equal(t, "alice", account)
	account, known = p.Account("bob")
	assert.True(t, known)
	assert.Empty(t, account)
	_, known = p.Account("carol")
	assert.False(t, known)

	m.Broadcast(ctx, hooks.HookNick, &hooks.Nick{User: "alice!a@host", OldNick: "alice", NewNick: "alice_away"})
	account, known = p.Account("alice_away")
	assert.True(t, known)
	assert.Equal(t, "alice", account)
	_, known = p.Account("alice")
	assert.False(t, known)

	m.Broadcast(ctx, hooks.HookPart, &hooks.Part{User: "bob!b@host", Channel: "#york"})
	_, known = p.Account("bob")
	assert.False(t, known, "no shared channel left")

	m.Broadcast(ctx, hooks.HookQuit, &hooks.Quit{User: "alice_away!a@host"})
	_, known = p.Account("alice_away")
	assert.False(t, known)
}

func TestTeardownClears(t *testing.T) {
	m, p := setup(t)
	m.Broadcast(context.Background(), hooks.HookJoin, &hooks.Join{User: "alice!a@host", Channel: "#york"})
	m.TeardownAll(context.Background())
	assert.Empty(t, p.Users("#york"))
}

func TestCommands(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()
	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "alice!a@host", Channel: "#york"})

	r := &recorder{}
	res := m.DispatchCommand(ctx, commands.NewEvent(r, "alice!a@host", "#york", "channels", false, ""))
	require.True(t, res.Matched)
	res = m.DispatchCommand(ctx, commands.NewEvent(r, "alice!a@host", "#york", "channels", false, "dave"))
	require.True(t, res.Matched)
	res = m.DispatchCommand(ctx, commands.NewEvent(r, "alice!a@host", "#york", "users", false, ""))
	require.True(t, res.Matched)
	res = m.DispatchCommand(ctx, commands.NewEvent(r, "alice!a@host", "bot", "users", true, ""))
	require.True(t, res.Matched)

	m.Broadcast(ctx, hooks.HookIdentified, &hooks.Identified{User: "alice!a@host", Account: "alice"})
	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "bob!b@host", Channel: "#york"})
	m.Broadcast(ctx, hooks.HookIdentified, &hooks.Identified{User: "bob!b@host"})
	for _, nick := range []string{"", "bob", "dave"} {
		res = m.DispatchCommand(ctx, commands.NewEvent(r, "alice!a@host", "#york", "account", false, nick))
		require.True(t, res.Matched)
	}

	assert.Equal(t, []string{
		"alice is in: #york",
		"dave is not in any channel I know of",
		"#york: alice",
		"Error: usage: users <channel>",
		"alice is identified as alice",
		"bob is not identified",
		"I don't know whether dave is identified",
	}, r.replies)
}
