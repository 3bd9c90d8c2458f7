package plugin

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/hooks"
)

type testPlugin struct {
	Base
	name       string
	registerFn func(*Registrar) error
	setupFn    func() error
	teardownFn func() error
}

func (p *testPlugin) Name() string {
	return p.name
}

func (p *testPlugin) Register(r *Registrar) error {
	if p.registerFn != nil {
		return p.registerFn(r)
	}
	return nil
}

func (p *testPlugin) Setup(context.Context) error {
	if p.setupFn != nil {
		return p.setupFn()
	}
	return nil
}

func (p *testPlugin) Teardown(context.Context) error {
	if p.teardownFn != nil {
		return p.teardownFn()
	}
	return nil
}

// greeter implements a capability interface instead of registering hooks.
type greeter struct {
	Base
	seen []string
}

func (g *greeter) Name() string { return "greeter" }

func (g *greeter) OnJoin(_ context.Context, ev *hooks.Join) error {
	g.seen = append(g.seen, ev.Channel)
	return nil
}

type recordingHost struct {
	hooks []string
	nick  string
}

func (h *recordingHost) Emit(hook string, _ any) {
	h.hooks = append(h.hooks, hook)
}

func (h *recordingHost) Nick() string {
	return h.nick
}

type nopResponder struct {
	replies []string
}

func (r *nopResponder) Reply(_ *commands.Event, text string, _ bool) {
	r.replies = append(r.replies, text)
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(map[string]string{"greeting": "hi"}, map[string]map[string]string{
		"audit": {"greeting": "hello"},
	})
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}
	return cfg
}

func TestNewManager(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	if m == nil {
		t.Fatal("expected manager")
	}
	if m.Hooks() == nil || m.Commands() == nil {
		t.Fatal("expected non-nil hook bus and command table")
	}
	if len(m.Names()) != 0 {
		t.Fatalf("expected empty names, got %v", m.Names())
	}
}

func TestRegisterPluginCommandAndHook(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	var got []string
	p := &testPlugin{
		name: "audit",
		registerFn: func(r *Registrar) error {
			r.Command("ping", "replies pong", func(_ context.Context, ev *commands.Event) error {
				ev.Reply("pong")
				return nil
			})
			r.Hook("audit.custom", func(_ context.Context, payload any) error {
				got = append(got, payload.(string))
				return nil
			})
			return nil
		},
	}

	if err := m.Register(p); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if names := m.Names(); len(names) != 1 || names[0] != "audit" {
		t.Fatalf("unexpected names: %v", names)
	}

	resp := &nopResponder{}
	res := m.DispatchCommand(context.Background(), commands.NewEvent(resp, "a!b@c", "#chan", "ping", false, ""))
	if !res.Matched || res.Plugin != "audit" {
		t.Fatalf("unexpected dispatch result: %+v", res)
	}
	if len(resp.replies) != 1 || resp.replies[0] != "pong" {
		t.Fatalf("unexpected replies: %v", resp.replies)
	}

	m.Broadcast(context.Background(), "audit.custom", "payload")
	if len(got) != 1 || got[0] != "payload" {
		t.Fatalf("expected custom hook delivery, got %v", got)
	}
}

func TestRegisterSubscribesCapabilities(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	g := &greeter{}
	if err := m.Register(g); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if subs := m.Hooks().Subscribers(hooks.HookJoin); len(subs) != 1 || subs[0] != "greeter" {
		t.Fatalf("expected greeter subscribed to join, got %v", subs)
	}
	if subs := m.Hooks().Subscribers(hooks.HookMessage); len(subs) != 0 {
		t.Fatalf("greeter must not receive messages, got %v", subs)
	}

	m.Broadcast(context.Background(), hooks.HookJoin, &hooks.Join{User: "a!b@c", Channel: "#x"})
	if len(g.seen) != 1 || g.seen[0] != "#x" {
		t.Fatalf("unexpected joins: %v", g.seen)
	}
}

// doubleGreeter also asks for the join hook it gets as a capability.
type doubleGreeter struct {
	greeter
	explicit int
}

func (g *doubleGreeter) Register(r *Registrar) error {
	r.Hook(hooks.HookJoin, func(context.Context, any) error {
		g.explicit++
		return nil
	})
	r.Hook(hooks.HookTopic, func(context.Context, any) error {
		g.explicit++
		return nil
	})
	return nil
}

func TestRegisterSkipsHookCoveredByCapability(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	g := &doubleGreeter{}
	if err := m.Register(g); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if subs := m.Hooks().Subscribers(hooks.HookJoin); len(subs) != 1 {
		t.Fatalf("expected one join subscription, got %v", subs)
	}

	ctx := context.Background()
	m.Broadcast(ctx, hooks.HookJoin, &hooks.Join{User: "a!b@c", Channel: "#x"})
	m.Broadcast(ctx, hooks.HookTopic, &hooks.Topic{Channel: "#x"})
	if len(g.seen) != 1 {
		t.Fatalf("expected one join delivery, got %v", g.seen)
	}
	if g.explicit != 1 {
		t.Fatalf("expected only the uncovered explicit hook to run, got %d calls", g.explicit)
	}
}

func TestRegisterRejectsNilPlugin(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	if err := m.Register(nil); err == nil {
		t.Fatal("expected error for nil plugin")
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	if err := m.Register(&testPlugin{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	if err := m.Register(&testPlugin{name: "dup"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	err := m.Register(&testPlugin{name: "dup"})
	if !errors.Is(err, ErrDuplicatePlugin) {
		t.Fatalf("expected ErrDuplicatePlugin, got %v", err)
	}
	if got := m.Names(); len(got) != 1 {
		t.Fatalf("duplicate must not be added, got %v", got)
	}
}

func TestRegisterErrorLeavesNoTrace(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	err := m.Register(&testPlugin{
		name: "broken",
		registerFn: func(r *Registrar) error {
			r.Command("half", "", func(context.Context, *commands.Event) error { return nil })
			return errors.New("boom")
		},
	})
	if err == nil {
		t.Fatal("expected register error")
	}
	if len(m.Names()) != 0 {
		t.Fatalf("expected no plugins, got %v", m.Names())
	}
	if _, ok := m.Commands().Lookup("half"); ok {
		t.Fatal("commands of a failed plugin must not be registered")
	}
}

func TestCommandClashKeepsFirstPlugin(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	mk := func(name string) *testPlugin {
		return &testPlugin{
			name: name,
			registerFn: func(r *Registrar) error {
				r.Command("same", "", func(context.Context, *commands.Event) error { return nil })
				return nil
			},
		}
	}
	if err := m.Register(mk("first")); err != nil {
		t.Fatalf("Register(first) error = %v", err)
	}
	if err := m.Register(mk("second")); err != nil {
		t.Fatalf("Register(second) error = %v", err)
	}
	def, ok := m.Commands().Lookup("same")
	if !ok || def.Plugin != "first" {
		t.Fatalf("expected first plugin to own command, got %+v", def)
	}
}

func TestLoadPassesEnv(t *testing.T) {
	host := &recordingHost{}
	m := NewManager(newTestConfig(t), host)

	var greeting, shared string
	err := m.Load("audit", func(env *Env) (Plugin, error) {
		greeting, _ = env.ConfigGet("greeting")
		shared = env.Config().GetOr("nickname", "")
		env.Emit("audit.loaded", nil)
		return &testPlugin{name: env.Name()}, nil
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if greeting != "hello" {
		t.Fatalf("expected section value, got %q", greeting)
	}
	if shared != "csyorkbot" {
		t.Fatalf("expected DEFAULT fallback, got %q", shared)
	}
	if len(host.hooks) != 1 || host.hooks[0] != "audit.loaded" {
		t.Fatalf("expected emitted hook, got %v", host.hooks)
	}
}

func TestEnvBotNick(t *testing.T) {
	tests := []struct {
		name string
		host Host
		want string
	}{
		{name: "no host falls back to config", host: nil, want: "csyorkbot"},
		{name: "host without a nick yet", host: &recordingHost{}, want: "csyorkbot"},
		{name: "nick accepted by the server", host: &recordingHost{nick: "csyorkbot_"}, want: "csyorkbot_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(newTestConfig(t), tt.host)
			var env *Env
			err := m.Load("audit", func(e *Env) (Plugin, error) {
				env = e
				return &testPlugin{name: e.Name()}, nil
			})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := env.BotNick(); got != tt.want {
				t.Fatalf("BotNick() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadDuplicateSkipsFactory(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	constructed := 0
	factory := func(env *Env) (Plugin, error) {
		constructed++
		return &testPlugin{name: env.Name()}, nil
	}
	if err := m.Load("once", factory); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := m.Load("once", factory); !errors.Is(err, ErrDuplicatePlugin) {
		t.Fatalf("expected ErrDuplicatePlugin, got %v", err)
	}
	if constructed != 1 {
		t.Fatalf("factory ran %d times, want 1", constructed)
	}
}

func TestLoadRejectsMismatchedName(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	err := m.Load("expected", func(*Env) (Plugin, error) {
		return &testPlugin{name: "other"}, nil
	})
	if err == nil {
		t.Fatal("expected name mismatch error")
	}
}

func TestLoadAllSkipsFailures(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	ok := func(env *Env) (Plugin, error) { return &testPlugin{name: env.Name()}, nil }
	n := m.LoadAll(
		Entry{Name: "a", Factory: ok},
		Entry{Name: "bad", Factory: func(*Env) (Plugin, error) { return nil, errors.New("nope") }},
		Entry{Name: "a", Factory: ok},
		Entry{Name: "b", Factory: ok},
	)
	if n != 2 {
		t.Fatalf("loaded %d, want 2", n)
	}
	if got := m.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestSetupAndTeardownOrder(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	var calls []string
	for _, name := range []string{"one", "two", "three"} {
		p := &testPlugin{
			name:       name,
			setupFn:    func() error { calls = append(calls, "setup:"+name); return nil },
			teardownFn: func() error { calls = append(calls, "teardown:"+name); return nil },
		}
		if err := m.Register(p); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	m.SetupAll(context.Background())
	m.TeardownAll(context.Background())

	want := []string{
		"setup:one", "setup:two", "setup:three",
		"teardown:three", "teardown:two", "teardown:one",
	}
	if !slices.Equal(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
}

func TestSetupFailureDoesNotStopOthers(t *testing.T) {
	m := NewManager(newTestConfig(t), nil)
	var ran []string
	_ = m.Register(&testPlugin{name: "panics", setupFn: func() error { panic("setup exploded") }})
	_ = m.Register(&testPlugin{name: "fails", setupFn: func() error { return errors.New("no") }})
	_ = m.Register(&testPlugin{name: "fine", setupFn: func() error { ran = append(ran, "fine"); return nil }})

	m.SetupAll(context.Background())
	if !slices.Equal(ran, []string{"fine"}) {
		t.Fatalf("expected remaining plugin to set up, got %v", ran)
	}
}
