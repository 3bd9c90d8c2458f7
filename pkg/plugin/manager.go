// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

package plugin

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/csyork/csbot/pkg/commands"
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/hooks"
	"github.com/csyork/csbot/pkg/logger"
)

// ErrDuplicatePlugin is returned when a plugin name is already taken.
var ErrDuplicatePlugin = errors.New("duplicate plugin name")

// Manager owns the loaded plugins, the command table and the hook bus. All
// loading happens before the bot connects; afterwards it is only read.
type Manager struct {
	cfg      *config.Config
	host     Host
	commands *commands.Table
	hooks    *hooks.Bus
	plugins  map[string]Plugin
	names    []string
}

// NewManager creates an empty manager. host may be nil when nothing emits
// hooks, as in tests.
func NewManager(cfg *config.Config, host Host) *Manager {
	return &Manager{
		cfg:      cfg,
		host:     host,
		commands: commands.NewTable(),
		hooks:    hooks.NewBus(),
		plugins:  make(map[string]Plugin),
	}
}

func (m *Manager) Commands() *commands.Table {
	return m.commands
}

func (m *Manager) Hooks() *hooks.Bus {
	return m.hooks
}

// Names returns loaded plugin names in load order.
func (m *Manager) Names() []string {
	return slices.Clone(m.names)
}

func (m *Manager) Get(name string) (Plugin, bool) {
	p, ok := m.plugins[name]
	return p, ok
}

// Load constructs a plugin from f and registers it under name. A taken name
// is rejected before f runs, so the losing plugin is never constructed.
func (m *Manager) Load(name string, f Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("plugin name is required")
	}
	if f == nil {
		return fmt.Errorf("plugin %q has no factory", name)
	}
	if _, exists := m.plugins[name]; exists {
		logger.ErrorCF("plugins", "Duplicate plugin name: "+name, map[string]any{"plugin": name})
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}

	env := &Env{name: name, config: m.cfg.Section(name), manager: m}
	p, err := f(env)
	if err != nil {
		return fmt.Errorf("construct plugin %q: %w", name, err)
	}
	if p == nil {
		return fmt.Errorf("construct plugin %q: factory returned nil", name)
	}
	if got := p.Name(); got != name {
		return fmt.Errorf("plugin %q reports name %q", name, got)
	}
	return m.Register(p)
}

// Register adds an already constructed plugin, applying its declared
// commands and hooks. Commands that clash with an earlier plugin are logged
// and dropped; the plugin still loads.
func (m *Manager) Register(p Plugin) error {
	if p == nil {
		return errors.New("plugin is nil")
	}
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return errors.New("plugin name is required")
	}
	if _, exists := m.plugins[name]; exists {
		logger.ErrorCF("plugins", "Duplicate plugin name: "+name, map[string]any{"plugin": name})
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}

	reg := &Registrar{plugin: name}
	if err := p.Register(reg); err != nil {
		return fmt.Errorf("register plugin %q: %w", name, err)
	}

	m.plugins[name] = p
	m.names = append(m.names, name)

	for _, def := range reg.commands {
		m.commands.Register(def)
	}
	// Subscribe in a fixed order so hook delivery order only depends on load order.
	caps := hooks.Capabilities(p)
	for _, hook := range slices.Sorted(maps.Keys(caps)) {
		m.hooks.Subscribe(hook, name, caps[hook])
	}
	// a capability already delivers its hook once; an explicit duplicate would double it
	for _, sub := range reg.hooks {
		if _, covered := caps[sub.hook]; covered {
			logger.DebugCF("plugins", "Explicit hook already covered by capability",
				map[string]any{
					"plugin": name,
					"hook":   sub.hook,
				})
			continue
		}
		m.hooks.Subscribe(sub.hook, name, sub.handler)
	}

	logger.InfoCF("plugins", "Loaded plugin: "+name,
		map[string]any{
			"plugin":   name,
			"commands": len(reg.commands),
		})
	return nil
}

// Entry pairs a plugin name with its factory.
type Entry struct {
	Name    string
	Factory Factory
}

// LoadAll loads entries in order. Failures are logged and skipped so one
// broken plugin cannot stop the rest; the number loaded is returned.
func (m *Manager) LoadAll(entries ...Entry) int {
	loaded := 0
	for _, e := range entries {
		if err := m.Load(e.Name, e.Factory); err != nil {
			if !errors.Is(err, ErrDuplicatePlugin) {
				logger.ErrorCF("plugins", "Failed to load plugin",
					map[string]any{
						"plugin": e.Name,
						"error":  err.Error(),
					})
			}
			continue
		}
		loaded++
	}
	return loaded
}

// DispatchCommand hands ev to the one handler registered for its name.
func (m *Manager) DispatchCommand(ctx context.Context, ev *commands.Event) commands.Result {
	return m.commands.Dispatch(ctx, ev)
}

// Broadcast delivers payload to every plugin subscribed to hook.
func (m *Manager) Broadcast(ctx context.Context, hook string, payload any) {
	m.hooks.Broadcast(ctx, hook, payload)
}

// SetupAll runs Setup on every plugin in load order.
func (m *Manager) SetupAll(ctx context.Context) {
	for _, name := range m.names {
		p := m.plugins[name]
		if err := lifecycle(ctx, p.Setup); err != nil {
			logger.ErrorCF("plugins", "Plugin setup failed",
				map[string]any{
					"plugin": name,
					"error":  err.Error(),
				})
		}
	}
}

// TeardownAll runs Teardown on every plugin in reverse load order.
func (m *Manager) TeardownAll(ctx context.Context) {
	for i := len(m.names) - 1; i >= 0; i-- {
		name := m.names[i]
		p := m.plugins[name]
		if err := lifecycle(ctx, p.Teardown); err != nil {
			logger.ErrorCF("plugins", "Plugin teardown failed",
				map[string]any{
					"plugin": name,
					"error":  err.Error(),
				})
		}
	}
}

func lifecycle(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
