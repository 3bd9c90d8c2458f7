// csbot - plugin-driven IRC bot
// License: MIT
//
// Copyright (c) 2026 csbot contributors

package hooks

import (
	"context"
	"fmt"
	"slices"

	"github.com/csyork/csbot/pkg/logger"
)

// Handler is the untyped callback stored on the bus.
type Handler func(ctx context.Context, payload any) error

// Registration tracks a handler with the plugin that owns it.
type Registration struct {
	Plugin  string
	Handler Handler
}

// Bus maps hook names to their handlers in registration order. It is written
// while plugins load and only read afterwards, so it needs no locking.
type Bus struct {
	hooks map[string][]Registration
}

func NewBus() *Bus {
	return &Bus{hooks: make(map[string][]Registration)}
}

// Subscribe appends handler to hook. Any number of plugins may subscribe to
// the same hook.
func (b *Bus) Subscribe(hook, plugin string, handler Handler) {
	if handler == nil {
		return
	}
	b.hooks[hook] = append(b.hooks[hook], Registration{Plugin: plugin, Handler: handler})
}

// Subscribers returns the plugin names subscribed to hook, in order.
func (b *Bus) Subscribers(hook string) []string {
	regs := b.hooks[hook]
	names := make([]string, 0, len(regs))
	for _, r := range regs {
		names = append(names, r.Plugin)
	}
	return names
}

// Hooks returns every hook name with at least one subscriber.
func (b *Bus) Hooks() []string {
	names := make([]string, 0, len(b.hooks))
	for name := range b.hooks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Broadcast calls every handler for hook in order. A handler that fails or
// panics is logged and skipped; it cannot stop delivery to the rest.
func (b *Bus) Broadcast(ctx context.Context, hook string, payload any) {
	for _, reg := range b.hooks[hook] {
		panicked, err := call(ctx, reg.Handler, payload)
		switch {
		case panicked:
			logger.ErrorCF("hooks", "Hook panic",
				map[string]any{
					"hook":    hook,
					"handler": reg.Plugin,
					"panic":   err.Error(),
				})
		case err != nil:
			logger.WarnCF("hooks", "Hook error",
				map[string]any{
					"hook":    hook,
					"handler": reg.Plugin,
					"error":   err.Error(),
				})
		}
	}
}

func call(ctx context.Context, h Handler, payload any) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
			panicked = true
		}
	}()
	return false, h(ctx, payload)
}

// Typed adapts a handler for one payload type. A payload of any other type is
// reported as an error instead of reaching fn.
func Typed[T any](fn func(context.Context, *T) error) Handler {
	return func(ctx context.Context, payload any) error {
		ev, ok := payload.(*T)
		if !ok {
			var zero T
			return fmt.Errorf("unexpected payload %T, want *%T", payload, zero)
		}
		return fn(ctx, ev)
	}
}

// Capabilities returns the hook subscriptions implied by the interfaces p
// implements.
func Capabilities(p any) map[string]Handler {
	subs := make(map[string]Handler)
	if h, ok := p.(MessageHook); ok {
		subs[HookMessage] = Typed(h.OnMessage)
	}
	if h, ok := p.(ActionHook); ok {
		subs[HookAction] = Typed(h.OnAction)
	}
	if h, ok := p.(JoinHook); ok {
		subs[HookJoin] = Typed(h.OnJoin)
	}
	if h, ok := p.(PartHook); ok {
		subs[HookPart] = Typed(h.OnPart)
	}
	if h, ok := p.(QuitHook); ok {
		subs[HookQuit] = Typed(h.OnQuit)
	}
	if h, ok := p.(NickHook); ok {
		subs[HookNick] = Typed(h.OnNick)
	}
	if h, ok := p.(IdentifiedHook); ok {
		subs[HookIdentified] = Typed(h.OnIdentified)
	}
	if h, ok := p.(TopicHook); ok {
		subs[HookTopic] = Typed(h.OnTopic)
	}
	if h, ok := p.(NamesHook); ok {
		subs[HookNames] = Typed(h.OnNames)
	}
	if h, ok := p.(CronHook); ok {
		cron := Typed(h.OnCron)
		subs[HookCronHourly] = cron
		subs[HookCronDaily] = cron
		subs[HookCronWeekly] = cron
	}
	return subs
}
