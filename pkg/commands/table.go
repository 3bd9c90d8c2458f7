package commands

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/csyork/csbot/pkg/logger"
)

// ErrHandlerPanic wraps a panic recovered from a command handler.
var ErrHandlerPanic = errors.New("command handler panicked")

// Table maps command names to exactly one handler each. It is filled while
// plugins load and only read afterwards.
type Table struct {
	defs map[string]Definition
}

func NewTable() *Table {
	return &Table{defs: make(map[string]Definition)}
}

// Register binds def.Name to def.Handler. A duplicate name is logged and
// rejected, leaving the first binding in place, so one bad plugin cannot stop
// the others from loading.
func (t *Table) Register(def Definition) bool {
	name := strings.TrimSpace(def.Name)
	if name == "" || def.Handler == nil {
		logger.ErrorCF("commands", "Invalid command definition",
			map[string]any{
				"command": def.Name,
				"plugin":  def.Plugin,
			})
		return false
	}
	if existing, ok := t.defs[name]; ok {
		logger.ErrorCF("commands", fmt.Sprintf("Command %s already registered", name),
			map[string]any{
				"command": name,
				"owner":   existing.Plugin,
				"plugin":  def.Plugin,
			})
		return false
	}
	def.Name = name
	t.defs[name] = def
	return true
}

func (t *Table) Lookup(name string) (Definition, bool) {
	def, ok := t.defs[name]
	return def, ok
}

// Names returns the registered command names, sorted.
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.defs))
}

// Len returns the number of registered commands.
func (t *Table) Len() int {
	return len(t.defs)
}

type Result struct {
	Matched bool
	Command string
	Plugin  string
	Err     error
}

// Dispatch runs the handler registered for ev.Command. An unknown command gets
// an error reply and nothing else. Handler errors and panics stop here: they
// are logged and reported in the Result, never propagated.
func (t *Table) Dispatch(ctx context.Context, ev *Event) Result {
	def, ok := t.defs[ev.Command]
	if !ok {
		ev.Error(fmt.Sprintf("Command %q not found", ev.Command))
		return Result{Matched: false, Command: ev.Command}
	}

	start := time.Now()
	err := invoke(ctx, def.Handler, ev)
	if err != nil {
		logger.ErrorCF("commands", "Command handler failed",
			map[string]any{
				"command":  def.Name,
				"plugin":   def.Plugin,
				"event_id": ev.ID,
				"user":     ev.User,
				"channel":  ev.Channel,
				"error":    err.Error(),
			})
	} else {
		logger.DebugCF("commands", "Command handled",
			map[string]any{
				"command":  def.Name,
				"plugin":   def.Plugin,
				"event_id": ev.ID,
				"duration": logger.Since(start),
			})
	}
	return Result{Matched: true, Command: def.Name, Plugin: def.Plugin, Err: err}
}

func invoke(ctx context.Context, h Handler, ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(ctx, ev)
}
