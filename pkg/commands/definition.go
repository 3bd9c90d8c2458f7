package commands

import "context"

// Handler runs one command invocation.
type Handler func(ctx context.Context, ev *Event) error

type Definition struct {
	Name    string
	Help    string
	Plugin  string
	Handler Handler
}
