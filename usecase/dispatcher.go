package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Command is a parsed chat command scoped to the issuing user.
type Command struct {
	Name       string
	Keyword    string
	Args       string
	Workspace  string
	User       string
	Privileged bool
}

// CommandHandler runs one command and returns the reply text.
type CommandHandler func(ctx context.Context, cmd Command) (string, error)

// Dispatcher maps command keywords (and their aliases) to handlers.
type Dispatcher struct {
	handlers map[string]CommandHandler
	aliases  map[string]string
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]CommandHandler),
		aliases:  make(map[string]string),
	}
}

// Register binds name and every alias to handler. Keywords are case-insensitive.
func (d *Dispatcher) Register(name string, handler CommandHandler, aliases ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name = strings.ToLower(name)
	d.handlers[name] = handler
	d.aliases[name] = name
	for _, alias := range aliases {
		d.aliases[strings.ToLower(alias)] = name
	}
}

// Lookup resolves a keyword to its canonical command name and handler.
func (d *Dispatcher) Lookup(keyword string) (string, CommandHandler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.aliases[strings.ToLower(keyword)]
	if !ok {
		return "", nil, false
	}
	return name, d.handlers[name], true
}

// Names returns the canonical command names in sorted order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
