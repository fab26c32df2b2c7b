// Package plugins defines the sink boundary between the core and any
// external plugin host: a registry of named handler initializers plus a
// dispatcher that fans completed flow records out to the handlers
// enabled by configuration. The core never loads or executes plugin
// code itself.
package plugins

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/els0r/fluere/pkg/types"
	"github.com/els0r/telemetry/logging"
)

// Handler is the lifecycle contract an in-process plugin adapter
// fulfills. ProcessRecord is called once per exported flow record, in
// export order; once it returns an error, the handler receives no
// further records of that batch.
type Handler interface {
	Name() string
	ProcessRecord(record *types.FlowRecord) error
	Cleanup() error
}

// Initializer is a function that creates a handler instance from the
// plugin's extra arguments in the configuration file
type Initializer func(ctx context.Context, args map[string]string) (Handler, error)

// Registry is a singleton holding all registered handler initializers
type Registry struct {
	sync.RWMutex
	initializers map[string]Initializer
}

var singleton *Registry
var once sync.Once

// GetRegistry returns the singleton Registry instance. Safe for
// concurrent use; repeated calls return the same instance.
func GetRegistry() *Registry {
	once.Do(func() {
		singleton = &Registry{
			initializers: make(map[string]Initializer),
		}
	})
	return singleton
}

// Register registers a handler initializer under a given name. It is
// meant to be called from a plugin adapter's init function and panics if
// the name was already taken.
func Register(name string, initFn Initializer) {
	r := GetRegistry()

	r.Lock()
	defer r.Unlock()

	if _, exists := r.initializers[name]; exists {
		panic(fmt.Sprintf("%q plugin already registered", name))
	}
	r.initializers[name] = initFn
}

// Available returns the names of all registered plugins
func Available() []string {
	r := GetRegistry()

	r.RLock()
	names := make([]string, 0, len(r.initializers))
	for name := range r.initializers {
		names = append(names, name)
	}
	r.RUnlock()

	sort.Strings(names)
	return names
}

func (r *Registry) get(name string) (Initializer, bool) {
	r.RLock()
	initFn, exists := r.initializers[name]
	r.RUnlock()

	return initFn, exists
}

// Dispatcher fans exported records out to the instantiated handlers
type Dispatcher struct {
	handlers []Handler
	ctx      context.Context
}

// NewDispatcher instantiates the named plugins from the registry.
// Unregistered names are skipped with a warning: the configuration file
// may well describe plugins only the external host knows about.
func NewDispatcher(ctx context.Context, enabled map[string]map[string]string) *Dispatcher {
	logger := logging.FromContext(ctx)
	registry := GetRegistry()

	d := &Dispatcher{ctx: ctx}
	for name, args := range enabled {
		initFn, exists := registry.get(name)
		if !exists {
			logger.With("plugin", name).Warn("plugin not registered in-process, leaving it to the external host")
			continue
		}

		handler, err := initFn(ctx, args)
		if err != nil {
			logger.With("plugin", name).Errorf("failed to initialize plugin: %v", err)
			continue
		}
		d.handlers = append(d.handlers, handler)
	}

	return d
}

// Submit hands a batch of exported records to every handler
func (d *Dispatcher) Submit(records []*types.FlowRecord) {
	logger := logging.FromContext(d.ctx)

	for _, handler := range d.handlers {
		for _, record := range records {
			if err := handler.ProcessRecord(record); err != nil {
				logger.With("plugin", handler.Name()).Errorf("failed to process record: %v", err)
				break
			}
		}
	}
}

// Cleanup runs the cleanup stage of every handler
func (d *Dispatcher) Cleanup() {
	logger := logging.FromContext(d.ctx)

	for _, handler := range d.handlers {
		if err := handler.Cleanup(); err != nil {
			logger.With("plugin", handler.Name()).Errorf("cleanup failed: %v", err)
		}
	}
}
