package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const enabledNamespace = "plugin_enabled"

// Registry maps command names to handlers. Built-ins answer in every room and
// are never shadowed; plugins only answer in rooms they are enabled for.
// Duplicate names are rejected at registration, so within one room's namespace
// every name resolves to at most one handler.
type Registry struct {
	mu       sync.RWMutex
	builtIns map[string]port.Command
	plugins  map[string]port.Command
	enabled  map[string]map[string]bool
	kv       port.KeyValue
}

// NewRegistry creates a registry. kv persists per-room plugin enablement and
// may be nil to keep enablement in memory only.
func NewRegistry(kv port.KeyValue) *Registry {
	return &Registry{
		builtIns: make(map[string]port.Command),
		plugins:  make(map[string]port.Command),
		enabled:  make(map[string]map[string]bool),
		kv:       kv,
	}
}

func (r *Registry) RegisterBuiltIn(handler port.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := handler.GetCommand()
	if _, ok := r.builtIns[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateBuiltIn, name)
	}
	if _, ok := r.plugins[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateBuiltIn, name)
	}

	log.Info().Str("handler", name).Msg("adding built-in handler to registry")
	r.builtIns[name] = handler

	return nil
}

func (r *Registry) RegisterPlugin(handler port.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := handler.GetCommand()
	if _, ok := r.builtIns[name]; ok {
		return fmt.Errorf("%w: %s shadows a built-in", domain.ErrDuplicatePlugin, name)
	}
	if _, ok := r.plugins[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicatePlugin, name)
	}

	log.Info().Str("handler", name).Msg("adding plugin handler to registry")
	r.plugins[name] = handler

	return nil
}

// Resolve returns the handler answering to a command name within a room's
// namespace. Built-ins are checked first and apply regardless of room.
func (r *Registry) Resolve(command, room string) (port.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if handler, ok := r.builtIns[command]; ok {
		return handler, nil
	}

	if handler, ok := r.plugins[command]; ok && r.enabled[room][command] {
		return handler, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrHandlerNotFound, command)
}

func (r *Registry) EnableForRoom(ctx context.Context, room, plugin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[plugin]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPlugin, plugin)
	}

	if r.enabled[room] == nil {
		r.enabled[room] = make(map[string]bool)
	}
	r.enabled[room][plugin] = true

	log.Info().Str("room", room).Str("plugin", plugin).Msg("plugin enabled")

	return r.persistLocked(ctx, room)
}

func (r *Registry) DisableForRoom(ctx context.Context, room, plugin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[plugin]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPlugin, plugin)
	}

	delete(r.enabled[room], plugin)

	log.Info().Str("room", room).Str("plugin", plugin).Msg("plugin disabled")

	return r.persistLocked(ctx, room)
}

// Restore loads a room's persisted enablement set. Names of plugins that are
// no longer registered are dropped silently.
func (r *Registry) Restore(ctx context.Context, room string) error {
	if r.kv == nil {
		return nil
	}

	value, ok, err := r.kv.Get(ctx, enabledNamespace, room)
	if err != nil {
		return fmt.Errorf("restoring plugin enablement: %w", err)
	}
	if !ok || value == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, plugin := range strings.Split(value, ",") {
		if _, registered := r.plugins[plugin]; !registered {
			log.Warn().Str("room", room).Str("plugin", plugin).Msg("persisted plugin not registered, skipping")
			continue
		}

		if r.enabled[room] == nil {
			r.enabled[room] = make(map[string]bool)
		}
		r.enabled[room][plugin] = true
	}

	return nil
}

func (r *Registry) ListPlugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *Registry) EnabledForRoom(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.enabledForRoomLocked(room)
}

func (r *Registry) enabledForRoomLocked(room string) []string {
	names := make([]string, 0, len(r.enabled[room]))
	for name := range r.enabled[room] {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *Registry) persistLocked(ctx context.Context, room string) error {
	if r.kv == nil {
		return nil
	}

	if err := r.kv.Set(ctx, enabledNamespace, room, strings.Join(r.enabledForRoomLocked(room), ",")); err != nil {
		return fmt.Errorf("persisting plugin enablement: %w", err)
	}

	return nil
}
