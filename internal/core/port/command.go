package port

import (
	"context"
	"sobot/internal/core/domain"
	"time"
)

type Command interface {
	// Respond processes a parsed command within a specified timeout and posts any replies to the
	// originating room.
	Respond(ctx context.Context, timeout time.Duration, command *domain.Command) error
	// GetCommand retrieves the command name associated with a specific command handler.
	GetCommand() string
	// GetDescription returns a one-line description of the handler for listings.
	GetDescription() string
}

type Registry interface {
	// RegisterBuiltIn adds a privileged handler answering in every room. Registration fails when
	// the name is already taken.
	RegisterBuiltIn(handler Command) error
	// RegisterPlugin adds a handler that only answers in rooms it has been enabled for.
	// Registration fails when the name is already taken by a built-in or another plugin.
	RegisterPlugin(handler Command) error
	// Resolve returns the handler for a command name within a room's namespace, built-ins first.
	Resolve(command, room string) (Command, error)
	// EnableForRoom turns a registered plugin on for one room.
	EnableForRoom(ctx context.Context, room, plugin string) error
	// DisableForRoom turns a registered plugin off for one room.
	DisableForRoom(ctx context.Context, room, plugin string) error
	// ListPlugins returns the names of all registered plugins.
	ListPlugins() []string
	// EnabledForRoom returns the names of the plugins enabled for a room.
	EnabledForRoom(room string) []string
}
