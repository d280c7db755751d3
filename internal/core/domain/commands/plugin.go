package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// PluginHandler exposes per-room plugin enablement as a built-in command.
// Listing is open to everyone, toggling requires admin rights.
type PluginHandler struct {
	sender   port.Sender
	registry port.Registry
	store    port.AdminStore
	command  string
}

func NewPluginHandler(sender port.Sender, registry port.Registry, store port.AdminStore, command string) *PluginHandler {
	return &PluginHandler{sender: sender, registry: registry, store: store, command: command}
}

func (h *PluginHandler) GetCommand() string {
	return h.command
}

func (h *PluginHandler) GetDescription() string {
	return "Lists, enables, and disables plugins for this room"
}

func (h *PluginHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	l := log.With().
		Str("room", cmd.Message.Room).
		Int64("userId", cmd.Message.UserID).
		Str("command", h.GetCommand()).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	action := cmd.Param(0)

	if action == "" || action == "list" {
		return h.list(ctx, cmd)
	}

	if action != "enable" && action != "disable" {
		return nil
	}

	isAdmin, err := h.store.IsAdmin(ctx, cmd.Message.Room, cmd.Message.UserID)
	if err != nil {
		return fmt.Errorf("checking admin rights: %w", err)
	}
	if !isAdmin {
		l.Info().Str("action", action).Msg("unauthorized plugin toggle")
		_, err := h.sender.PostReply(ctx, cmd, unauthorizedReply)
		return err
	}

	plugin := cmd.Param(1)
	if plugin == "" {
		_, err := h.sender.PostReply(ctx, cmd, fmt.Sprintf("Usage: %s enable|disable <plugin>", h.command))
		return err
	}

	if action == "enable" {
		err = h.registry.EnableForRoom(ctx, cmd.Message.Room, plugin)
	} else {
		err = h.registry.DisableForRoom(ctx, cmd.Message.Room, plugin)
	}

	if err != nil {
		l.Warn().Err(err).Str("plugin", plugin).Msg("plugin toggle failed")
		_, err := h.sender.PostReply(ctx, cmd, fmt.Sprintf("No such plugin: %s", plugin))
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room,
		fmt.Sprintf("Plugin %s is now %sd for this room.", plugin, action))
	return err
}

func (h *PluginHandler) list(ctx context.Context, cmd *domain.Command) error {
	registered := h.registry.ListPlugins()
	if len(registered) == 0 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "There are no registered plugins")
		return err
	}

	enabled := make(map[string]bool)
	for _, name := range h.registry.EnabledForRoom(cmd.Message.Room) {
		enabled[name] = true
	}

	parts := make([]string, len(registered))
	for i, name := range registered {
		if enabled[name] {
			parts[i] = "**" + name + "**"
		} else {
			parts[i] = name
		}
	}

	_, err := h.sender.PostMessage(ctx, cmd.Message.Room,
		"Plugins (enabled in bold): "+strings.Join(parts, ", "))
	return err
}
