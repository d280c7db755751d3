package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"
)

type UptimeHandler struct {
	sender  port.Sender
	command string
	started time.Time
}

func NewUptimeHandler(sender port.Sender, command string, started time.Time) *UptimeHandler {
	return &UptimeHandler{sender: sender, command: command, started: started}
}

func (h *UptimeHandler) GetCommand() string {
	return h.command
}

func (h *UptimeHandler) GetDescription() string {
	return "Posts how long the bot has been running"
}

func (h *UptimeHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := h.sender.PostMessage(ctx, cmd.Message.Room,
		fmt.Sprintf("Running for %s.", formatUptime(time.Since(h.started))))
	return err
}

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
