package handler

import (
	"context"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Dispatcher is the inbound boundary: it classifies messages, resolves a
// handler, and runs it as an independent goroutine so a slow handler never
// blocks dispatch for other commands or rooms. Handler failures, including
// panics, stop at this boundary.
type Dispatcher struct {
	registry port.Registry
	trigger  string
	timeout  time.Duration
}

func NewDispatcher(registry port.Registry, trigger string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: registry, trigger: trigger, timeout: timeout}
}

func (d *Dispatcher) Handle(message *domain.Message) {
	cmd, ok := domain.ParseCommand(d.trigger, message)
	if !ok {
		return
	}

	log.Debug().Str("command", cmd.Name).Str("room", message.Room).Msg("received command")

	commandHandler, err := d.registry.Resolve(cmd.Name, message.Room)
	if err != nil {
		log.Debug().Str("command", cmd.Name).Str("room", message.Room).Msg("no handler for command")
		return
	}

	go d.run(commandHandler, cmd)
}

func (d *Dispatcher) run(commandHandler port.Command, cmd *domain.Command) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("command", cmd.Name).Msg("handler panicked")
		}
	}()

	if err := commandHandler.Respond(context.Background(), d.timeout, cmd); err != nil {
		log.Err(err).Str("command", cmd.Name).Msg("failed to respond to command")
	}
}
