package port

import (
	"context"
	"sobot/internal/core/domain"
)

type Sender interface {
	// PostMessage posts text to a room and returns the posted message ID.
	PostMessage(ctx context.Context, room, text string) (string, error)
	// PostReply posts text to the room a command originated from, threaded to the originating
	// message where the transport supports it.
	PostReply(ctx context.Context, command *domain.Command, text string) (string, error)
}
