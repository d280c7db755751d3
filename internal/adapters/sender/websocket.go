package sender

import (
	"context"
	"fmt"

	"sobot/internal/core/domain"
)

// Poster is the outbound half of the chat connection.
type Poster interface {
	Post(ctx context.Context, room, text string) (string, error)
}

type WebSocketSender struct {
	client Poster
}

func NewWebSocketSender(client Poster) *WebSocketSender {
	return &WebSocketSender{client: client}
}

func (s *WebSocketSender) PostMessage(ctx context.Context, room, text string) (string, error) {
	return s.client.Post(ctx, room, text)
}

// PostReply posts into the originating room. The chat protocol threads
// replies through a leading :<message id> marker; without an originating
// message ID this degrades to a plain post.
func (s *WebSocketSender) PostReply(ctx context.Context, command *domain.Command, text string) (string, error) {
	if command.Message.ID != "" {
		text = ":" + command.Message.ID + " " + text
	}

	id, err := s.client.Post(ctx, command.Message.Room, text)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrSendingReplyFailed, err)
	}

	return id, nil
}
