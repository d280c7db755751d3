package sender

import (
	"context"
	"fmt"
	"strconv"

	"sobot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramSender posts through the telegram API. Rooms are chat IDs in
// decimal string form.
type TelegramSender struct {
	bot *bot.Bot
}

func NewTelegramSender(b *bot.Bot) *TelegramSender {
	return &TelegramSender{bot: b}
}

func (s *TelegramSender) PostMessage(ctx context.Context, room, text string) (string, error) {
	chatID, err := strconv.ParseInt(room, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid telegram room %q: %w", room, err)
	}

	message, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return "", err
	}

	return strconv.Itoa(message.ID), nil
}

func (s *TelegramSender) PostReply(ctx context.Context, command *domain.Command, text string) (string, error) {
	chatID, err := strconv.ParseInt(command.Message.Room, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid telegram room %q: %w", command.Message.Room, err)
	}

	messageID, err := strconv.Atoi(command.Message.ID)
	if err != nil {
		// no threading target, degrade to a plain post
		return s.PostMessage(ctx, command.Message.Room, text)
	}

	message, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyParameters: &models.ReplyParameters{
			MessageID: messageID,
			ChatID:    chatID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrSendingReplyFailed, err)
	}

	return strconv.Itoa(message.ID), nil
}
