package handler

import (
	"context"
	"strconv"
	"time"

	"sobot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleTelegram adapts a telegram update to the transport-neutral message
// model and dispatches it. Rooms map to chat IDs.
func (d *Dispatcher) HandleTelegram(_ context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	message := &domain.Message{
		ID:        strconv.Itoa(update.Message.ID),
		Room:      strconv.FormatInt(update.Message.Chat.ID, 10),
		Text:      update.Message.Text,
		Timestamp: time.Unix(int64(update.Message.Date), 0),
	}

	if update.Message.From != nil {
		message.UserID = update.Message.From.ID
		message.UserName = getUserNameOrFirstName(update.Message.From)
	}

	d.Handle(message)
}

func getUserNameOrFirstName(user *models.User) string {
	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
