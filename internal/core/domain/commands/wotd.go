package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"golang.org/x/net/html"
)

// WotdHandler posts the word of the day from dictionary.com.
type WotdHandler struct {
	sender  port.Sender
	fetcher port.Fetcher
	command string

	feedURL string
}

func NewWotdHandler(sender port.Sender, fetcher port.Fetcher, command string) *WotdHandler {
	return &WotdHandler{
		sender:  sender,
		fetcher: fetcher,
		command: command,
		feedURL: "http://www.dictionary.com/wordoftheday/wotd.rss",
	}
}

func (h *WotdHandler) GetCommand() string {
	return h.command
}

func (h *WotdHandler) GetDescription() string {
	return "Gets the Word Of The Day from dictionary.com"
}

func (h *WotdHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := h.fetcher.Request(ctx, h.feedURL)
	if err != nil || res.Status != 200 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching the word of the day")
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, wotdMessage(res.Body))
	return err
}

// wotdMessage takes the item description of the feed, which reads
// "word: definition", and turns it into a dictionary link.
func wotdMessage(body []byte) string {
	doc, err := parseHTML(body)
	if err != nil {
		return "I dun goofed"
	}

	descriptions := findAll(doc, func(n *html.Node) bool {
		return isElement(n, "description")
	})
	// index 0 and 1 describe the channel and its image, the first item
	// starts at 2
	if len(descriptions) < 3 {
		return "I dun goofed"
	}

	word, definition, found := strings.Cut(textContent(descriptions[2]), ":")
	if !found {
		return "I dun goofed"
	}

	word = strings.TrimSpace(word)

	return fmt.Sprintf("**[%s](http://www.dictionary.com/browse/%s)**:%s",
		word, strings.ReplaceAll(word, " ", "-"), definition)
}
