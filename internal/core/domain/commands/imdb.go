package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"golang.org/x/net/html"
)

// ImdbHandler searches and displays IMDB entries.
type ImdbHandler struct {
	sender  port.Sender
	fetcher port.Fetcher
	command string

	findURL string
}

func NewImdbHandler(sender port.Sender, fetcher port.Fetcher, command string) *ImdbHandler {
	return &ImdbHandler{
		sender:  sender,
		fetcher: fetcher,
		command: command,
		findURL: "http://www.imdb.com/xml/find?xml=1&nr=1&tt=on&q=%s",
	}
}

func (h *ImdbHandler) GetCommand() string {
	return h.command
}

func (h *ImdbHandler) GetDescription() string {
	return "Searches and displays IMDB entries"
}

func (h *ImdbHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	if !cmd.HasParams() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	query := url.QueryEscape(strings.Join(cmd.Params, " "))

	res, err := h.fetcher.Request(ctx, fmt.Sprintf(h.findURL, query))
	if err != nil || res.Status != 200 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed searching for that title")
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, imdbMessage(res.Body))
	return err
}

func imdbMessage(body []byte) string {
	doc, err := parseHTML(body)
	if err != nil {
		return "I cannot find that title."
	}

	if findFirst(doc, func(n *html.Node) bool { return isElement(n, "resultset") }) == nil {
		return "I cannot find that title."
	}

	entity := findFirst(doc, func(n *html.Node) bool { return isElement(n, "imdbentity") })
	if entity == nil || entity.FirstChild == nil || entity.FirstChild.Type != html.TextNode {
		return "I cannot find that title."
	}

	title := strings.TrimSpace(entity.FirstChild.Data)

	var description string
	if node := findFirst(entity, func(n *html.Node) bool { return isElement(n, "description") }); node != nil {
		description = textContent(node)
	}

	return fmt.Sprintf("[ [%s](http://www.imdb.com/title/%s) ] %s",
		title, attr(entity, "id"), description)
}
