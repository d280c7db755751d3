package commands

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"golang.org/x/net/html"
)

// XkcdHandler searches for relevant comics and posts the first hit.
type XkcdHandler struct {
	sender  port.Sender
	fetcher port.Fetcher
	command string

	searchURL string
}

const notFoundComic = "https://xkcd.com/1334/"

var xkcdLink = regexp.MustCompile(`^/url\?q=(https://xkcd\.com/\d+/)`)

func NewXkcdHandler(sender port.Sender, fetcher port.Fetcher, command string) *XkcdHandler {
	return &XkcdHandler{
		sender:    sender,
		fetcher:   fetcher,
		command:   command,
		searchURL: `https://www.google.com/search?q=site:xkcd.com+intitle%%3a%%22xkcd%%3a+%%22+%s`,
	}
}

func (h *XkcdHandler) GetCommand() string {
	return h.command
}

func (h *XkcdHandler) GetDescription() string {
	return "Searches for relevant comics from xkcd and posts them"
}

func (h *XkcdHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	if !cmd.HasParams() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	query := url.QueryEscape(strings.Join(cmd.Params, " "))

	res, err := h.fetcher.Request(ctx, fmt.Sprintf(h.searchURL, query))
	if err != nil || res.Status != 200 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching search results")
		return err
	}

	if comic := firstComicLink(res.Body); comic != "" {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, comic)
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, notFoundComic)
	return err
}

func firstComicLink(body []byte) string {
	doc, err := parseHTML(body)
	if err != nil {
		return ""
	}

	for _, anchor := range findAll(doc, func(n *html.Node) bool { return isElement(n, "a") }) {
		if match := xkcdLink.FindStringSubmatch(attr(anchor, "href")); match != nil {
			return match[1]
		}
	}

	return ""
}
