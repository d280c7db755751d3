package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// PackagistHandler fetches package information from packagist.org, falling
// back to the search page when a direct lookup misses.
type PackagistHandler struct {
	sender  port.Sender
	fetcher port.Fetcher
	command string

	baseURL string
}

func NewPackagistHandler(sender port.Sender, fetcher port.Fetcher, command string) *PackagistHandler {
	return &PackagistHandler{
		sender:  sender,
		fetcher: fetcher,
		command: command,
		baseURL: "https://packagist.org",
	}
}

func (h *PackagistHandler) GetCommand() string {
	return h.command
}

func (h *PackagistHandler) GetDescription() string {
	return "Fetches package information from packagist.org"
}

type packagistPackage struct {
	Package struct {
		Name        string `json:"name"`
		Repository  string `json:"repository"`
		Description string `json:"description"`
	} `json:"package"`
}

func (h *PackagistHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	l := log.With().Str("room", cmd.Message.Room).Str("command", h.GetCommand()).Logger()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	info := strings.SplitN(strings.Join(cmd.Params, "/"), "/", 2)
	if len(info) != 2 || info[0] == "" || info[1] == "" {
		_, err := h.sender.PostReply(ctx, cmd, fmt.Sprintf("Usage: %s <vendor>/<package>", h.command))
		return err
	}

	vendor, name := info[0], info[1]

	data, err := h.lookup(ctx, vendor, name)
	if err != nil {
		l.Warn().Err(err).Str("vendor", vendor).Str("package", name).Msg("packagist lookup failed")
		_, err := h.sender.PostReply(ctx, cmd, "No matching packages found")
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room,
		fmt.Sprintf("[ [%s](%s) ] %s", data.Package.Name, data.Package.Repository, data.Package.Description))
	return err
}

func (h *PackagistHandler) lookup(ctx context.Context, vendor, name string) (*packagistPackage, error) {
	lookupURL := fmt.Sprintf("%s/packages/%s/%s.json", h.baseURL, url.PathEscape(vendor), url.PathEscape(name))

	res, err := h.fetcher.Request(ctx, lookupURL)
	if err != nil {
		return nil, err
	}

	if res.Status != 200 {
		res, err = h.searchFallback(ctx, vendor, name)
		if err != nil {
			return nil, err
		}
	}

	var data packagistPackage
	if err := json.Unmarshal(res.Body, &data); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, err)
	}
	if data.Package.Name == "" {
		return nil, domain.ErrMalformedResponse
	}

	return &data, nil
}

// searchFallback scrapes the first hit of the search page and retries the
// JSON lookup against its canonical URL.
func (h *PackagistHandler) searchFallback(ctx context.Context, vendor, name string) (*port.Response, error) {
	searchURL := fmt.Sprintf("%s/search/?q=%s%%2F%s", h.baseURL, url.QueryEscape(vendor), url.QueryEscape(name))

	res, err := h.fetcher.Request(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	if res.Status != 200 {
		return nil, fmt.Errorf("%w: search returned %d", domain.ErrFetchFailed, res.Status)
	}

	doc, err := parseHTML(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, err)
	}

	list := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "ul") && hasClass(n, "packages")
	})
	if list == nil {
		return nil, fmt.Errorf("%w: search page contains no results", domain.ErrMalformedResponse)
	}

	item := findFirst(list, func(n *html.Node) bool {
		return isElement(n, "li") && hasAttr(n, "data-url")
	})
	if item == nil {
		return nil, fmt.Errorf("%w: first result has no URL", domain.ErrMalformedResponse)
	}

	return h.fetcher.Request(ctx, h.baseURL+attr(item, "data-url")+".json")
}
