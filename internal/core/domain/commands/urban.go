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
)

// UrbanHandler looks up entries from urbandictionary.com.
type UrbanHandler struct {
	sender  port.Sender
	fetcher port.Fetcher
	command string

	defineURL string
}

func NewUrbanHandler(sender port.Sender, fetcher port.Fetcher, command string) *UrbanHandler {
	return &UrbanHandler{
		sender:    sender,
		fetcher:   fetcher,
		command:   command,
		defineURL: "http://api.urbandictionary.com/v0/define?term=%s",
	}
}

func (h *UrbanHandler) GetCommand() string {
	return h.command
}

func (h *UrbanHandler) GetDescription() string {
	return "Looks up entries from urbandictionary.com"
}

type urbanResult struct {
	ResultType string `json:"result_type"`
	List       []struct {
		Word       string `json:"word"`
		Permalink  string `json:"permalink"`
		Definition string `json:"definition"`
	} `json:"list"`
}

func (h *UrbanHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	if !cmd.HasParams() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	term := strings.Join(cmd.Params, " ")

	res, err := h.fetcher.Request(ctx, fmt.Sprintf(h.defineURL, url.QueryEscape(term)))
	if err != nil {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching definition for "+term)
		return err
	}

	var result urbanResult
	if err := json.Unmarshal(res.Body, &result); err != nil {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching definition for "+term)
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, urbanMessage(&result))
	return err
}

func urbanMessage(result *urbanResult) string {
	if result.ResultType == "no_results" || len(result.List) == 0 {
		return "whatchoo talkin bout willis"
	}

	first := result.List[0]

	return fmt.Sprintf("[ [%s](%s) ] %s",
		first.Word, first.Permalink, strings.ReplaceAll(first.Definition, "\r\n", " "))
}
