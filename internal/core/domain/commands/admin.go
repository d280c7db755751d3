package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// AdminHandler manages the per-room admin list. Adding and removing require
// admin rights; listing is open to everyone.
type AdminHandler struct {
	sender     port.Sender
	fetcher    port.Fetcher
	store      port.AdminStore
	command    string
	profileURL string
}

const defaultProfileURL = "https://stackoverflow.com/users/%d"

const unauthorizedReply = "I'm sorry Dave, I'm afraid I can't do that"

func NewAdminHandler(sender port.Sender, fetcher port.Fetcher, store port.AdminStore, command string) *AdminHandler {
	return &AdminHandler{
		sender:     sender,
		fetcher:    fetcher,
		store:      store,
		command:    command,
		profileURL: defaultProfileURL,
	}
}

func (h *AdminHandler) GetCommand() string {
	return h.command
}

func (h *AdminHandler) GetDescription() string {
	return "Manages the per-room admin list"
}

func (h *AdminHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	l := log.With().
		Str("room", cmd.Message.Room).
		Int64("userId", cmd.Message.UserID).
		Str("command", h.GetCommand()).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	action := cmd.Param(0)

	if action == "list" {
		return h.list(ctx, cmd)
	}

	if action != "add" && action != "remove" {
		// unknown action, consume silently
		return nil
	}

	isAdmin, err := h.store.IsAdmin(ctx, cmd.Message.Room, cmd.Message.UserID)
	if err != nil {
		return fmt.Errorf("checking admin rights: %w", err)
	}
	if !isAdmin {
		l.Info().Str("action", action).Msg("unauthorized admin action")
		_, err := h.sender.PostReply(ctx, cmd, unauthorizedReply)
		return err
	}

	userID, err := strconv.ParseInt(cmd.Param(1), 10, 64)
	if err != nil {
		_, err := h.sender.PostReply(ctx, cmd, fmt.Sprintf("Usage: %s add|remove <user id>", h.command))
		return err
	}

	if action == "add" {
		return h.add(ctx, cmd, userID)
	}

	return h.remove(ctx, cmd, userID)
}

func (h *AdminHandler) add(ctx context.Context, cmd *domain.Command, userID int64) error {
	admins, err := h.store.GetAll(ctx, cmd.Message.Room)
	if err != nil {
		return fmt.Errorf("loading admin list: %w", err)
	}

	if contains(admins.Admins, userID) {
		_, err := h.sender.PostReply(ctx, cmd, "User already on admin list.")
		return err
	}
	if contains(admins.Owners, userID) {
		_, err := h.sender.PostReply(ctx, cmd, "User is a room owner and has implicit admin rights.")
		return err
	}

	if err := h.store.Add(ctx, cmd.Message.Room, userID); err != nil {
		return fmt.Errorf("adding admin: %w", err)
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, "User added to the admin list.")
	return err
}

func (h *AdminHandler) remove(ctx context.Context, cmd *domain.Command, userID int64) error {
	admins, err := h.store.GetAll(ctx, cmd.Message.Room)
	if err != nil {
		return fmt.Errorf("loading admin list: %w", err)
	}

	if contains(admins.Owners, userID) {
		_, err := h.sender.PostReply(ctx, cmd, "User is a room owner and has implicit admin rights.")
		return err
	}
	if !contains(admins.Admins, userID) {
		_, err := h.sender.PostReply(ctx, cmd, "User not currently on admin list.")
		return err
	}

	if err := h.store.Remove(ctx, cmd.Message.Room, userID); err != nil {
		return fmt.Errorf("removing admin: %w", err)
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, "User removed from the admin list.")
	return err
}

// list fans out one profile fetch per privileged user and joins them all;
// profiles that fail to load are skipped rather than aborting the listing.
func (h *AdminHandler) list(ctx context.Context, cmd *domain.Command) error {
	l := log.With().Str("room", cmd.Message.Room).Str("command", h.GetCommand()).Logger()

	admins, err := h.store.GetAll(ctx, cmd.Message.Room)
	if err != nil {
		return fmt.Errorf("loading admin list: %w", err)
	}

	userIDs := append(append([]int64{}, admins.Owners...), admins.Admins...)
	if len(userIDs) == 0 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "There are no registered admins")
		return err
	}

	urls := make([]string, len(userIDs))
	for i, userID := range userIDs {
		urls[i] = fmt.Sprintf(h.profileURL, userID)
	}

	results := h.fetcher.RequestMulti(ctx, urls)

	var names []string
	for i, result := range results {
		if result.Err != nil || result.Response.Status != 200 {
			l.Warn().Int64("userId", userIDs[i]).Msg("skipping unavailable profile")
			continue
		}

		name := parseProfileName(result.Response.Body)
		if name == "" {
			l.Warn().Int64("userId", userIDs[i]).Msg("skipping unparsable profile")
			continue
		}

		if contains(admins.Owners, userIDs[i]) {
			name = "*" + name + "*"
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Could not load any admin profiles")
		return err
	}

	sort.Strings(names)

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room, strings.Join(names, ", "))
	return err
}

func parseProfileName(body []byte) string {
	doc, err := parseHTML(body)
	if err != nil {
		return ""
	}

	node := findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "h2") && hasClass(n, "user-card-name")
	})
	if node == nil {
		return ""
	}

	return textContent(node)
}

func contains(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}
