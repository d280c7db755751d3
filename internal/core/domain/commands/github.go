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
)

// GithubHandler answers status, profile, and repository lookups against the
// github API.
type GithubHandler struct {
	sender  port.Sender
	fetcher port.Fetcher
	command string

	statusURL  string
	profileURL string
	repoURL    string
}

func NewGithubHandler(sender port.Sender, fetcher port.Fetcher, command string) *GithubHandler {
	return &GithubHandler{
		sender:     sender,
		fetcher:    fetcher,
		command:    command,
		statusURL:  "https://status.github.com/api/last-message.json",
		profileURL: "https://api.github.com/users/%s",
		repoURL:    "https://api.github.com/repos/%s/%s",
	}
}

func (h *GithubHandler) GetCommand() string {
	return h.command
}

func (h *GithubHandler) GetDescription() string {
	return "Displays Github status, profile, or repo information"
}

func (h *GithubHandler) Respond(ctx context.Context, timeout time.Duration, cmd *domain.Command) error {
	l := log.With().Str("room", cmd.Message.Room).Str("command", h.GetCommand()).Logger()
	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	obj := cmd.Param(0)
	switch {
	case obj == "" || obj == "status":
		return h.status(ctx, cmd)
	case !strings.Contains(obj, "/"):
		return h.profile(ctx, cmd, obj)
	case strings.Count(obj, "/") == 1:
		parts := strings.SplitN(obj, "/", 2)
		return h.repo(ctx, cmd, parts[0], parts[1])
	default:
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room,
			fmt.Sprintf("Usage: %s [status | <profile> | <profile>/<repo>]", h.command))
		return err
	}
}

type githubStatus struct {
	Status    string `json:"status"`
	Body      string `json:"body"`
	CreatedOn string `json:"created_on"`
}

func (h *GithubHandler) status(ctx context.Context, cmd *domain.Command) error {
	res, err := h.fetcher.Request(ctx, h.statusURL)
	if err != nil || res.Status != 200 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching status")
		return err
	}

	var status githubStatus
	if err := json.Unmarshal(res.Body, &status); err != nil {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching status")
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room,
		fmt.Sprintf("[tag:github-status] %s: %s as of %s", status.Status, status.Body, status.CreatedOn))
	return err
}

type githubProfile struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	PublicRepos int    `json:"public_repos"`
}

func (h *GithubHandler) profile(ctx context.Context, cmd *domain.Command, name string) error {
	res, err := h.fetcher.Request(ctx, fmt.Sprintf(h.profileURL, url.PathEscape(name)))
	if err != nil || res.Status != 200 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching profile for "+name)
		return err
	}

	var profile githubProfile
	if err := json.Unmarshal(res.Body, &profile); err != nil || profile.ID == 0 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Unknown profile "+name)
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room,
		fmt.Sprintf("[tag:github-profile] %s [%s](%s): %d public repos",
			profile.Type, profile.Name, profile.HTMLURL, profile.PublicRepos))
	return err
}

type githubRepo struct {
	ID          int    `json:"id"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Watchers    int    `json:"watchers"`
	Forks       int    `json:"forks"`
	PushedAt    string `json:"pushed_at"`
}

func (h *GithubHandler) repo(ctx context.Context, cmd *domain.Command, owner, name string) error {
	path := owner + "/" + name

	res, err := h.fetcher.Request(ctx,
		fmt.Sprintf(h.repoURL, url.PathEscape(owner), url.PathEscape(name)))
	if err != nil || res.Status != 200 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Failed fetching repo for "+path)
		return err
	}

	var repo githubRepo
	if err := json.Unmarshal(res.Body, &repo); err != nil || repo.ID == 0 {
		_, err := h.sender.PostMessage(ctx, cmd.Message.Room, "Unknown repo "+path)
		return err
	}

	_, err = h.sender.PostMessage(ctx, cmd.Message.Room,
		fmt.Sprintf("[tag:github-repo] [%s](%s) %s - Watchers: %d, Forks: %d, Last Push: %s",
			repo.FullName, repo.HTMLURL, repo.Description, repo.Watchers, repo.Forks, repo.PushedAt))
	return err
}
