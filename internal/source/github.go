package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v77/github"

	"github.com/jokeeffe/pulse/internal/config"
	"github.com/jokeeffe/pulse/internal/pulse"
)

// GitHub adapts a user's recent public events into activities.
type GitHub struct {
	client *github.Client
	cfg    config.GitHubConfig
}

// NewGitHub takes the client so tests can point it at a fake API.
func NewGitHub(client *github.Client, cfg config.GitHubConfig) *GitHub {
	if client == nil {
		client = github.NewClient(fetchClient)
	}

	return &GitHub{client: client, cfg: cfg}
}

func (g *GitHub) Platform() pulse.Platform { return pulse.PlatformGitHub }

func (g *GitHub) Fetch(ctx context.Context) ([]pulse.Activity, error) {
	events, _, err := g.client.Activity.ListEventsPerformedByUser(ctx, g.cfg.User, true, &github.ListOptions{
		PerPage: g.cfg.EventCount,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing events for %s: %w", g.cfg.User, err)
	}

	var acts []pulse.Activity
	for _, event := range events {
		title, link, ok := describeEvent(event)
		if !ok {
			continue
		}

		act := pulse.Activity{
			Title:       title,
			Description: title,
			Link:        link,
			PublishedAt: event.GetCreatedAt().Time,
			GUID:        event.GetID(),
			Platform:    pulse.PlatformGitHub,
		}
		if err := act.Validate(); err != nil {
			slog.Warn("dropping github event", "id", event.GetID(), "error", err)
			continue
		}

		acts = append(acts, act)
	}

	return acts, nil
}

// describeEvent turns one event into display text and a link. Event
// kinds outside the allow-list report ok=false and are skipped.
func describeEvent(event *github.Event) (title, link string, ok bool) {
	repo := event.GetRepo().GetName()
	link = "https://github.com/" + repo

	payload, err := event.ParsePayload()
	if err != nil {
		return "", "", false
	}

	switch p := payload.(type) {
	case *github.PushEvent:
		n := len(p.Commits)
		title = fmt.Sprintf("Pushed %d commit%s to %s", n, plural(n), repo)
	case *github.CreateEvent:
		created := "resource"
		switch p.GetRefType() {
		case "repository":
			created = "repository"
		case "branch":
			created = "branch"
		}
		ref := p.GetRef()
		if ref == "" {
			ref = repo
		}
		title = fmt.Sprintf("Created %s %s", created, ref)
	case *github.WatchEvent:
		title = "Starred " + repo
	case *github.ForkEvent:
		title = "Forked " + repo
	case *github.PullRequestEvent:
		prTitle := p.GetPullRequest().GetTitle()
		if prTitle == "" {
			prTitle = "pull request"
		}
		title = fmt.Sprintf("%s pull request: %s", capitalize(p.GetAction()), prTitle)
	case *github.IssuesEvent:
		issueTitle := p.GetIssue().GetTitle()
		if issueTitle == "" {
			issueTitle = "issue"
		}
		title = fmt.Sprintf("%s issue: %s", capitalize(p.GetAction()), issueTitle)
	case *github.CommitCommentEvent:
		title = "Commented on a commit in " + repo
		if u := p.GetComment().GetHTMLURL(); u != "" {
			link = u
		}
	default:
		return "", "", false
	}

	return title, link, true
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
