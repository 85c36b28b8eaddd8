// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Fetcher defines the behavior of a gateway for fetching repository sizes from GitHub.
type Fetcher interface {
	// FetchRepoSize returns the repository disk usage in kilobytes.
	FetchRepoSize(ctx context.Context, owner, repo string) (int, error)
	// FetchCodeSize returns the total size of source code in bytes, summed over all languages.
	FetchCodeSize(ctx context.Context, owner, repo string) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *logrus.Logger
}

// codeSizeQuery asks for the byte count GitHub's linguist attributes to the repository.
type codeSizeQuery struct {
	Repository struct {
		Languages struct {
			TotalSize githubv4.Int
		} `graphql:"languages(first: 1)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *logrus.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) FetchRepoSize(ctx context.Context, owner, repo string) (int, error) {
	g.logger.WithField("repo", owner+"/"+repo).Debug("Fetching repository size using REST API...")
	r, _, err := g.restClient.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return 0, fmt.Errorf("failed to get repository %s/%s with REST API: %w", owner, repo, err)
	}
	return r.GetSize(), nil
}

func (g *GitHubGateway) FetchCodeSize(ctx context.Context, owner, repo string) (int, error) {
	g.logger.WithField("repo", owner+"/"+repo).Debug("Fetching code size using GraphQL API...")
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	var q codeSizeQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for code size of %s/%s: %w", owner, repo, err)
	}
	return int(q.Repository.Languages.TotalSize), nil
}
