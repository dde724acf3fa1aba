package github

import (
	"context"
	"fmt"
	"log/slog"

	gh "github.com/google/go-github/v68/github"
)

// Config holds the settings needed to fetch an allow-list
// from GitHub.
type Config struct {
	// RepoOwner is the GitHub user or organisation
	// that owns the repository.
	RepoOwner string
	// Repo is the repository name (without owner).
	Repo string
	// Path is the allow-list file path inside the
	// repository.
	Path string
	// Ref is an optional branch, tag or commit. Empty
	// means the default branch.
	Ref string
	// AccessToken is a personal access token or
	// GitHub App token used for authentication.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
}

// Fetcher reads an allow-list file from GitHub.
//
// Pattern: Strategy -- implements allowlist.Fetcher.
type Fetcher struct {
	client    *gh.Client
	repoOwner string
	repo      string
	path      string
	ref       string
}

// NewFetcher validates cfg and returns a Fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	const errCtx = "creating github fetcher"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf(
			"%s: path must be set", errCtx,
		)
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	if cfg.EnterpriseHost != "" {
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Fetcher{
		client:    client,
		repoOwner: cfg.RepoOwner,
		repo:      cfg.Repo,
		path:      cfg.Path,
		ref:       cfg.Ref,
	}, nil
}

// Fetch downloads the allow-list file contents.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	const errCtx = "fetching github allow-list"

	var opts *gh.RepositoryContentGetOptions
	if f.ref != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: f.ref}
	}

	file, _, resp, err := f.client.Repositories.GetContents(
		ctx, f.repoOwner, f.repo, f.path, opts,
	)
	if err != nil {
		if resp != nil {
			slog.Warn(
				"github response",
				"status", resp.StatusCode,
				"path", f.path,
			)
		}

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if file == nil {
		return nil, fmt.Errorf(
			"%s: %s is a directory", errCtx, f.path,
		)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"fetched allow-list",
		"repo", f.repoOwner+"/"+f.repo,
		"path", f.path,
		"sha", file.GetSHA(),
	)

	return []byte(content), nil
}
