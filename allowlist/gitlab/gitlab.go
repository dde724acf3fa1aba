package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	gl "gitlab.com/gitlab-org/api/client-go"
)

// Config holds the settings needed to fetch an allow-list
// from GitLab.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the full project path
	// (e.g. "org/project").
	Repo string
	// Path is the allow-list file path inside the
	// project.
	Path string
	// Ref is an optional branch, tag or commit. Empty
	// means the default branch.
	Ref string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Fetcher reads an allow-list file from GitLab.
//
// Pattern: Strategy -- implements allowlist.Fetcher.
type Fetcher struct {
	client *gl.Client
	repo   string
	path   string
	ref    string
}

// NewFetcher validates cfg and returns a Fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	const errCtx = "creating gitlab fetcher"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
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

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Fetcher{
		client: client,
		repo:   cfg.Repo,
		path:   cfg.Path,
		ref:    cfg.Ref,
	}, nil
}

// Fetch downloads the raw allow-list file.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	const errCtx = "fetching gitlab allow-list"

	opts := &gl.GetRawFileOptions{}
	if f.ref != "" {
		opts.Ref = gl.Ptr(f.ref)
	}

	data, resp, err := f.client.RepositoryFiles.GetRawFile(
		f.repo, f.path, opts, gl.WithContext(ctx),
	)
	if err != nil {
		if resp != nil {
			slog.Warn(
				"gitlab response",
				"status", resp.StatusCode,
				"path", f.path,
			)
		}

		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"fetched allow-list",
		"repo", f.repo,
		"path", f.path,
	)

	return data, nil
}
