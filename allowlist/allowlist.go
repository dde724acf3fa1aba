package allowlist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/signing_info/fingerprint"
)

// ErrNotAllowed is returned by Verify when a report entry
// matches no allowed fingerprint.
var ErrNotAllowed = errors.New("signing certificate not allowed")

// AllowList holds the expected fingerprints of a package.
type AllowList struct {
	Package string   `json:"package" yaml:"package"`
	SHA1    []string `json:"sha1" yaml:"sha1"`
	SHA256  []string `json:"sha256" yaml:"sha256"`
}

// Parse decodes a YAML or JSON allow-list and rejects
// documents without any fingerprint.
func Parse(data []byte) (*AllowList, error) {
	const errCtx = "parsing allow-list"

	var (
		al  AllowList
		err error
	)

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		err = json.Unmarshal(data, &al)
	} else {
		err = yaml.Unmarshal(data, &al)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if len(al.SHA1) == 0 && len(al.SHA256) == 0 {
		return nil, fmt.Errorf(
			"%s: no fingerprints listed", errCtx,
		)
	}

	return &al, nil
}

// Allows reports whether en matches an allowed SHA-1 or
// SHA-256 fingerprint.
func (al *AllowList) Allows(en fingerprint.Entry) bool {
	return contains(al.SHA1, en.SHA1) ||
		contains(al.SHA256, en.SHA256)
}

// Verify checks that the report is non-empty and that
// every entry is allowed. The first rejected entry is
// reported wrapped in ErrNotAllowed.
func (al *AllowList) Verify(rep fingerprint.Report) error {
	const errCtx = "verifying signing certificates"

	if len(rep.Entries) == 0 {
		return fmt.Errorf(
			"%s: no certificates: %w", errCtx, ErrNotAllowed,
		)
	}

	for idx, en := range rep.Entries {
		if !al.Allows(en) {
			return fmt.Errorf(
				"%s: certificate %d (SHA-1 %s): %w",
				errCtx, idx, en.SHA1, ErrNotAllowed,
			)
		}
	}

	return nil
}

func contains(allowed []string, digest string) bool {
	want := fingerprint.NormalizeHex(digest)

	for _, al := range allowed {
		if fingerprint.NormalizeHex(al) == want {
			return true
		}
	}

	return false
}

// Pattern: Strategy -- swap where the allow-list is
// stored without changing verification.

// Fetcher retrieves a raw allow-list document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a plain function to the Fetcher
// interface.
type FetcherFunc func(ctx context.Context) ([]byte, error)

// Fetch delegates to the wrapped function.
func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// FileFetcher returns a Fetcher reading path.
func FileFetcher(path string) Fetcher {
	return FetcherFunc(func(context.Context) ([]byte, error) {
		data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
		if err != nil {
			return nil, fmt.Errorf(
				"reading allow-list file: %w", err,
			)
		}

		return data, nil
	})
}

// Load fetches and parses an allow-list.
func Load(ctx context.Context, fe Fetcher) (*AllowList, error) {
	const errCtx = "loading allow-list"

	data, err := fe.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	al, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return al, nil
}
