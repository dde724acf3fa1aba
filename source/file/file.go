package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/signing_info/fingerprint"
	"github.com/byte4ever/signing_info/source"
)

var certExtensions = map[string]bool{
	".pem": true,
	".crt": true,
	".cer": true,
	".der": true,
}

// Provider reads certificates below a root directory.
//
// Pattern: Strategy -- implements source.Provider.
type Provider struct {
	root string
}

// NewProvider returns a Provider rooted at root. The
// directory must exist.
func NewProvider(root string) (*Provider, error) {
	const errCtx = "creating file provider"

	if root == "" {
		return nil, fmt.Errorf(
			"%s: root directory must be set", errCtx,
		)
	}

	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if !fi.IsDir() {
		return nil, fmt.Errorf(
			"%s: %s is not a directory", errCtx, root,
		)
	}

	return &Provider{root: root}, nil
}

// Certificates decodes every certificate file in the
// package directory. A missing directory reports
// source.ErrPackageNotFound; an existing directory with
// no certificate files returns an empty list.
func (p *Provider) Certificates(
	ctx context.Context,
	pkg string,
) ([]fingerprint.Certificate, error) {
	const errCtx = "reading certificate files"

	if err := source.ValidatePackage(pkg); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	dir := filepath.Join(p.root, pkg)

	// os.ReadDir sorts entries by file name.
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(
			"%s: %s: %w",
			errCtx, pkg, source.ErrPackageNotFound,
		)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	certs := []fingerprint.Certificate{}

	for _, en := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		if !en.Type().IsRegular() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(en.Name()))
		if !certExtensions[ext] {
			continue
		}

		pa := filepath.Join(dir, en.Name())

		data, err := os.ReadFile(pa) //nolint:gosec // path built from validated package name
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		decoded, err := source.DecodeCertificates(data)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %s: %w", errCtx, en.Name(), err,
			)
		}

		certs = append(certs, decoded...)
	}

	return certs, nil
}
