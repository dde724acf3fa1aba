package source

import (
	"context"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/byte4ever/signing_info/fingerprint"
)

// Pattern: Strategy -- swap certificate storage without
// changing digest formatting.

// ErrPackageNotFound is returned when a provider cannot
// resolve the requested package.
var ErrPackageNotFound = errors.New("package name not found")

// Provider looks up the signing certificates of a
// package.
type Provider interface {
	Certificates(
		ctx context.Context,
		pkg string,
	) ([]fingerprint.Certificate, error)
}

// ProviderFunc adapts a plain function to the Provider
// interface.
type ProviderFunc func(
	ctx context.Context,
	pkg string,
) ([]fingerprint.Certificate, error)

// Certificates delegates to the wrapped function.
func (f ProviderFunc) Certificates(
	ctx context.Context,
	pkg string,
) ([]fingerprint.Certificate, error) {
	return f(ctx, pkg)
}

// ValidatePackage rejects package names that are empty
// or could escape a lookup namespace.
func ValidatePackage(pkg string) error {
	switch {
	case pkg == "":
		return errors.New("package name must be set")
	case strings.ContainsAny(pkg, `/\`),
		pkg == ".", pkg == "..":
		return fmt.Errorf("invalid package name %q", pkg)
	}

	return nil
}

const pemCertificateType = "CERTIFICATE"

// DecodeCertificates splits data into DER certificates.
// PEM input yields one certificate per CERTIFICATE block,
// in order; other block types are skipped. Input that does
// not decode as PEM, including empty input, is returned as
// a single DER certificate.
func DecodeCertificates(
	data []byte,
) ([]fingerprint.Certificate, error) {
	const errCtx = "decoding certificates"

	block, rest := pem.Decode(data)
	if block == nil {
		return []fingerprint.Certificate{data}, nil
	}

	var certs []fingerprint.Certificate

	for block != nil {
		if block.Type == pemCertificateType {
			certs = append(certs, block.Bytes)
		}

		block, rest = pem.Decode(rest)
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf(
			"%s: no %s block found",
			errCtx, pemCertificateType,
		)
	}

	return certs, nil
}
