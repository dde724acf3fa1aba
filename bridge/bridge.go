package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byte4ever/signing_info/fingerprint"
	"github.com/byte4ever/signing_info/source"
)

// MethodGetSigningInfo is the only method a Bridge
// answers.
const MethodGetSigningInfo = "getSigningInfo"

// ErrorPrefix starts every error string returned by
// GetSigningInfo.
const ErrorPrefix = "Error: "

// ErrNotImplemented is returned by Call for unknown
// methods.
var ErrNotImplemented = errors.New("method not implemented")

// ErrorKind classifies a boundary failure.
type ErrorKind int

// Error kinds.
const (
	KindUnknown ErrorKind = iota
	KindSourceLookupFailed
	KindHashAlgorithmUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindSourceLookupFailed:
		return "SourceLookupFailed"
	case KindHashAlgorithmUnavailable:
		return "HashAlgorithmUnavailable"
	default:
		return "Unknown"
	}
}

// KindOf returns the kind of err. Errors outside the
// taxonomy, including nil, are KindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, source.ErrPackageNotFound):
		return KindSourceLookupFailed
	case errors.Is(err, fingerprint.ErrHashAlgorithmUnavailable):
		return KindHashAlgorithmUnavailable
	default:
		return KindUnknown
	}
}

// callError is returned by SigningInfo. ErrorText shows
// only its cause.
type callError struct {
	cause error
}

func (e *callError) Error() string {
	return "getting signing info: " + e.cause.Error()
}

func (e *callError) Unwrap() error {
	return e.cause
}

// ErrorText renders err for the string surface. Errors
// from SigningInfo are reported by their cause alone.
func ErrorText(err error) string {
	switch KindOf(err) {
	case KindSourceLookupFailed:
		return ErrorPrefix + "Package name not found"
	case KindHashAlgorithmUnavailable:
		return ErrorPrefix + "No such algorithm"
	}

	var ce *callError
	if errors.As(err, &ce) {
		return ErrorPrefix + ce.cause.Error()
	}

	return ErrorPrefix + err.Error()
}

// IsErrorText reports whether s is an error string
// produced by GetSigningInfo.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}

// Bridge answers signing-info calls for one package. It
// holds no mutable state and is safe for concurrent use
// when its provider is.
type Bridge struct {
	provider source.Provider
	pkg      string
}

// New binds a Bridge to provider and the running
// package name.
func New(provider source.Provider, pkg string) (*Bridge, error) {
	const errCtx = "creating bridge"

	if provider == nil {
		return nil, fmt.Errorf(
			"%s: provider must be set", errCtx,
		)
	}

	if err := source.ValidatePackage(pkg); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Bridge{provider: provider, pkg: pkg}, nil
}

// Package returns the package the Bridge reports on.
func (b *Bridge) Package() string {
	return b.pkg
}

// SigningInfo looks up the package certificates and
// computes their digests. A panicking provider is
// reported as an error.
func (b *Bridge) SigningInfo(
	ctx context.Context,
) (rep fingerprint.Report, retErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			rep = fingerprint.Report{}
			retErr = &callError{
				cause: fmt.Errorf("provider panic: %v", rec),
			}
		}
	}()

	certs, err := b.provider.Certificates(ctx, b.pkg)
	if err != nil {
		return fingerprint.Report{}, &callError{cause: err}
	}

	rep, err = fingerprint.Compute(certs)
	if err != nil {
		return fingerprint.Report{}, &callError{cause: err}
	}

	return rep, nil
}

// GetSigningInfo returns the text report, or an error
// string starting with ErrorPrefix. Failures are logged.
func (b *Bridge) GetSigningInfo(ctx context.Context) string {
	rep, err := b.SigningInfo(ctx)
	if err != nil {
		slog.Error(
			"getting signing info",
			"package", b.pkg,
			"kind", KindOf(err).String(),
			"error", err,
		)

		return ErrorText(err)
	}

	return rep.Text()
}

// Call dispatches a method by name. Only
// MethodGetSigningInfo is supported; anything else
// returns ErrNotImplemented.
func (b *Bridge) Call(
	ctx context.Context,
	method string,
) (string, error) {
	switch method {
	case MethodGetSigningInfo:
		return b.GetSigningInfo(ctx), nil
	default:
		return "", fmt.Errorf(
			"calling %q: %w", method, ErrNotImplemented,
		)
	}
}
