package fingerprint

import (
	"crypto"
	_ "crypto/sha1"   // registers crypto.SHA1
	_ "crypto/sha256" // registers crypto.SHA256
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrHashAlgorithmUnavailable is returned when a digest
// algorithm is not linked into the binary. Both
// algorithms are imported above, so this only fires if
// the registry is changed.
var ErrHashAlgorithmUnavailable = errors.New(
	"hash algorithm unavailable",
)

// Certificate is the raw encoded form of one signing
// certificate. It is treated as opaque bytes.
type Certificate []byte

// Entry holds the digests of one certificate as
// uppercase hexadecimal strings.
type Entry struct {
	SHA1   string `json:"sha1" yaml:"sha1"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Report lists certificate digests in input order.
type Report struct {
	Entries []Entry `json:"certificates" yaml:"certificates"`
}

// algorithm names a digest as it appears in reports.
type algorithm struct {
	name string
	hash crypto.Hash
}

var (
	sha1Algorithm   = algorithm{name: "SHA-1", hash: crypto.SHA1}
	sha256Algorithm = algorithm{name: "SHA-256", hash: crypto.SHA256}
)

// sum hashes data and returns the uppercase hex digest.
func (al algorithm) sum(data []byte) (string, error) {
	if !al.hash.Available() {
		return "", fmt.Errorf(
			"%w: %s", ErrHashAlgorithmUnavailable, al.name,
		)
	}

	ha := al.hash.New()
	_, _ = ha.Write(data) //nolint:errcheck // hash.Hash never fails

	return strings.ToUpper(hex.EncodeToString(ha.Sum(nil))), nil
}

// Digest computes the SHA-1 and SHA-256 digests of one
// certificate. A zero-length certificate is valid.
func Digest(cert Certificate) (Entry, error) {
	const errCtx = "computing digest"

	s1, err := sha1Algorithm.sum(cert)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	s256, err := sha256Algorithm.sum(cert)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return Entry{SHA1: s1, SHA256: s256}, nil
}

// Compute digests every certificate, preserving order.
// An empty input yields a report with no entries.
func Compute(certs []Certificate) (Report, error) {
	const errCtx = "computing report"

	entries := make([]Entry, 0, len(certs))

	for idx, cert := range certs {
		en, err := Digest(cert)
		if err != nil {
			return Report{}, fmt.Errorf(
				"%s: certificate %d: %w", errCtx, idx, err,
			)
		}

		entries = append(entries, en)
	}

	return Report{Entries: entries}, nil
}

// FormatDigests computes the digests of certs and renders
// them in the text format:
//
//	SHA-1: <40 hex>
//	SHA-256: <64 hex>
//
// once per certificate. No certificates yield "".
func FormatDigests(certs []Certificate) (string, error) {
	const errCtx = "formatting digests"

	rep, err := Compute(certs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return rep.Text(), nil
}

// NormalizeHex canonicalizes a hex fingerprint for
// comparison: separators (":" and whitespace) are removed
// and letters upper-cased, so "ab:cd" equals "ABCD".
func NormalizeHex(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		switch r {
		case ':', ' ', '\t', '\n', '\r':
			continue
		}

		sb.WriteRune(r)
	}

	return strings.ToUpper(sb.String())
}
