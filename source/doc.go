// Package source defines the certificate provider strategy used to look up
// the signing certificates of a package. A Provider returns the raw encoded
// certificates in signing order, or ErrPackageNotFound when the package
// cannot be resolved, so callers can tell "no signatures" apart from
// "unknown package".
//
// Implementations live in sub-packages: file reads certificates from a
// directory tree, kube reads them from Kubernetes Secrets.
package source
