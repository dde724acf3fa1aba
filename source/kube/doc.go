// Package kube implements a source.Provider backed by Kubernetes Secrets.
// The Secret name is derived from the package name through a {package}
// template, and certificates are read from the configured data keys
// (tls.crt by default). A missing Secret reports source.ErrPackageNotFound.
package kube
