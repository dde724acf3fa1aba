package kube

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valyala/fasttemplate"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/byte4ever/signing_info/fingerprint"
	"github.com/byte4ever/signing_info/source"
)

const (
	defaultNameTemplate = "{package}"
	defaultKey          = "tls.crt"
)

// Config holds the settings for a Secret-backed
// provider.
type Config struct {
	// Namespace holds the signing Secrets.
	Namespace string
	// NameTemplate maps a package name to a Secret
	// name. {package} is substituted. Defaults to
	// "{package}".
	NameTemplate string
	// Keys lists the Secret data keys holding PEM or
	// DER certificates, read in order. Defaults to
	// "tls.crt".
	Keys []string
}

// Provider reads signing certificates from Kubernetes
// Secrets.
//
// Pattern: Strategy -- implements source.Provider.
type Provider struct {
	client       kubernetes.Interface
	namespace    string
	nameTemplate string
	keys         []string
}

// NewProvider validates cfg and returns a Provider using
// client.
func NewProvider(
	client kubernetes.Interface,
	cfg Config,
) (*Provider, error) {
	const errCtx = "creating kube provider"

	if client == nil {
		return nil, fmt.Errorf(
			"%s: client must be set", errCtx,
		)
	}

	if cfg.Namespace == "" {
		return nil, fmt.Errorf(
			"%s: namespace must be set", errCtx,
		)
	}

	tpl := cfg.NameTemplate
	if tpl == "" {
		tpl = defaultNameTemplate
	}

	keys := cfg.Keys
	if len(keys) == 0 {
		keys = []string{defaultKey}
	}

	return &Provider{
		client:       client,
		namespace:    cfg.Namespace,
		nameTemplate: tpl,
		keys:         keys,
	}, nil
}

// SecretName returns the Secret name for pkg.
func (p *Provider) SecretName(pkg string) string {
	return fasttemplate.ExecuteStringStd(
		p.nameTemplate, "{", "}",
		map[string]interface{}{"package": pkg},
	)
}

// Certificates reads the package Secret and decodes each
// configured key that is present. A Secret without any
// of the keys yields an empty list.
func (p *Provider) Certificates(
	ctx context.Context,
	pkg string,
) ([]fingerprint.Certificate, error) {
	const errCtx = "reading signing secret"

	if err := source.ValidatePackage(pkg); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	name := p.SecretName(pkg)

	secret, err := p.client.CoreV1().Secrets(p.namespace).Get(
		ctx, name, metav1.GetOptions{},
	)
	if apierrors.IsNotFound(err) {
		return nil, fmt.Errorf(
			"%s: %s/%s: %w",
			errCtx, p.namespace, name,
			source.ErrPackageNotFound,
		)
	}

	if err != nil {
		return nil, fmt.Errorf(
			"%s: %s/%s: %w",
			errCtx, p.namespace, name, err,
		)
	}

	certs := []fingerprint.Certificate{}

	for _, key := range p.keys {
		data, ok := secret.Data[key]
		if !ok {
			slog.Info(
				"secret key absent",
				"secret", name,
				"key", key,
			)

			continue
		}

		decoded, err := source.DecodeCertificates(data)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %s/%s[%s]: %w",
				errCtx, p.namespace, name, key, err,
			)
		}

		certs = append(certs, decoded...)
	}

	return certs, nil
}
