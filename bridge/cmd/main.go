// Package main provides the signing_info CLI. It answers
// the getSigningInfo boundary call for one package using a
// directory or Kubernetes Secret certificate source,
// renders the digest report, and optionally verifies it
// against an allow-list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/byte4ever/signing_info/allowlist"
	ghfetch "github.com/byte4ever/signing_info/allowlist/github"
	glfetch "github.com/byte4ever/signing_info/allowlist/gitlab"
	"github.com/byte4ever/signing_info/bridge"
	"github.com/byte4ever/signing_info/fingerprint"
	"github.com/byte4ever/signing_info/source"
	"github.com/byte4ever/signing_info/source/file"
	"github.com/byte4ever/signing_info/source/kube"
)

// sliceFlag implements flag.Value for repeated string
// flags.
type sliceFlag []string

func (s *sliceFlag) String() string {
	if s == nil {
		return ""
	}

	return strings.Join(*s, ",")
}

func (s *sliceFlag) Set(val string) error {
	*s = append(*s, val)

	return nil
}

// config holds all CLI parameters.
type config struct {
	pkg    string
	method string

	source             string
	certDir            string
	namespace          string
	secretNameTemplate string
	secretKeys         sliceFlag
	kubeconfig         string

	format   string
	template string
	output   string

	allowlistSource string
	allowlistFile   string
	allowlistPath   string
	allowlistRef    string
	githubOwner     string
	githubRepo      string
	githubHost      string
	gitlabHost      string
	gitlabRepo      string
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func parseFlags() *config {
	cfg := &config{}

	flag.StringVar(
		&cfg.pkg, "package", "",
		"Package name of the running application",
	)
	flag.StringVar(
		&cfg.method, "method", bridge.MethodGetSigningInfo,
		"Boundary method to invoke",
	)

	// Certificate source flags.
	flag.StringVar(
		&cfg.source, "source", "file",
		"Certificate source: file or kube",
	)
	flag.StringVar(
		&cfg.certDir, "cert_dir", "",
		"Root directory holding <package>/ certificate files",
	)
	flag.StringVar(
		&cfg.namespace, "namespace", "default",
		"Namespace of the signing Secrets",
	)
	flag.StringVar(
		&cfg.secretNameTemplate, "secret_name_template", "",
		"Secret name template, {package} is substituted",
	)
	flag.Var(
		&cfg.secretKeys, "secret_key",
		"Secret data key holding certificates (repeatable)",
	)
	flag.StringVar(
		&cfg.kubeconfig, "kubeconfig", "",
		"Path to kubeconfig (default ~/.kube/config)",
	)

	// Output flags.
	flag.StringVar(
		&cfg.format, "format", "text",
		"Report format: text, json or yaml",
	)
	flag.StringVar(
		&cfg.template, "template", "",
		"Per-certificate text template ({index}, {sha1}, {sha256})",
	)
	flag.StringVar(
		&cfg.output, "output", "",
		"Output file path (default: stdout)",
	)

	// Allow-list flags.
	flag.StringVar(
		&cfg.allowlistSource, "allowlist_source", "",
		"Allow-list source: file, github or gitlab (empty disables)",
	)
	flag.StringVar(
		&cfg.allowlistFile, "allowlist_file", "",
		"Local allow-list file",
	)
	flag.StringVar(
		&cfg.allowlistPath, "allowlist_path", "allowlist.yaml",
		"Allow-list path inside the remote repository",
	)
	flag.StringVar(
		&cfg.allowlistRef, "allowlist_ref", "",
		"Branch, tag or commit of the remote allow-list",
	)
	flag.StringVar(
		&cfg.githubOwner, "github_owner", "",
		"GitHub repository owner",
	)
	flag.StringVar(
		&cfg.githubRepo, "github_repo", "",
		"GitHub repository name",
	)
	flag.StringVar(
		&cfg.githubHost, "github_enterprise_host", "",
		"GitHub Enterprise hostname",
	)
	flag.StringVar(
		&cfg.gitlabHost, "gitlab_host", "https://gitlab.com",
		"GitLab base URL",
	)
	flag.StringVar(
		&cfg.gitlabRepo, "gitlab_repo", "",
		"GitLab project path",
	)

	flag.Parse()

	return cfg
}

func run() error {
	const errCtx = "signing_info"

	cfg := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	format, err := fingerprint.ParseFormat(cfg.format)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	pv, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	br, err := bridge.New(pv, cfg.pkg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fe, err := newFetcher(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	var result string

	// The plain text report goes through the string
	// boundary unchanged; other outputs need the report.
	if format == fingerprint.FormatText &&
		cfg.template == "" && fe == nil {
		result, err = br.Call(ctx, cfg.method)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		if err := writeOutput(cfg.output, result); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		if bridge.IsErrorText(result) {
			return fmt.Errorf("%s: %s", errCtx, result)
		}

		return nil
	}

	if cfg.method != bridge.MethodGetSigningInfo {
		return fmt.Errorf(
			"%s: calling %q: %w",
			errCtx, cfg.method, bridge.ErrNotImplemented,
		)
	}

	rep, err := br.SigningInfo(ctx)
	if err != nil {
		return fmt.Errorf(
			"%s: %s: %w",
			errCtx, bridge.KindOf(err), err,
		)
	}

	var sb strings.Builder
	if err := rep.Render(&sb, format, cfg.template); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := writeOutput(cfg.output, sb.String()); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if fe == nil {
		return nil
	}

	al, err := allowlist.Load(ctx, fe)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if al.Package != "" && al.Package != br.Package() {
		return fmt.Errorf(
			"%s: allow-list is for package %q, not %q",
			errCtx, al.Package, br.Package(),
		)
	}

	if err := al.Verify(rep); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"signing certificates allowed",
		"package", br.Package(),
		"certificates", len(rep.Entries),
	)

	return nil
}

// newProvider builds the configured certificate source.
func newProvider(cfg *config) (source.Provider, error) {
	const errCtx = "creating provider"

	switch cfg.source {
	case "file":
		pv, err := file.NewProvider(cfg.certDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return pv, nil
	case "kube":
		client, err := newKubeClient(cfg.kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		pv, err := kube.NewProvider(client, kube.Config{
			Namespace:    cfg.namespace,
			NameTemplate: cfg.secretNameTemplate,
			Keys:         cfg.secretKeys,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return pv, nil
	default:
		return nil, fmt.Errorf(
			"%s: unknown source %q", errCtx, cfg.source,
		)
	}
}

// newKubeClient resolves kubeconfig, falling back to
// ~/.kube/config outside a cluster.
func newKubeClient(
	kubeconfig string,
) (kubernetes.Interface, error) {
	const errCtx = "creating kubernetes client"

	if kubeconfig == "" {
		if _, ok := os.LookupEnv(
			"KUBERNETES_SERVICE_HOST",
		); !ok {
			kubeconfig = filepath.Join(
				homedir.HomeDir(),
				".kube", "config",
			)
		}
	}

	restConfig, err := clientcmd.BuildConfigFromFlags(
		"", kubeconfig,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: building kubeconfig: %w", errCtx, err,
		)
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return client, nil
}

// newFetcher builds the configured allow-list fetcher,
// or nil when verification is disabled. A bare
// --allowlist_file selects the file source.
func newFetcher(cfg *config) (allowlist.Fetcher, error) {
	const errCtx = "creating allow-list fetcher"

	src := cfg.allowlistSource
	if src == "" && cfg.allowlistFile != "" {
		src = "file"
	}

	switch src {
	case "":
		return nil, nil
	case "file":
		if cfg.allowlistFile == "" {
			return nil, errors.New(
				errCtx + ": --allowlist_file must be set",
			)
		}

		return allowlist.FileFetcher(cfg.allowlistFile), nil
	case "github":
		fe, err := ghfetch.NewFetcher(ghfetch.Config{
			RepoOwner:      cfg.githubOwner,
			Repo:           cfg.githubRepo,
			Path:           cfg.allowlistPath,
			Ref:            cfg.allowlistRef,
			AccessToken:    os.Getenv("GITHUB_TOKEN"),
			EnterpriseHost: cfg.githubHost,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return fe, nil
	case "gitlab":
		fe, err := glfetch.NewFetcher(glfetch.Config{
			Host:        cfg.gitlabHost,
			Repo:        cfg.gitlabRepo,
			Path:        cfg.allowlistPath,
			Ref:         cfg.allowlistRef,
			AccessToken: os.Getenv("GITLAB_TOKEN"),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return fe, nil
	default:
		return nil, fmt.Errorf(
			"%s: unknown source %q",
			errCtx, src,
		)
	}
}

// writeOutput writes result to path, or stdout when path
// is empty.
func writeOutput(path string, result string) error {
	if path != "" {
		err := os.WriteFile( //nolint:gosec // path from CLI flag
			path, []byte(result), 0o666,
		)
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		return nil
	}

	if _, err := os.Stdout.WriteString(result); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}
