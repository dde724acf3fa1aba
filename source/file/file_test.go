package file_test

import (
	"context"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/signing_info/fingerprint"
	"github.com/byte4ever/signing_info/source"
	"github.com/byte4ever/signing_info/source/file"
)

// writeTemp creates dir/name with content, creating dir
// as needed.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content []byte,
) {
	tb.Helper()

	require.NoError(tb, os.MkdirAll(dir, 0o700))
	require.NoError(
		tb,
		os.WriteFile(filepath.Join(dir, name), content, 0o600),
	)
}

func certPEM(der string) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: []byte(der),
	})
}

func TestNewProvider_missing_root(t *testing.T) {
	t.Parallel()

	pv, err := file.NewProvider("")

	assert.Nil(t, pv)
	assert.ErrorContains(t, err, "root directory")
}

func TestNewProvider_nonexistent_root(t *testing.T) {
	t.Parallel()

	pv, err := file.NewProvider("/nonexistent/certs")

	assert.Nil(t, pv)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewProvider_root_is_file(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "plain", []byte("x"))

	pv, err := file.NewProvider(filepath.Join(dir, "plain"))

	assert.Nil(t, pv)
	assert.ErrorContains(t, err, "not a directory")
}

func TestCertificates_reads_files_in_name_order(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "com.example.app")

	writeTemp(t, pkgDir, "b.der", []byte("second"))
	writeTemp(t, pkgDir, "a.pem", certPEM("first"))
	writeTemp(t, pkgDir, "notes.txt", []byte("ignored"))

	pv, err := file.NewProvider(root)
	require.NoError(t, err)

	certs, err := pv.Certificates(
		context.Background(), "com.example.app",
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		[]fingerprint.Certificate{
			[]byte("first"),
			[]byte("second"),
		},
		certs,
	)
}

func TestCertificates_zero_length_der(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "pkg")

	writeTemp(t, pkgDir, "a.der", []byte{})
	writeTemp(t, pkgDir, "b.pem", certPEM("second"))

	pv, err := file.NewProvider(root)
	require.NoError(t, err)

	certs, err := pv.Certificates(context.Background(), "pkg")

	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Empty(t, certs[0])
	assert.Equal(t, fingerprint.Certificate("second"), certs[1])
}

func TestCertificates_unknown_package(t *testing.T) {
	t.Parallel()

	pv, err := file.NewProvider(t.TempDir())
	require.NoError(t, err)

	certs, err := pv.Certificates(
		context.Background(), "com.example.missing",
	)

	assert.Nil(t, certs)
	assert.ErrorIs(t, err, source.ErrPackageNotFound)
}

func TestCertificates_empty_package_dir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(
		t, os.Mkdir(filepath.Join(root, "com.example.app"), 0o700),
	)

	pv, err := file.NewProvider(root)
	require.NoError(t, err)

	certs, err := pv.Certificates(
		context.Background(), "com.example.app",
	)

	require.NoError(t, err)
	assert.NotNil(t, certs)
	assert.Empty(t, certs)
}

func TestCertificates_rejects_traversal(t *testing.T) {
	t.Parallel()

	pv, err := file.NewProvider(t.TempDir())
	require.NoError(t, err)

	_, err = pv.Certificates(context.Background(), "..")

	require.Error(t, err)
	assert.NotErrorIs(t, err, source.ErrPackageNotFound)
}

func TestCertificates_bad_pem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTemp(
		t, filepath.Join(root, "pkg"), "key.pem",
		pem.EncodeToMemory(&pem.Block{
			Type: "PRIVATE KEY", Bytes: []byte("k"),
		}),
	)

	pv, err := file.NewProvider(root)
	require.NoError(t, err)

	_, err = pv.Certificates(context.Background(), "pkg")

	assert.ErrorContains(t, err, "key.pem")
}

func TestCertificates_cancelled_context(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTemp(t, filepath.Join(root, "pkg"), "a.der", []byte("x"))

	pv, err := file.NewProvider(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pv.Certificates(ctx, "pkg")

	assert.ErrorIs(t, err, context.Canceled)
}
