package bridge_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/signing_info/bridge"
	"github.com/byte4ever/signing_info/fingerprint"
	"github.com/byte4ever/signing_info/source"
)

const (
	abcSHA1   = "A9993E364706816ABA3E25717850C26C9CD0D89D"
	abcSHA256 = "BA7816BF8F01CFEA414140DE5DAE2223" +
		"B00361A396177A9CB410FF61F20015AD"
	selfPkg = "com.example.road_helper"
)

// staticProvider serves certs for selfPkg only.
func staticProvider(
	certs ...fingerprint.Certificate,
) source.Provider {
	return source.ProviderFunc(func(
		_ context.Context,
		pkg string,
	) ([]fingerprint.Certificate, error) {
		if pkg != selfPkg {
			return nil, fmt.Errorf(
				"%s: %w", pkg, source.ErrPackageNotFound,
			)
		}

		return certs, nil
	})
}

func errProvider(err error) source.Provider {
	return source.ProviderFunc(func(
		context.Context,
		string,
	) ([]fingerprint.Certificate, error) {
		return nil, err
	})
}

func newBridge(
	tb testing.TB,
	pv source.Provider,
) *bridge.Bridge {
	tb.Helper()

	br, err := bridge.New(pv, selfPkg)
	require.NoError(tb, err)

	return br
}

func TestNew_missing_provider(t *testing.T) {
	t.Parallel()

	br, err := bridge.New(nil, selfPkg)

	assert.Nil(t, br)
	assert.ErrorContains(t, err, "provider must be set")
}

func TestNew_invalid_package(t *testing.T) {
	t.Parallel()

	br, err := bridge.New(staticProvider(), "")

	assert.Nil(t, br)
	assert.ErrorContains(t, err, "package name must be set")
}

func TestGetSigningInfo_report(t *testing.T) {
	t.Parallel()

	br := newBridge(t, staticProvider([]byte("abc")))

	got := br.GetSigningInfo(context.Background())

	assert.Equal(
		t,
		"SHA-1: "+abcSHA1+"\nSHA-256: "+abcSHA256+"\n",
		got,
	)
}

func TestGetSigningInfo_no_signatures(t *testing.T) {
	t.Parallel()

	br := newBridge(t, staticProvider())

	assert.Equal(t, "", br.GetSigningInfo(context.Background()))
}

func TestGetSigningInfo_package_not_found(t *testing.T) {
	t.Parallel()

	br := newBridge(t, errProvider(
		fmt.Errorf("lookup: %w", source.ErrPackageNotFound),
	))

	got := br.GetSigningInfo(context.Background())

	assert.Equal(t, "Error: Package name not found", got)
	assert.True(t, bridge.IsErrorText(got))
}

func TestGetSigningInfo_algorithm_unavailable(t *testing.T) {
	t.Parallel()

	br := newBridge(t, errProvider(
		fmt.Errorf("x: %w", fingerprint.ErrHashAlgorithmUnavailable),
	))

	assert.Equal(
		t,
		"Error: No such algorithm",
		br.GetSigningInfo(context.Background()),
	)
}

func TestGetSigningInfo_other_error(t *testing.T) {
	t.Parallel()

	br := newBridge(t, errProvider(errors.New("disk on fire")))

	got := br.GetSigningInfo(context.Background())

	assert.Equal(t, "Error: disk on fire", got)
}

func TestSigningInfo_error_keeps_context(t *testing.T) {
	t.Parallel()

	br := newBridge(t, errProvider(errors.New("disk on fire")))

	_, err := br.SigningInfo(context.Background())

	assert.EqualError(t, err, "getting signing info: disk on fire")
}

func TestGetSigningInfo_provider_panic(t *testing.T) {
	t.Parallel()

	br := newBridge(t, source.ProviderFunc(func(
		context.Context,
		string,
	) ([]fingerprint.Certificate, error) {
		panic("boom")
	}))

	var got string

	require.NotPanics(t, func() {
		got = br.GetSigningInfo(context.Background())
	})
	assert.Equal(t, "Error: provider panic: boom", got)
}

func TestSigningInfo_tagged_result(t *testing.T) {
	t.Parallel()

	br := newBridge(t, staticProvider([]byte("abc"), []byte("")))

	rep, err := br.SigningInfo(context.Background())

	require.NoError(t, err)
	require.Len(t, rep.Entries, 2)
	assert.Equal(t, abcSHA1, rep.Entries[0].SHA1)
}

func TestSigningInfo_error_kind(t *testing.T) {
	t.Parallel()

	br := newBridge(t, errProvider(source.ErrPackageNotFound))

	_, err := br.SigningInfo(context.Background())

	assert.Equal(t, bridge.KindSourceLookupFailed, bridge.KindOf(err))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bridge.ErrorKind
	}{
		{
			name: "lookup",
			err:  fmt.Errorf("a: %w", source.ErrPackageNotFound),
			want: bridge.KindSourceLookupFailed,
		},
		{
			name: "algorithm",
			err: fmt.Errorf(
				"a: %w", fingerprint.ErrHashAlgorithmUnavailable,
			),
			want: bridge.KindHashAlgorithmUnavailable,
		},
		{
			name: "other",
			err:  errors.New("other"),
			want: bridge.KindUnknown,
		},
		{name: "nil", err: nil, want: bridge.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, bridge.KindOf(tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SourceLookupFailed", bridge.KindSourceLookupFailed.String())
	assert.Equal(t, "HashAlgorithmUnavailable", bridge.KindHashAlgorithmUnavailable.String())
	assert.Equal(t, "Unknown", bridge.KindUnknown.String())
}

func TestCall_dispatches_getSigningInfo(t *testing.T) {
	t.Parallel()

	br := newBridge(t, staticProvider([]byte("abc")))

	got, err := br.Call(
		context.Background(), bridge.MethodGetSigningInfo,
	)

	require.NoError(t, err)
	assert.Contains(t, got, "SHA-1: "+abcSHA1+"\n")
}

func TestCall_unknown_method(t *testing.T) {
	t.Parallel()

	br := newBridge(t, staticProvider())

	got, err := br.Call(context.Background(), "getBatteryLevel")

	assert.Empty(t, got)
	assert.ErrorIs(t, err, bridge.ErrNotImplemented)
}

func TestGetSigningInfo_concurrent_callers(t *testing.T) {
	t.Parallel()

	br := newBridge(t, staticProvider([]byte("abc")))
	want := br.GetSigningInfo(context.Background())

	const callers = 16

	var wg sync.WaitGroup

	results := make([]string, callers)

	for idx := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[idx] = br.GetSigningInfo(context.Background())
		}()
	}

	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
