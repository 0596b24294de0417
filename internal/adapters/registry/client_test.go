package registry_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpm/internal/adapters/registry"
	"go.trai.ch/mpm/internal/core/domain"
)

const leftPadDoc = `{
  "name": "left-pad",
  "dist-tags": {"latest": "1.3.0"},
  "versions": {
    "1.1.0": {"dist": {"tarball": "https://r.example/left-pad/-/left-pad-1.1.0.tgz", "shasum": "aaa"}},
    "1.3.0": {
      "dependencies": {"is-odd": "^3.0.0"},
      "dist": {"tarball": "https://r.example/left-pad/-/left-pad-1.3.0.tgz", "shasum": "bbb"}
    }
  }
}`

// MockRoundTripper is a helper to mock http.Client behavior.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func newMockClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &MockRoundTripper{RoundTripFunc: handler},
	}
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testSettings(t *testing.T) *domain.Settings {
	t.Helper()
	s := domain.DefaultSettings()
	s.Registry = "https://r.example/"
	s.CacheDir = t.TempDir()
	s.FetchTimeout = time.Second
	return &s
}

func newClient(t *testing.T, settings *domain.Settings, handler func(req *http.Request) (*http.Response, error)) *registry.Client {
	t.Helper()
	return registry.NewClient(settings, nil,
		registry.WithHTTPClient(newMockClient(handler)),
		registry.WithBackoff(time.Millisecond),
	)
}

func TestClient_FetchManifest(t *testing.T) {
	var gotAccept string
	client := newClient(t, testSettings(t), func(req *http.Request) (*http.Response, error) {
		gotAccept = req.Header.Get("Accept")
		if req.URL.String() == "https://r.example/left-pad" {
			return respond(http.StatusOK, leftPadDoc), nil
		}
		return respond(http.StatusNotFound, ""), nil
	})

	manifest, err := client.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)

	assert.Contains(t, gotAccept, "application/vnd.npm.install-v1+json")
	assert.Equal(t, []string{"1.1.0", "1.3.0"}, manifest.Versions())
	assert.Equal(t, map[string]string{"is-odd": "^3.0.0"}, manifest["1.3.0"].Dependencies)
	assert.NotNil(t, manifest["1.1.0"].Dependencies)
	assert.Equal(t, "https://r.example/left-pad/-/left-pad-1.3.0.tgz", manifest["1.3.0"].Distribution.Locator)
	assert.Equal(t, "bbb", manifest["1.3.0"].Distribution.Integrity)
}

func TestClient_ScopedPackageURL(t *testing.T) {
	var gotPath string
	client := newClient(t, testSettings(t), func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.EscapedPath()
		return respond(http.StatusOK, `{"name":"@types/node","versions":{}}`), nil
	})

	assert.Equal(t, "https://r.example/@types%2Fnode", client.PackageURLForTest("@types/node"))

	_, err := client.FetchManifest(context.Background(), "@types/node")
	require.NoError(t, err)
	assert.Equal(t, "/@types%2Fnode", gotPath)
}

func TestClient_NotFound(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, testSettings(t), func(_ *http.Request) (*http.Response, error) {
		calls.Add(1)
		return respond(http.StatusNotFound, `{"error":"Not found"}`), nil
	})

	_, err := client.FetchManifest(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
	assert.Equal(t, int32(1), calls.Load(), "404 is not retried")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, testSettings(t), func(_ *http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return respond(http.StatusBadGateway, "upstream"), nil
		}
		return respond(http.StatusOK, leftPadDoc), nil
	})

	manifest, err := client.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.Len(t, manifest, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	settings := testSettings(t)
	settings.FetchRetries = 2

	var calls atomic.Int32
	client := newClient(t, settings, func(_ *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("connection reset by peer")
	})

	_, err := client.FetchManifest(context.Background(), "left-pad")
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, testSettings(t), func(_ *http.Request) (*http.Response, error) {
		calls.Add(1)
		return respond(http.StatusForbidden, ""), nil
	})

	_, err := client.FetchManifest(context.Background(), "private")
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ParseError(t *testing.T) {
	client := newClient(t, testSettings(t), func(_ *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "<html>"), nil
	})

	_, err := client.FetchManifest(context.Background(), "left-pad")
	require.ErrorIs(t, err, domain.ErrRegistryParseFailed)
}

func TestClient_CancelledContext(t *testing.T) {
	client := newClient(t, testSettings(t), func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchManifest(ctx, "left-pad")
	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_Timeout(t *testing.T) {
	settings := testSettings(t)
	settings.FetchTimeout = 10 * time.Millisecond
	settings.FetchRetries = 1

	client := newClient(t, settings, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	_, err := client.FetchManifest(context.Background(), "slow")
	require.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_SharesConcurrentFetches(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	client := newClient(t, testSettings(t), func(_ *http.Request) (*http.Response, error) {
		calls.Add(1)
		<-release
		return respond(http.StatusOK, leftPadDoc), nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, err := client.FetchManifest(context.Background(), "left-pad")
			assert.NoError(t, err)
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	_, err := client.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_DiskCache(t *testing.T) {
	settings := testSettings(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var calls atomic.Int32
	handler := func(_ *http.Request) (*http.Response, error) {
		calls.Add(1)
		return respond(http.StatusOK, leftPadDoc), nil
	}
	newCached := func() *registry.Client {
		return registry.NewClient(settings, nil,
			registry.WithHTTPClient(newMockClient(handler)),
			registry.WithClock(clock),
		)
	}

	first := newCached()
	_, err := first.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.FileExists(t, first.CachePathForTest("left-pad"))

	second := newCached()
	manifest, err := second.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "served from disk")
	assert.Equal(t, "bbb", manifest["1.3.0"].Distribution.Integrity)

	now = now.Add(11 * time.Minute)
	third := newCached()
	_, err = third.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expired entries are refetched")
}

func TestClient_CorruptCacheIsMiss(t *testing.T) {
	settings := testSettings(t)
	var calls atomic.Int32
	client := newClient(t, settings, func(_ *http.Request) (*http.Response, error) {
		calls.Add(1)
		return respond(http.StatusOK, leftPadDoc), nil
	})

	require.NoError(t, os.WriteFile(client.CachePathForTest("left-pad"), []byte("{broken"), 0o600))

	_, err := client.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_DiskCacheDisabled(t *testing.T) {
	settings := testSettings(t)
	zero := time.Duration(0)
	settings.CacheTTL = &zero

	client := newClient(t, settings, func(_ *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, leftPadDoc), nil
	})

	_, err := client.FetchManifest(context.Background(), "left-pad")
	require.NoError(t, err)
	assert.NoFileExists(t, client.CachePathForTest("left-pad"))
}
