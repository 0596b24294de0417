package installer_test

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // npm shasum
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpm/internal/adapters/installer"
	"go.trai.ch/mpm/internal/core/domain"
)

type tarFile struct {
	name string
	body string
	mode int64
	dir  bool
}

func tarball(t *testing.T, files ...tarFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, f := range files {
		hdr := &tar.Header{Name: f.name, Mode: f.mode, Size: int64(len(f.body)), Typeflag: tar.TypeReg}
		if f.dir {
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0o644
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !f.dir {
			_, err := tw.Write([]byte(f.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func shasum(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec // npm shasum
	return hex.EncodeToString(sum[:])
}

func serve(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pkg.tgz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPackageDir(t *testing.T) {
	root := filepath.FromSlash("/project")

	assert.Equal(t,
		filepath.FromSlash("/project/node_modules/left-pad"),
		installer.PackageDir(root, domain.InstallRequest{Name: "left-pad"}))
	assert.Equal(t,
		filepath.FromSlash("/project/node_modules/a/node_modules/@scope/b/node_modules/c"),
		installer.PackageDir(root, domain.InstallRequest{Name: "c", Parents: []string{"a", "@scope/b"}}))
}

func TestInstaller_Install(t *testing.T) {
	data := tarball(t,
		tarFile{name: "package/", dir: true},
		tarFile{name: "package/package.json", body: `{"name":"left-pad"}`},
		tarFile{name: "package/lib/index.js", body: "module.exports = 1"},
		tarFile{name: "package/bin/cli", body: "#!/bin/sh", mode: 0o775},
	)
	srv := serve(t, data)
	root := t.TempDir()

	inst := installer.New(5 * time.Second)
	req := domain.InstallRequest{Name: "left-pad", Locator: srv.URL + "/pkg.tgz", Integrity: shasum(data)}
	require.NoError(t, inst.Install(context.Background(), root, req))

	dest := filepath.Join(root, "node_modules", "left-pad")
	content, err := os.ReadFile(filepath.Join(dest, "lib", "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "module.exports = 1", string(content))

	info, err := os.Stat(filepath.Join(dest, "bin", "cli"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(dest, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestInstaller_Nested(t *testing.T) {
	data := tarball(t, tarFile{name: "package/index.js", body: "nested"})
	srv := serve(t, data)
	root := t.TempDir()

	req := domain.InstallRequest{Name: "c", Parents: []string{"a", "b"}, Locator: srv.URL + "/pkg.tgz"}
	require.NoError(t, installer.New(time.Second).Install(context.Background(), root, req))

	assert.FileExists(t, filepath.Join(root, "node_modules", "a", "node_modules", "b", "node_modules", "c", "index.js"))
}

func TestInstaller_ReplacesPreviousContent(t *testing.T) {
	data := tarball(t, tarFile{name: "package/new.js", body: "new"})
	srv := serve(t, data)
	root := t.TempDir()

	stale := filepath.Join(root, "node_modules", "pkg", "stale.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o750))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	req := domain.InstallRequest{Name: "pkg", Locator: srv.URL + "/pkg.tgz"}
	require.NoError(t, installer.New(time.Second).Install(context.Background(), root, req))

	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(root, "node_modules", "pkg", "new.js"))
}

func TestInstaller_IntegrityMismatch(t *testing.T) {
	data := tarball(t, tarFile{name: "package/index.js", body: "x"})
	srv := serve(t, data)
	root := t.TempDir()

	req := domain.InstallRequest{Name: "pkg", Locator: srv.URL + "/pkg.tgz", Integrity: "deadbeef"}
	err := installer.New(time.Second).Install(context.Background(), root, req)

	require.ErrorIs(t, err, domain.ErrIntegrityMismatch)
	assert.NoDirExists(t, filepath.Join(root, "node_modules", "pkg"))
}

func TestInstaller_UnsafePath(t *testing.T) {
	data := tarball(t, tarFile{name: "package/../../escape.js", body: "evil"})
	srv := serve(t, data)
	root := t.TempDir()

	req := domain.InstallRequest{Name: "pkg", Locator: srv.URL + "/pkg.tgz"}
	err := installer.New(time.Second).Install(context.Background(), root, req)

	require.ErrorIs(t, err, domain.ErrUnsafeArchivePath)
	assert.NoFileExists(t, filepath.Join(root, "node_modules", "escape.js"))
}

func TestInstaller_DownloadFailures(t *testing.T) {
	srv := serve(t, nil)
	root := t.TempDir()
	inst := installer.New(time.Second)

	err := inst.Install(context.Background(), root, domain.InstallRequest{Name: "pkg", Locator: srv.URL + "/missing.tgz"})
	require.ErrorIs(t, err, domain.ErrInstallFailed)

	err = inst.Install(context.Background(), root, domain.InstallRequest{Name: "pkg"})
	require.ErrorIs(t, err, domain.ErrInstallFailed)
}

func TestInstaller_NotGzip(t *testing.T) {
	srv := serve(t, []byte("plain text"))
	root := t.TempDir()

	err := installer.New(time.Second).Install(context.Background(), root,
		domain.InstallRequest{Name: "pkg", Locator: srv.URL + "/pkg.tgz"})
	require.ErrorIs(t, err, domain.ErrInstallFailed)
}
