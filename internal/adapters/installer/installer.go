// Package installer implements the Installer port by extracting registry tarballs into node_modules.
package installer

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // npm publishes SHA-1 shasums for every tarball
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const maxTarballSize = 512 << 20

// Installer implements ports.Installer.
type Installer struct {
	httpClient *http.Client
	timeout    time.Duration
}

// New creates an Installer whose downloads time out after timeout.
func New(timeout time.Duration) *Installer {
	return NewWithClient(&http.Client{}, timeout)
}

// NewWithClient creates an Installer using the given HTTP client.
func NewWithClient(client *http.Client, timeout time.Duration) *Installer {
	return &Installer{httpClient: client, timeout: timeout}
}

// PackageDir returns the directory req is installed into below root.
func PackageDir(root string, req domain.InstallRequest) string {
	parts := []string{root, domain.NodeModulesDirName}
	for _, parent := range req.Parents {
		parts = append(parts, filepath.FromSlash(parent), domain.NodeModulesDirName)
	}
	parts = append(parts, filepath.FromSlash(req.Name))
	return filepath.Join(parts...)
}

// Install downloads the tarball of req, verifies its shasum and extracts it below root.
// Any previous content of the package directory is removed first.
func (i *Installer) Install(ctx context.Context, root string, req domain.InstallRequest) error {
	dest := PackageDir(root, req)

	if req.Locator == "" {
		return installErr(req, zerr.New("package has no tarball url"))
	}

	data, err := i.download(ctx, req.Locator)
	if err != nil {
		return installErr(req, err)
	}

	if err := verify(data, req.Integrity); err != nil {
		return zerr.With(zerr.With(err, "package", req.Name), "url", req.Locator)
	}

	if err := os.RemoveAll(dest); err != nil {
		return installErr(req, err)
	}
	if err := extract(bytes.NewReader(data), dest); err != nil {
		if errors.Is(err, domain.ErrUnsafeArchivePath) {
			return zerr.With(err, "package", req.Name)
		}
		return installErr(req, err)
	}
	return nil
}

func (i *Installer) download(ctx context.Context, locator string) ([]byte, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNetwork, "download tarball"), "cause", err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.Wrap(domain.ErrNetwork, "download tarball"), "status_code", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTarballSize))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNetwork, "read tarball"), "cause", err.Error())
	}
	return data, nil
}

// verify compares the SHA-1 of data with the expected hex shasum. An empty shasum is not checked.
func verify(data []byte, shasum string) error {
	if shasum == "" {
		return nil
	}
	sum := sha1.Sum(data) //nolint:gosec // npm shasum
	actual := hex.EncodeToString(sum[:])
	if !strings.EqualFold(actual, shasum) {
		err := zerr.With(zerr.Wrap(domain.ErrIntegrityMismatch, "verify tarball"), "expected", shasum)
		return zerr.With(err, "actual", actual)
	}
	return nil
}

func installErr(req domain.InstallRequest, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrInstallFailed, "install package"), "package", req.Name)
	if len(req.Parents) > 0 {
		err = zerr.With(err, "parents", strings.Join(req.Parents, "/"))
	}
	return zerr.With(err, "cause", cause.Error())
}
