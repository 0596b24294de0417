package installer

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	execFilePerm = 0o755
	dataFilePerm = 0o644
)

// extract unpacks a gzipped tarball into dest, dropping the first path component of
// every entry (npm packs everything under "package/").
func extract(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, "open gzip stream")
	}
	defer func() {
		_ = gz.Close()
	}()

	if err := os.MkdirAll(dest, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "create package directory")
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "read tar entry")
		}

		rel := stripFirstComponent(hdr.Name)
		if rel == "" {
			continue
		}
		target, err := safeJoin(dest, rel)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return zerr.Wrap(err, "create directory")
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, fileMode(hdr.Mode)); err != nil {
				return err
			}
		default:
			// Links and special files are not installed.
		}
	}
}

func stripFirstComponent(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	_, rest, ok := strings.Cut(name, "/")
	if !ok {
		return ""
	}
	return strings.Trim(rest, "/")
}

// safeJoin joins rel onto dest and rejects results outside dest.
func safeJoin(dest, rel string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(rel))
	within, err := filepath.Rel(dest, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", zerr.With(zerr.Wrap(domain.ErrUnsafeArchivePath, "extract tarball"), "entry", rel)
	}
	return target, nil
}

func fileMode(mode int64) os.FileMode {
	if mode&0o111 != 0 {
		return execFilePerm
	}
	return dataFilePerm
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "create directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) //nolint:gosec // path is checked by safeJoin
	if err != nil {
		return zerr.Wrap(err, "create file")
	}
	if _, err := io.Copy(f, io.LimitReader(r, maxTarballSize)); err != nil {
		_ = f.Close()
		return zerr.Wrap(err, "write file")
	}
	if err := f.Close(); err != nil {
		return zerr.Wrap(err, "close file")
	}
	return os.Chmod(path, mode)
}
