// Package manifest reads and writes the project's package.json.
package manifest

import (
	"os"
	"path/filepath"

	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ManifestStore.
type Store struct {
	Filename string
}

// NewStore creates a Store for package.json.
func NewStore() *Store {
	return &Store{Filename: domain.ManifestFileName}
}

// Find walks up from cwd and returns the directory containing the manifest.
func (s *Store) Find(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	currentDir := abs
	for {
		if info, err := os.Stat(filepath.Join(currentDir, s.Filename)); err == nil && !info.IsDir() {
			return currentDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "find manifest"), "cwd", abs)
}

// Load finds and parses the manifest.
func (s *Store) Load(cwd string) (*domain.RootManifest, error) {
	dir, err := s.Find(cwd)
	if err != nil {
		return nil, err
	}

	doc, err := s.read(dir)
	if err != nil {
		return nil, err
	}

	m := &domain.RootManifest{Dir: dir}
	if m.Dependencies, m.HasDependencies, err = doc.dependencies(domain.KindProduction.String()); err != nil {
		return nil, s.parseErr(dir, err)
	}
	if m.DevDependencies, m.HasDevDependencies, err = doc.dependencies(domain.KindDevelopment.String()); err != nil {
		return nil, s.parseErr(dir, err)
	}
	return m, nil
}

// Save rewrites the dependency sections of the manifest in m.Dir. Every other member
// and the original member order are preserved. Sections are written only when the
// manifest declares them.
func (s *Store) Save(m *domain.RootManifest) error {
	doc, err := s.read(m.Dir)
	if err != nil {
		return err
	}

	for _, kind := range []domain.DependencyKind{domain.KindProduction, domain.KindDevelopment} {
		list := *m.List(kind)
		declared := m.HasDependencies
		if kind == domain.KindDevelopment {
			declared = m.HasDevDependencies
		}
		if !declared && len(list) == 0 {
			continue
		}
		if err := doc.setDependencies(kind.String(), list); err != nil {
			return s.writeErr(m.Dir, err)
		}
	}

	data, err := doc.encode()
	if err != nil {
		return s.writeErr(m.Dir, err)
	}

	path := filepath.Join(m.Dir, s.Filename)
	info, err := os.Stat(path)
	if err != nil {
		return s.writeErr(m.Dir, err)
	}
	if err := replaceFile(path, data, info.Mode().Perm()); err != nil {
		return s.writeErr(m.Dir, err)
	}
	return nil
}

// replaceFile writes data next to path and renames it over the original.
func replaceFile(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".package-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (s *Store) read(dir string) (*document, error) {
	path := filepath.Join(dir, s.Filename)
	data, err := os.ReadFile(path) //nolint:gosec // path is the project manifest
	if err != nil {
		return nil, s.parseErr(dir, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, s.parseErr(dir, err)
	}
	return doc, nil
}

func (s *Store) parseErr(dir string, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, "read manifest"), "path", filepath.Join(dir, s.Filename))
	return zerr.With(err, "cause", cause.Error())
}

func (s *Store) writeErr(dir string, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrManifestWriteFailed, "write manifest"), "path", filepath.Join(dir, s.Filename))
	return zerr.With(err, "cause", cause.Error())
}
