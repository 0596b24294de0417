// Package lockfile implements the LockStore port on top of a YAML lock file.
package lockfile

import (
	"bytes"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Store implements ports.LockStore.
//
// prior is read by Load and only read afterwards. current is rebuilt by Record
// during resolution and written by Persist.
type Store struct {
	fileName string

	mu      sync.Mutex
	path    string
	prior   domain.Lockfile
	current domain.Lockfile
}

// NewStore creates a Store that reads and writes fileName inside the directory given to Load.
func NewStore(fileName string) *Store {
	if fileName == "" {
		fileName = domain.DefaultLockFileName
	}
	return &Store{
		fileName: fileName,
		path:     filepath.Clean(fileName),
		prior:    domain.Lockfile{},
		current:  domain.Lockfile{},
	}
}

// Path returns the lock file location used by Persist.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Load reads the prior lock from dir and resets the current lock.
func (s *Store) Load(dir string) error {
	path := filepath.Join(dir, s.fileName)

	s.mu.Lock()
	s.path = path
	s.prior = domain.Lockfile{}
	s.current = domain.Lockfile{}
	s.mu.Unlock()

	//nolint:gosec // Path is built from the project directory and a configured file name
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return readErr(path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var prior domain.Lockfile
	if err := yaml.Unmarshal(data, &prior); err != nil {
		return readErr(path, err)
	}
	if prior == nil {
		prior = domain.Lockfile{}
	}

	s.mu.Lock()
	s.prior = prior
	s.mu.Unlock()
	return nil
}

func readErr(path string, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrLockReadFailed, "ignoring lock file"), "path", path)
	return zerr.With(err, "cause", cause.Error())
}

// Lookup returns the single-version manifest recorded for name@constraint in the prior lock.
func (s *Store) Lookup(name, constraint string) (domain.ResolvedManifest, bool) {
	s.mu.Lock()
	entry, ok := s.prior[domain.LockKey(name, constraint)]
	s.mu.Unlock()
	if !ok || entry.Version == "" {
		return nil, false
	}
	return entry.Manifest(), true
}

// Record merges entry into the current lock.
func (s *Store) Record(name, constraint string, entry domain.LockEntry) {
	key := domain.LockKey(name, constraint)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.current[key]
	existing.Merge(entry)
	s.current[key] = existing
}

// Snapshot returns a copy of the current lock.
func (s *Store) Snapshot() domain.Lockfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.Lockfile, len(s.current))
	for k, v := range s.current {
		v.Dependencies = maps.Clone(v.Dependencies)
		out[k] = v
	}
	return out
}

// Persist writes the current lock with its keys in lexicographic order.
func (s *Store) Persist() error {
	snapshot := s.Snapshot()
	path := s.Path()

	data, err := Encode(snapshot)
	if err != nil {
		return writeErr(path, err)
	}
	if err := atomicWriteFile(path, data); err != nil {
		return writeErr(path, err)
	}
	return nil
}

func writeErr(path string, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrLockWriteFailed, "persist lock"), "path", path)
	return zerr.With(err, "cause", cause.Error())
}

// Encode renders a lock as YAML with a two-space indent and keys in byte order.
func Encode(lock domain.Lockfile) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range lock.Keys() {
		entry := lock[key]
		if entry.Dependencies == nil {
			entry.Dependencies = map[string]string{}
		}

		value := &yaml.Node{}
		if err := value.Encode(entry); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "encode lock entry"), "key", key)
		}
		sortMapping(value)

		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if len(root.Content) == 0 {
		if err := enc.Encode(map[string]domain.LockEntry{}); err != nil {
			return nil, zerr.Wrap(err, "encode lock")
		}
	} else if err := enc.Encode(root); err != nil {
		return nil, zerr.Wrap(err, "encode lock")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "encode lock")
	}
	return buf.Bytes(), nil
}

// sortMapping orders the dependencies mapping of an encoded entry by byte order.
func sortMapping(entry *yaml.Node) {
	for i := 0; i+1 < len(entry.Content); i += 2 {
		if entry.Content[i].Value != "dependencies" {
			continue
		}
		deps := entry.Content[i+1]
		pairs := make([][2]*yaml.Node, 0, len(deps.Content)/2)
		for j := 0; j+1 < len(deps.Content); j += 2 {
			pairs = append(pairs, [2]*yaml.Node{deps.Content[j], deps.Content[j+1]})
		}
		slices.SortFunc(pairs, func(a, b [2]*yaml.Node) int {
			return strings.Compare(a[0].Value, b[0].Value)
		})
		deps.Content = deps.Content[:0]
		for _, p := range pairs {
			deps.Content = append(deps.Content, p[0], p[1])
		}
	}
}

// atomicWriteFile writes data to a temp file next to path and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".mpm-lock-*.yml")
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
	if err := os.Chmod(tmpName, domain.PrivateFilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
