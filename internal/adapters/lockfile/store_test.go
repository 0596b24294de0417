package lockfile_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpm/internal/adapters/lockfile"
	"go.trai.ch/mpm/internal/core/domain"
)

func entry(version string, deps map[string]string) domain.LockEntry {
	return domain.LockEntry{
		Version:      version,
		Locator:      "https://registry.example/pkg-" + version + ".tgz",
		Integrity:    "sha-" + version,
		Dependencies: deps,
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := lockfile.NewStore("")

	require.NoError(t, store.Load(t.TempDir()))

	_, ok := store.Lookup("a", "^1.0.0")
	assert.False(t, ok)
	assert.Empty(t, store.Snapshot())
}

func TestStore_LoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mpm.yml"), []byte("a@^1: [unterminated"), 0o600))

	store := lockfile.NewStore("mpm.yml")
	err := store.Load(dir)

	require.ErrorIs(t, err, domain.ErrLockReadFailed)
	_, ok := store.Lookup("a", "^1")
	assert.False(t, ok)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mpm.yml"), []byte("\n"), 0o600))

	store := lockfile.NewStore("mpm.yml")
	require.NoError(t, store.Load(dir))
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	writer := lockfile.NewStore("mpm.yml")
	require.NoError(t, writer.Load(dir))
	writer.Record("b", "^1.0.0", entry("1.2.0", map[string]string{"c": "~2.0.0"}))
	writer.Record("a", "", entry("3.0.0", nil))
	require.NoError(t, writer.Persist())

	reader := lockfile.NewStore("mpm.yml")
	require.NoError(t, reader.Load(dir))

	manifest, ok := reader.Lookup("b", "^1.0.0")
	require.True(t, ok)
	assert.Equal(t, []string{"1.2.0"}, manifest.Versions())
	assert.Equal(t, map[string]string{"c": "~2.0.0"}, manifest["1.2.0"].Dependencies)
	assert.Equal(t, "https://registry.example/pkg-1.2.0.tgz", manifest["1.2.0"].Distribution.Locator)
	assert.Equal(t, "sha-1.2.0", manifest["1.2.0"].Distribution.Integrity)

	manifest, ok = reader.Lookup("a", "")
	require.True(t, ok)
	assert.Empty(t, manifest["3.0.0"].Dependencies)

	_, ok = reader.Lookup("b", "^1.0")
	assert.False(t, ok, "keys match literally")

	assert.Empty(t, reader.Snapshot(), "load resets the current lock")
}

func TestStore_PersistSortsKeys(t *testing.T) {
	dir := t.TempDir()
	store := lockfile.NewStore("mpm.yml")
	require.NoError(t, store.Load(dir))

	store.Record("zeta", "^1.0.0", entry("1.0.0", map[string]string{"b": "1", "a": "2"}))
	store.Record("Alpha", "^1.0.0", entry("1.0.0", nil))
	store.Record("alpha", "^10.0.0", entry("10.0.0", nil))
	store.Record("alpha", "^9.0.0", entry("9.0.0", nil))
	require.NoError(t, store.Persist())

	data, err := os.ReadFile(filepath.Join(dir, "mpm.yml"))
	require.NoError(t, err)

	expected := `Alpha@^1.0.0:
  version: 1.0.0
  url: https://registry.example/pkg-1.0.0.tgz
  shasum: sha-1.0.0
  dependencies: {}
alpha@^10.0.0:
  version: 10.0.0
  url: https://registry.example/pkg-10.0.0.tgz
  shasum: sha-10.0.0
  dependencies: {}
alpha@^9.0.0:
  version: 9.0.0
  url: https://registry.example/pkg-9.0.0.tgz
  shasum: sha-9.0.0
  dependencies: {}
zeta@^1.0.0:
  version: 1.0.0
  url: https://registry.example/pkg-1.0.0.tgz
  shasum: sha-1.0.0
  dependencies:
    a: "2"
    b: "1"
`
	assert.Equal(t, expected, string(data))
}

func TestStore_PersistIsFullRebuild(t *testing.T) {
	dir := t.TempDir()

	first := lockfile.NewStore("mpm.yml")
	require.NoError(t, first.Load(dir))
	first.Record("stale", "^1.0.0", entry("1.0.0", nil))
	require.NoError(t, first.Persist())

	second := lockfile.NewStore("mpm.yml")
	require.NoError(t, second.Load(dir))
	second.Record("fresh", "^1.0.0", entry("1.0.0", nil))
	require.NoError(t, second.Persist())

	third := lockfile.NewStore("mpm.yml")
	require.NoError(t, third.Load(dir))
	_, ok := third.Lookup("stale", "^1.0.0")
	assert.False(t, ok)
	_, ok = third.Lookup("fresh", "^1.0.0")
	assert.True(t, ok)
}

func TestStore_RecordMerges(t *testing.T) {
	store := lockfile.NewStore("mpm.yml")
	require.NoError(t, store.Load(t.TempDir()))

	store.Record("a", "^1.0.0", entry("1.0.0", map[string]string{"b": "^1.0.0"}))
	store.Record("a", "^1.0.0", domain.LockEntry{Integrity: "override"})

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	got := snap[domain.LockKey("a", "^1.0.0")]
	assert.Equal(t, "1.0.0", got.Version)
	assert.Equal(t, "override", got.Integrity)
	assert.Equal(t, map[string]string{"b": "^1.0.0"}, got.Dependencies)
}

func TestStore_RecordConcurrent(t *testing.T) {
	store := lockfile.NewStore("mpm.yml")
	require.NoError(t, store.Load(t.TempDir()))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			name := string(rune('a' + i%26))
			store.Record(name, "^1.0.0", entry("1.0.0", nil))
		})
	}
	wg.Wait()

	assert.Len(t, store.Snapshot(), 26)
}

func TestStore_PersistFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	store := lockfile.NewStore("mpm.yml")
	require.ErrorIs(t, store.Load(filepath.Join(blocker, "sub")), domain.ErrLockReadFailed)
	store.Record("a", "", entry("1.0.0", nil))

	require.ErrorIs(t, store.Persist(), domain.ErrLockWriteFailed)
}

func TestEncode_Empty(t *testing.T) {
	data, err := lockfile.Encode(domain.Lockfile{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
