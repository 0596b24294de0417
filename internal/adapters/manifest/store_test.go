package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpm/internal/adapters/manifest"
	"go.trai.ch/mpm/internal/core/domain"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStore_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `{
  "name": "demo",
  "dependencies": {
    "zeta": "^1.0.0",
    "alpha": "~2.1.0"
  },
  "devDependencies": {
    "jest": ""
  }
}`)

	m, err := manifest.NewStore().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, m.Dir)
	assert.True(t, m.HasDependencies)
	assert.True(t, m.HasDevDependencies)
	assert.Equal(t, domain.DependencyList{
		{Name: "zeta", Range: "^1.0.0"},
		{Name: "alpha", Range: "~2.1.0"},
	}, m.Dependencies)
	assert.Equal(t, domain.DependencyList{{Name: "jest", Range: ""}}, m.DevDependencies)
}

func TestStore_LoadFindsParentDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, `{"dependencies": {"a": "1.0.0"}}`)
	nested := filepath.Join(root, "src", "lib")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	m, err := manifest.NewStore().Load(nested)
	require.NoError(t, err)
	assert.Equal(t, root, m.Dir)
	assert.False(t, m.HasDevDependencies)
	assert.Empty(t, m.DevDependencies)
}

func TestStore_LoadTolerant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, `{
  // local tooling
  "dependencies": {
    "a": "^1.0.0",
  },
  "devDependencies": null,
}`)

	m, err := manifest.NewStore().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DependencyList{{Name: "a", Range: "^1.0.0"}}, m.Dependencies)
	assert.False(t, m.HasDevDependencies)
}

func TestStore_LoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `dependencies: {}`},
		{name: "array", content: `[]`},
		{name: "section not object", content: `{"dependencies": ["a"]}`},
		{name: "range not string", content: `{"dependencies": {"a": 1}}`},
		{name: "trailing content", content: `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)

			_, err := manifest.NewStore().Load(dir)
			require.ErrorIs(t, err, domain.ErrManifestParseFailed)
		})
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	t.Parallel()

	store := &manifest.Store{Filename: "mpm-test-missing-manifest.json"}
	_, err := store.Load(t.TempDir())
	require.ErrorIs(t, err, domain.ErrManifestNotFound)
}

func TestStore_SavePreservesOtherMembers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, `{"name":"demo","version":"1.0.0","scripts":{"test":"a && b"},"dependencies":{"b":"1.0.0"},"license":"MIT"}`)

	store := manifest.NewStore()
	m, err := store.Load(dir)
	require.NoError(t, err)

	m.Dependencies.Set("b", "^1.0.0")
	m.Add(domain.KindDevelopment, []domain.PackageSpec{{Name: "jest", Range: "^29.0.0"}})
	require.NoError(t, store.Save(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "demo",
  "version": "1.0.0",
  "scripts": {
    "test": "a && b"
  },
  "dependencies": {
    "b": "^1.0.0"
  },
  "license": "MIT",
  "devDependencies": {
    "jest": "^29.0.0"
  }
}
`, string(data))
}

func TestStore_SaveSkipsUndeclaredSections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, `{"name": "demo"}`)

	store := manifest.NewStore()
	m, err := store.Load(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"demo\"\n}\n", string(data))
}

func TestStore_SaveKeepsEmptyDeclaredSection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, `{"dependencies": {}}`)

	store := manifest.NewStore()
	m, err := store.Load(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"dependencies\": {}\n}\n", string(data))
}

func TestStore_SaveMissingFile(t *testing.T) {
	t.Parallel()

	store := manifest.NewStore()
	err := store.Save(&domain.RootManifest{Dir: t.TempDir()})
	require.ErrorIs(t, err, domain.ErrManifestParseFailed)
}
