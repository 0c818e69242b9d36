package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/bindgen/pkg/manifest"
	"github.com/cmmoran/bindgen/pkg/parser"
)

func storeOptions(outDir string, opts ...parser.Option) *parser.Options {
	o := parser.NewOptions()
	o.InDir = "../../parser/testdata/store"
	o.Patterns = []string{"."}
	o.OutDir = outDir
	o.PruneUnresolved = true
	for _, fn := range opts {
		fn(o)
	}
	return o
}

func TestGenerateAndDiff(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.yaml")

	_, err := DiffCurrentWithPrevious(manifestPath)
	require.ErrorIs(t, err, ErrNoPrevious)

	v1, err := Generate(ctx, storeOptions(dir), manifestPath, "store", "v1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "store_v1.json"), v1)

	_, err = DiffCurrentWithPrevious(manifestPath)
	require.ErrorIs(t, err, ErrNoPrevious)

	_, err = Generate(ctx, storeOptions(dir), manifestPath, "store", "v2")
	require.NoError(t, err)
	diff, err := DiffCurrentWithPrevious(manifestPath)
	require.NoError(t, err)
	assert.Empty(t, diff)

	_, err = Generate(ctx, storeOptions(dir, parser.WithExcludeTypes("LegacyCart")), manifestPath, "store", "v3")
	require.NoError(t, err)
	diff, err = DiffCurrentWithPrevious(manifestPath)
	require.NoError(t, err)
	assert.Contains(t, diff, "LegacyCart")

	m, err := List(manifestPath)
	require.NoError(t, err)
	require.Len(t, m.Snapshots, 3)
	assert.Equal(t, "v3", m.CurrentVersion)
	assert.Equal(t, "v2", m.PreviousVersion)

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, 2, cur.Classes)
	assert.Equal(t, "github.com/cmmoran/bindgen", cur.Origin)
	data, err := os.ReadFile(cur.File)
	require.NoError(t, err)
	assert.Equal(t, manifest.Digest(data), cur.Digest)

	s, err := Load(cur.File)
	require.NoError(t, err)
	assert.Equal(t, []string{"Order", "Product"}, s.Names())
}

func TestGenerateRequiresNameAndVersion(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(context.Background(), storeOptions(dir), filepath.Join(dir, "m.yaml"), "store", "")
	require.Error(t, err)
	_, err = Generate(context.Background(), storeOptions(dir), filepath.Join(dir, "m.yaml"), "", "v1")
	require.Error(t, err)
}

func TestDiffCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.yaml")
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"classes":[]}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"classes":[{"name":"A","fields":{"b":{"name":"b","typeDef":{"kind":"Bogus"},"isExposed":true}}}]}`), 0o644))

	m := &manifest.Manifest{}
	m.AddSnapshot(manifest.Snapshot{Name: "s", Version: "v1", File: good})
	m.AddSnapshot(manifest.Snapshot{Name: "s", Version: "v2", File: bad})
	require.NoError(t, m.Save(manifestPath))

	_, err := DiffCurrentWithPrevious(manifestPath)
	require.ErrorContains(t, err, "current snapshot")

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
