package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/bindgen/pkg/action/initialize"
	"github.com/cmmoran/bindgen/pkg/manifest"
	"github.com/cmmoran/bindgen/pkg/parser"
	"github.com/cmmoran/bindgen/pkg/schema"
)

// ErrNoPrevious is returned by DiffCurrentWithPrevious when fewer than two
// versions have been recorded.
var ErrNoPrevious = errors.New("no current/previous snapshots recorded")

// Generate writes the schema of the source described by opts to
// OutDir/<name>_<version>.json and records it in the manifest.
func Generate(ctx context.Context, opts *parser.Options, manifestPath, snapshotName, snapshotVersion string) (string, error) {
	if snapshotName == "" || snapshotVersion == "" {
		return "", fmt.Errorf("snapshot name and version are required")
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}

	s, par, err := initialize.BuildSchema(ctx, opts)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err = schema.Encode(&buf, s); err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}

	if err = os.MkdirAll(par.Opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	outFile := filepath.Clean(filepath.Join(par.Opts.OutDir, fmt.Sprintf("%s_%s.json", snapshotName, snapshotVersion)))
	if err = os.WriteFile(outFile, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	m.AddSnapshot(manifest.Snapshot{
		Name:    snapshotName,
		Version: snapshotVersion,
		File:    outFile,
		Origin:  par.Origin,
		Classes: s.Len(),
		Digest:  manifest.Digest(buf.Bytes()),
	})
	if err := m.Save(manifestPath); err != nil {
		return "", err
	}

	return outFile, nil
}

// List returns all snapshots recorded in the manifest.
func List(manifestPath string) (*manifest.Manifest, error) {
	return manifest.Load(manifestPath)
}

// Load reads and fully validates a schema document.
func Load(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := schema.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

func canonical(s *schema.Schema) (string, error) {
	var buf bytes.Buffer
	if err := schema.Encode(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DiffCurrentWithPrevious loads the manifest, decodes the current and
// previous snapshots and returns a diff of their canonical encodings. An
// empty diff means the schemas are equal.
func DiffCurrentWithPrevious(manifestPath string) (string, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}

	current, okCur := m.Current()
	previous, okPrev := m.Previous()
	if !okCur || !okPrev {
		return "", ErrNoPrevious
	}

	cur, err := Load(current.File)
	if err != nil {
		return "", fmt.Errorf("current snapshot: %w", err)
	}
	prev, err := Load(previous.File)
	if err != nil {
		return "", fmt.Errorf("previous snapshot: %w", err)
	}
	if cur.Equal(prev) {
		return "", nil
	}

	curText, err := canonical(cur)
	if err != nil {
		return "", err
	}
	prevText, err := canonical(prev)
	if err != nil {
		return "", err
	}
	return cmp.Diff(prevText, curText), nil
}
