package initialize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/bindgen/pkg/parser"
)

func storeOptions(outDir string, opts ...parser.Option) *parser.Options {
	o := parser.NewOptions()
	o.InDir = "../../parser/testdata/store"
	o.Patterns = []string{"."}
	o.OutDir = outDir
	for _, fn := range opts {
		fn(o)
	}
	return o
}

func TestGenerate(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "shop")
	file, err := Generate(context.Background(), storeOptions(outDir, parser.WithPruneUnresolved(), parser.WithOutFile("shop_gen.go")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "shop_gen.go"), file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "// Code generated by bindgen from github.com/cmmoran/bindgen. DO NOT EDIT.")
	assert.Contains(t, out, "package shop")
	assert.Contains(t, out, "type Order struct")
	assert.Contains(t, out, "func NewOrder(")
	assert.Contains(t, out, "type Products []*Product")
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts *parser.Options
	}{
		{name: "invalid source", opts: storeOptions(t.TempDir(), parser.WithSource("thrift"))},
		{name: "missing input", opts: storeOptions(t.TempDir(), parser.WithSource(parser.SourceOpenAPI))},
		{name: "unresolved reference", opts: storeOptions(t.TempDir())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(context.Background(), tt.opts)
			require.Error(t, err)
		})
	}
}

func TestBuildSchemaCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := BuildSchema(ctx, storeOptions(t.TempDir(), parser.WithPruneUnresolved()))
	require.ErrorIs(t, err, context.Canceled)
}
