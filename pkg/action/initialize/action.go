package initialize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cmmoran/bindgen/pkg/generator"
	"github.com/cmmoran/bindgen/pkg/parser"
	"github.com/cmmoran/bindgen/pkg/schema"
)

// BuildSchema parses the source described by opts and assembles its schema.
func BuildSchema(ctx context.Context, opts *parser.Options) (*schema.Schema, *parser.Parser, error) {
	par, err := parser.NewWithOpts(opts)
	if err != nil {
		return nil, nil, err
	}
	if err = par.Parse(ctx); err != nil {
		return nil, nil, err
	}
	s, err := par.BuildSchema()
	if err != nil {
		return nil, par, err
	}
	return s, par, nil
}

// Generate renders Go bindings for the source described by opts into
// OutDir/OutFile and returns the file written.
func Generate(ctx context.Context, opts *parser.Options) (string, error) {
	s, par, err := BuildSchema(ctx, opts)
	if err != nil {
		return "", err
	}
	f, err := generator.New(generator.Options{
		Package:     par.Opts.Package,
		Collections: par.Opts.Collections,
		Origin:      par.Origin,
	}).Generate(s)
	if err != nil {
		return "", fmt.Errorf("generate bindings: %w", err)
	}

	if err = os.MkdirAll(par.Opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	outFile := filepath.Clean(filepath.Join(par.Opts.OutDir, par.Opts.OutFile))
	ff, err := os.OpenFile(outFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", outFile, err)
	}
	defer func() { _ = ff.Close() }()
	if err = f.Render(ff); err != nil {
		return "", fmt.Errorf("render %s: %w", outFile, err)
	}
	slog.Default().Info("wrote bindings", "component", "initialize", "file", outFile, "classes", s.Len(), "warnings", len(par.Warnings))
	return outFile, nil
}
