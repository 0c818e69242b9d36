package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sources understood by Parse.
const (
	SourceGo      = "go"
	SourceOpenAPI = "openapi"
	SourceProto   = "proto"
)

// TagFilter hides a field when the struct tag Key contains Value.
type TagFilter struct {
	Key   string `json:"key" yaml:"key" toml:"key" mapstructure:"key" validate:"required"`
	Value string `json:"value" yaml:"value" toml:"value" mapstructure:"value"`
}

// Options control introspection, schema shaping and code emission.
//
// Source            – go, openapi or proto.
// InDir             – directory holding the Go packages (go).
// Patterns          – package patterns relative to InDir, default ./... (go).
// InFiles           – description files (openapi reads the first, proto all of them).
// ImportPaths       – proto import search path.
// OutDir            – output directory for bindings and snapshots.
// OutFile           – bindings filename.
// Package           – package clause of the bindings, default: base of OutDir.
// Collections       – emit plural slice aliases for list element classes.
// ExcludeDeprecated – skip classes and members documented as deprecated.
// ExcludeTypes      – names of classes to skip (case‑insensitive).
// ExcludeByTags     – struct tag filters hiding fields (go).
// PruneUnresolved   – drop members referencing classes that are not in the schema.
type Options struct {
	Source            string      `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty" mapstructure:"source,omitempty" validate:"oneof=go openapi proto"`
	InDir             string      `json:"in_dir,omitempty" yaml:"in_dir,omitempty" toml:"in_dir,omitempty" mapstructure:"in_dir,omitempty" validate:"required_if=Source go"`
	Patterns          []string    `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty" mapstructure:"patterns,omitempty"`
	InFiles           []string    `json:"in_files,omitempty" yaml:"in_files,omitempty" toml:"in_files,omitempty" mapstructure:"in_files,omitempty" validate:"required_unless=Source go,dive,required"`
	ImportPaths       []string    `json:"import_paths,omitempty" yaml:"import_paths,omitempty" toml:"import_paths,omitempty" mapstructure:"import_paths,omitempty"`
	OutDir            string      `json:"out_dir,omitempty" yaml:"out_dir,omitempty" toml:"out_dir,omitempty" mapstructure:"out_dir,omitempty" validate:"required"`
	OutFile           string      `json:"out_file,omitempty" yaml:"out_file,omitempty" toml:"out_file,omitempty" mapstructure:"out_file,omitempty" validate:"required"`
	Package           string      `json:"package,omitempty" yaml:"package,omitempty" toml:"package,omitempty" mapstructure:"package,omitempty"`
	Collections       bool        `json:"collections,omitempty" yaml:"collections,omitempty" toml:"collections,omitempty" mapstructure:"collections,omitempty"`
	ExcludeDeprecated bool        `json:"exclude_deprecated,omitempty" yaml:"exclude_deprecated,omitempty" toml:"exclude_deprecated,omitempty" mapstructure:"exclude_deprecated,omitempty"`
	ExcludeTypes      []string    `json:"exclude_types,omitempty" yaml:"exclude_types,omitempty" toml:"exclude_types,omitempty" mapstructure:"exclude_types,omitempty"`
	ExcludeByTags     []TagFilter `json:"exclude_by_tags,omitempty" yaml:"exclude_by_tags,omitempty" toml:"exclude_by_tags,omitempty" mapstructure:"exclude_by_tags,omitempty" validate:"dive"`
	PruneUnresolved   bool        `json:"prune_unresolved,omitempty" yaml:"prune_unresolved,omitempty" toml:"prune_unresolved,omitempty" mapstructure:"prune_unresolved,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		Source:      SourceGo,
		InDir:       ".",
		OutDir:      "api",
		OutFile:     "api_gen.go",
		Collections: true,
	}
}

// Normalize fills defaults, resolves relative directories and appends
// key:value tag filters.
func (o *Options) Normalize(excludeByTagsStrings ...string) error {
	for _, s := range excludeByTagsStrings {
		key, val, ok := strings.Cut(s, ":")
		if !ok || key == "" {
			return fmt.Errorf("invalid tag filter %q, want key:value", s)
		}
		o.ExcludeByTags = append(o.ExcludeByTags, TagFilter{Key: key, Value: strings.Trim(val, `"`)})
	}
	if o.Source == "" {
		o.Source = SourceGo
	}
	o.Source = strings.ToLower(o.Source)
	if o.Source == SourceGo && o.InDir == "" {
		o.InDir = "."
	}
	if strings.Contains(o.InDir, ".") {
		o.InDir, _ = filepath.Abs(o.InDir)
	}
	if len(o.OutDir) == 0 {
		o.OutDir = "api"
	}
	if strings.Contains(o.OutDir, ".") {
		o.OutDir, _ = filepath.Abs(o.OutDir)
	}
	if len(o.OutFile) == 0 {
		o.OutFile = "api_gen.go"
	}
	if o.Package == "" {
		o.Package = packageName(filepath.Base(o.OutDir))
	}
	for i, n := range o.ExcludeTypes {
		o.ExcludeTypes[i] = strings.TrimSpace(n)
	}
	return nil
}

// Validate checks the options after Normalize.
func (o *Options) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if o.Source != SourceGo && len(o.InFiles) == 0 {
		return fmt.Errorf("invalid options: source %s needs at least one input file", o.Source)
	}
	return nil
}

// packageName reduces a directory name to a valid package clause.
func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9' && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "api"
	}
	return b.String()
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithSource(s string) Option { return func(o *Options) { o.Source = s } }
func WithInDir(d string) Option { return func(o *Options) { o.InDir = d } }
func WithPatterns(p ...string) Option { return func(o *Options) { o.Patterns = append(o.Patterns, p...) } }
func WithInFiles(f ...string) Option { return func(o *Options) { o.InFiles = append(o.InFiles, f...) } }
func WithImportPaths(p ...string) Option {
	return func(o *Options) { o.ImportPaths = append(o.ImportPaths, p...) }
}
func WithOutDir(d string) Option { return func(o *Options) { o.OutDir = d } }
func WithOutFile(f string) Option { return func(o *Options) { o.OutFile = f } }
func WithPackage(p string) Option { return func(o *Options) { o.Package = p } }
func WithoutCollections() Option { return func(o *Options) { o.Collections = false } }
func WithExcludeDeprecated() Option { return func(o *Options) { o.ExcludeDeprecated = true } }
func WithExcludeTypes(names ...string) Option {
	return func(o *Options) {
		for _, n := range names {
			o.ExcludeTypes = append(o.ExcludeTypes, strings.TrimSpace(n))
		}
	}
}
func WithExcludeByTag(key, val string) Option {
	return func(o *Options) { o.ExcludeByTags = append(o.ExcludeByTags, TagFilter{key, val}) }
}
func WithPruneUnresolved() Option { return func(o *Options) { o.PruneUnresolved = true } }
