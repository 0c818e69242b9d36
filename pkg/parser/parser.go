package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cmmoran/bindgen/internal/model"
	iparser "github.com/cmmoran/bindgen/internal/parser"
	"github.com/cmmoran/bindgen/pkg/schema"
)

// ErrNotParsed is returned by BuildSchema before a successful Parse.
var ErrNotParsed = errors.New("parse has not run")

// Parser holds state/results of a parse run.
type Parser struct {
	Opts Options

	Origin     string
	RawClasses RawClasses
	Warnings   []model.Warning

	parsed        bool
	parseWarnings []model.Warning
	logger        *slog.Logger
}

type RawClasses []*model.RawClass

func (x RawClasses) Find(name string) *model.RawClass {
	for _, c := range x {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (x RawClasses) Names() []string {
	names := make([]string, 0, len(x))
	for _, c := range x {
		names = append(names, c.Name)
	}
	return names
}

// New executes the parser with opts applied over NewOptions.
func New(opts ...Option) (*Parser, error) {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}

	return NewWithOpts(o)
}

func NewWithOpts(opts *Options) (*Parser, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Parser{
		Opts:       *opts,
		RawClasses: make(RawClasses, 0),
		logger:     slog.Default(),
	}, nil
}

// WithLogger replaces the logger handed to the introspectors.
func (p *Parser) WithLogger(l *slog.Logger) *Parser {
	if l != nil {
		p.logger = l
	}
	return p
}

func (p *Parser) introspector() iparser.Introspector {
	switch p.Opts.Source {
	case SourceOpenAPI:
		return &iparser.OpenAPIIntrospector{File: p.Opts.InFiles[0], Logger: p.logger}
	case SourceProto:
		return &iparser.ProtoIntrospector{Files: p.Opts.InFiles, ImportPaths: p.Opts.ImportPaths, Logger: p.logger}
	default:
		return &iparser.GoIntrospector{
			Dir:       p.Opts.InDir,
			Patterns:  p.Opts.Patterns,
			HideField: tagHider(p.Opts.ExcludeByTags),
			Logger:    p.logger,
		}
	}
}

// Parse introspects the configured source and records the raw classes it
// found.
func (p *Parser) Parse(ctx context.Context) error {
	log := p.logger.With("component", "parser", "source", p.Opts.Source)
	res, err := p.introspector().Introspect(ctx)
	if err != nil {
		return fmt.Errorf("introspect %s: %w", p.Opts.Source, err)
	}
	p.Origin = res.Origin
	p.RawClasses = res.Classes
	p.parseWarnings = res.Warnings
	p.Warnings = slices.Clone(res.Warnings)
	p.parsed = true
	for _, w := range res.Warnings {
		log.Debug("skipped member", "code", w.Code, "subject", w.Subject, "reason", w.Message)
	}
	log.Info("parsed", "origin", p.Origin, "classes", len(p.RawClasses), "warnings", len(p.Warnings))
	return nil
}

// BuildSchema applies the filters and assembles the validated schema.
// Warnings is replaced with the introspection warnings followed by the
// filtering ones.
func (p *Parser) BuildSchema() (*schema.Schema, error) {
	if !p.parsed {
		return nil, ErrNotParsed
	}
	b := &iparser.Builder{
		ExcludeTypes:      p.Opts.ExcludeTypes,
		ExcludeDeprecated: p.Opts.ExcludeDeprecated,
		PruneUnresolved:   p.Opts.PruneUnresolved,
		Logger:            p.logger,
	}
	s, warnings, err := b.Build(&iparser.Result{
		Origin:   p.Origin,
		Classes:  p.RawClasses,
		Warnings: p.parseWarnings,
	})
	p.Warnings = warnings
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}
