package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cmmoran/bindgen/internal/model"
	"github.com/cmmoran/bindgen/pkg/schema"
)

// Builder turns an introspection Result into a validated schema.
type Builder struct {
	// ExcludeTypes names classes to drop, compared case-insensitively.
	ExcludeTypes      []string
	ExcludeDeprecated bool

	// PruneUnresolved drops members that reference a class outside the
	// result instead of failing schema construction.
	PruneUnresolved bool
	Logger          *slog.Logger
}

// Build filters res and assembles the schema. The returned warnings are the
// introspection warnings followed by the builder's own.
func (b *Builder) Build(res *Result) (*schema.Schema, []model.Warning, error) {
	log := b.logger()
	out := &Result{Origin: res.Origin, Warnings: slices.Clone(res.Warnings)}

	for _, c := range res.Classes {
		switch {
		case slices.ContainsFunc(b.ExcludeTypes, func(n string) bool { return strings.EqualFold(n, c.Name) }):
			out.warn(WarnExcluded, c.Name, "excluded by name")
		case b.ExcludeDeprecated && c.Deprecated:
			out.warn(WarnExcluded, c.Name, "deprecated")
		default:
			out.Classes = append(out.Classes, c)
		}
	}

	known := make(map[string]bool, len(out.Classes))
	for _, c := range out.Classes {
		known[c.Name] = true
	}

	var (
		classes []schema.ClassDescriptor
		errs    []error
	)
	for _, c := range out.Classes {
		class, err := b.class(c, known, out)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		classes = append(classes, class)
	}
	if len(errs) > 0 {
		return nil, out.Warnings, errors.Join(errs...)
	}

	s, err := schema.NewSchema(classes...)
	if err != nil {
		return nil, out.Warnings, err
	}
	log.Debug("built schema", "classes", s.Len(), "warnings", len(out.Warnings))
	return s, out.Warnings, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default().With("component", "schema_builder")
	}
	return b.Logger.With("component", "schema_builder")
}

// keep reports whether a member survives filtering. Members referencing an
// unknown class are only dropped when pruning is on; otherwise they are kept
// so schema construction reports them.
func (b *Builder) keep(subject string, deprecated bool, refs []*model.RawTypeDef, known map[string]bool, out *Result) bool {
	if b.ExcludeDeprecated && deprecated {
		out.warn(WarnExcluded, subject, "deprecated")
		return false
	}
	if !b.PruneUnresolved {
		return true
	}
	for _, t := range refs {
		if name, ok := t.Refs(); ok && !known[name] {
			out.warn(WarnPruned, subject, "references unknown class %s", name)
			return false
		}
	}
	return true
}

func (b *Builder) class(c *model.RawClass, known map[string]bool, out *Result) (schema.ClassDescriptor, error) {
	cb := schema.NewClassBuilder(c.Name, c.Description)
	var errs []error

	for _, f := range c.Fields {
		if !b.keep(c.Name+"."+f.Name, f.Deprecated, []*model.RawTypeDef{f.Type}, known, out) {
			continue
		}
		td, err := convertType(f.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.fields.%s: %w", c.Name, f.Name, err))
			continue
		}
		cb.Field(f.Name, f.Description, td, f.Exposed)
	}

	if c.Constructor != nil {
		subject := c.Name + ".constructor"
		if b.keep(subject, false, argTypes(c.Constructor.Args), known, out) {
			args, err := convertArgs(subject, c.Constructor.Args)
			if err != nil {
				errs = append(errs, err)
			} else {
				cb.Constructor(args...)
			}
		}
	}

	for _, m := range c.Methods {
		subject := c.Name + "." + m.Name
		if !b.keep(subject, m.Deprecated, append(argTypes(m.Args), m.Returns), known, out) {
			continue
		}
		args, err := convertArgs(c.Name+".methods."+m.Name, m.Args)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ret, err := convertType(m.Returns)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.methods.%s.returnType: %w", c.Name, m.Name, err))
			continue
		}
		cb.Method(m.Name, m.Description, ret, args...)
	}

	if len(errs) > 0 {
		return schema.ClassDescriptor{}, errors.Join(errs...)
	}
	return cb.Build()
}

func argTypes(args []*model.RawArg) []*model.RawTypeDef {
	out := make([]*model.RawTypeDef, 0, len(args))
	for _, a := range args {
		out = append(out, a.Type)
	}
	return out
}

func convertArgs(prefix string, args []*model.RawArg) ([]schema.ArgSpec, error) {
	out := make([]schema.ArgSpec, 0, len(args))
	for _, a := range args {
		td, err := convertType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.args.%s: %w", prefix, a.Name, err)
		}
		out = append(out, schema.ArgSpec{
			Name:        a.Name,
			Description: a.Description,
			Optional:    a.Optional,
			Default:     a.Default,
			Type:        td,
		})
	}
	return out, nil
}

// convertType validates a raw type through schema.New.
func convertType(t *model.RawTypeDef) (schema.TypeDescriptor, error) {
	if t == nil {
		return nil, errors.New("missing type")
	}
	kind, err := schema.ParseTypeKind(t.Kind)
	if err != nil {
		return nil, err
	}
	var elem schema.TypeDescriptor
	if t.Of != nil {
		if elem, err = convertType(t.Of); err != nil {
			return nil, err
		}
	}
	return schema.New(kind, t.Name, elem)
}
