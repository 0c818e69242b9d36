package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/jinzhu/inflection"

	"github.com/cmmoran/bindgen/pkg/schema"
)

// ErrNameCollision is returned when two schema names map onto the same Go
// identifier in one scope.
var ErrNameCollision = errors.New("name collision")

// Options control code emission.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// Collections emits `type Widgets []*Widget` for every class used as a
	// list element.
	Collections bool
	// Origin is mentioned in the file header when set.
	Origin string
	Logger *slog.Logger
}

// Generator renders a schema as Go bindings: one struct per class, a
// constructor when the class declares one and a stub per method.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Generator {
	if opts.Package == "" {
		opts.Package = "api"
	}
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Generator{opts: opts, logger: l.With("component", "generator")}
}

// Generate renders every class of s in order.
func (g *Generator) Generate(s *schema.Schema) (*jen.File, error) {
	f := jen.NewFile(g.opts.Package)
	header := "Code generated by bindgen. DO NOT EDIT."
	if g.opts.Origin != "" {
		header = fmt.Sprintf("Code generated by bindgen from %s. DO NOT EDIT.", g.opts.Origin)
	}
	f.HeaderComment(header)

	r := &renderer{s: s}
	names, err := r.classNames()
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, c := range s.Classes() {
		if err := r.class(f, c, names); err != nil {
			errs = append(errs, fmt.Errorf("class %s: %w", c.Name(), err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if g.opts.Collections {
		for _, elem := range r.listElements() {
			plural := inflection.Plural(names[elem])
			if plural == names[elem] || r.taken[plural] {
				g.logger.Debug("collection alias skipped", "class", elem, "alias", plural)
				continue
			}
			r.taken[plural] = true
			f.Commentf("%s is a list of %s.", plural, names[elem])
			f.Type().Id(plural).Index().Op("*").Id(names[elem])
		}
	}
	g.logger.Debug("generated bindings", "classes", s.Len(), "package", g.opts.Package)
	return f, nil
}

type renderer struct {
	s     *schema.Schema
	taken map[string]bool
}

// classNames maps class names to their Go identifiers.
func (r *renderer) classNames() (map[string]string, error) {
	names := make(map[string]string, r.s.Len())
	r.taken = make(map[string]bool, r.s.Len())
	byID := map[string]string{}
	var errs []error
	for _, n := range r.s.Names() {
		id := exported(n)
		if prev, dup := byID[id]; dup {
			errs = append(errs, fmt.Errorf("%w: classes %q and %q both render as %s", ErrNameCollision, prev, n, id))
			continue
		}
		byID[id] = n
		names[n] = id
		r.taken[id] = true
	}
	return names, errors.Join(errs...)
}

// listElements returns the classes used as list elements anywhere in the
// schema, in class order.
func (r *renderer) listElements() []string {
	used := map[string]bool{}
	mark := func(td schema.TypeDescriptor) {
		leaf, depth := schema.Unwrap(td)
		if o, ok := leaf.(schema.ObjectDescriptor); ok && depth > 0 {
			used[o.Name()] = true
		}
	}
	for _, c := range r.s.Classes() {
		for _, f := range c.Fields().Values() {
			mark(f.TypeDef())
		}
		if ctor, ok := c.Constructor(); ok {
			for _, a := range ctor.Args().Values() {
				mark(a.TypeDef())
			}
		}
		for _, m := range c.Methods().Values() {
			mark(m.ReturnType())
			for _, a := range m.Args().Values() {
				mark(a.TypeDef())
			}
		}
	}
	var out []string
	for _, n := range r.s.Names() {
		if used[n] {
			out = append(out, n)
		}
	}
	return out
}

// typeOf renders td as a Go type expression. Objects are pointers and every
// object reference is resolved against the schema again.
func (r *renderer) typeOf(td schema.TypeDescriptor) (jen.Code, error) {
	return schema.Walk[jen.Code](td, schema.VisitorFuncs[jen.Code]{
		Scalar: func(d schema.ScalarDescriptor) (jen.Code, error) {
			switch d.Kind() {
			case schema.KindString:
				return jen.String(), nil
			case schema.KindInteger:
				return jen.Int64(), nil
			case schema.KindFloat:
				return jen.Float64(), nil
			case schema.KindBoolean:
				return jen.Bool(), nil
			case schema.KindVoid:
				return jen.Struct(), nil
			}
			return nil, fmt.Errorf("%w: %s", schema.ErrUnknownKind, d.Kind())
		},
		Object: func(d schema.ObjectDescriptor) (jen.Code, error) {
			c, err := r.s.Resolve(d)
			if err != nil {
				return nil, err
			}
			return jen.Op("*").Id(exported(c.Name())), nil
		},
		List: func(d schema.ListDescriptor) (jen.Code, error) {
			elem, err := r.typeOf(d.Elem())
			if err != nil {
				return nil, err
			}
			return jen.Index().Add(elem), nil
		},
	})
}

func fileComment(f *jen.File, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			f.Comment(line)
		}
	}
}

func (r *renderer) class(f *jen.File, c schema.ClassDescriptor, names map[string]string) error {
	name, ok := names[c.Name()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNameCollision, c.Name())
	}

	members := map[string]string{}
	claim := func(id, member string) error {
		if prev, dup := members[id]; dup {
			return fmt.Errorf("%w: %s and %s both render as %s", ErrNameCollision, prev, member, id)
		}
		members[id] = member
		return nil
	}

	var (
		fields []jen.Code
		errs   []error
	)
	exposed := map[string]schema.FieldDescriptor{}
	for _, fd := range c.ExposedFields() {
		id := exported(fd.Name())
		if err := claim(id, "field "+fd.Name()); err != nil {
			errs = append(errs, err)
			continue
		}
		typ, err := r.typeOf(fd.TypeDef())
		if err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", fd.Name(), err))
			continue
		}
		exposed[fd.Name()] = fd
		fields = append(fields, jen.Do(func(s *jen.Statement) {
			if fd.Description() != "" {
				s.Comment(strings.Join(strings.Fields(fd.Description()), " ")).Line()
			}
		}).Id(id).Add(typ).Tag(map[string]string{"json": fd.Name()}))
	}
	for _, m := range c.Methods().Values() {
		if err := claim(exported(m.Name()), "method "+m.Name()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	fileComment(f, c.Description())
	f.Type().Id(name).Struct(fields...)

	if ctor, ok := c.Constructor(); ok {
		if err := r.constructor(f, name, ctor, exposed); err != nil {
			return fmt.Errorf("constructor: %w", err)
		}
	}
	for _, m := range c.Methods().Values() {
		if err := r.method(f, name, m); err != nil {
			return fmt.Errorf("method %s: %w", m.Name(), err)
		}
	}
	return nil
}

// params splits args into positional parameters and the fields of an
// options struct.
func (r *renderer) params(args schema.Args) ([]jen.Code, []jen.Code, error) {
	var required, optional []jen.Code
	seen := map[string]bool{"opts": true}
	seenOpt := map[string]bool{}
	for _, a := range args.Values() {
		typ, err := r.typeOf(a.TypeDef())
		if err != nil {
			return nil, nil, fmt.Errorf("argument %s: %w", a.Name(), err)
		}
		if !a.Optional() {
			id := local(a.Name())
			if seen[id] {
				return nil, nil, fmt.Errorf("%w: argument %s renders as %s", ErrNameCollision, a.Name(), id)
			}
			seen[id] = true
			required = append(required, jen.Id(id).Add(typ))
			continue
		}
		id := exported(a.Name())
		if seenOpt[id] {
			return nil, nil, fmt.Errorf("%w: optional argument %s renders as %s", ErrNameCollision, a.Name(), id)
		}
		seenOpt[id] = true
		var doc []string
		if a.Description() != "" {
			doc = append(doc, strings.Join(strings.Fields(a.Description()), " "))
		}
		if def, ok := a.DefaultValue(); ok {
			doc = append(doc, fmt.Sprintf("Defaults to %s.", def))
		}
		optional = append(optional, jen.Do(func(s *jen.Statement) {
			if len(doc) > 0 {
				s.Comment(strings.Join(doc, " ")).Line()
			}
		}).Id(id).Add(typ))
	}
	return required, optional, nil
}

func (r *renderer) constructor(f *jen.File, class string, ctor schema.ConstructorDescriptor, exposed map[string]schema.FieldDescriptor) error {
	required, optional, err := r.params(ctor.Args())
	if err != nil {
		return err
	}
	optsName := class + "Opts"
	params := required
	if len(optional) > 0 {
		if r.taken[optsName] {
			return fmt.Errorf("%w: %s", ErrNameCollision, optsName)
		}
		r.taken[optsName] = true
		f.Commentf("%s holds the optional arguments of New%s.", optsName, class)
		f.Type().Id(optsName).Struct(optional...)
		params = append(params, jen.Id("opts").Op("*").Id(optsName))
	}

	// Arguments that share name and type with an exposed field are copied.
	values := jen.Dict{}
	var fromOpts []jen.Code
	for _, a := range ctor.Args().Values() {
		fd, ok := exposed[a.Name()]
		if !ok || !schema.Equal(fd.TypeDef(), a.TypeDef()) {
			continue
		}
		field := jen.Id(exported(fd.Name()))
		if a.Optional() {
			fromOpts = append(fromOpts, jen.Id("v").Dot(exported(fd.Name())).Op("=").Id("opts").Dot(exported(a.Name())))
			continue
		}
		values[field] = jen.Id(local(a.Name()))
	}

	f.Commentf("New%s returns a new %s.", class, class)
	f.Func().Id("New"+class).Params(params...).Op("*").Id(class).BlockFunc(func(g *jen.Group) {
		if len(fromOpts) == 0 {
			g.Return(jen.Op("&").Id(class).Values(values))
			return
		}
		g.Id("v").Op(":=").Op("&").Id(class).Values(values)
		g.If(jen.Id("opts").Op("!=").Nil()).Block(fromOpts...)
		g.Return(jen.Id("v"))
	})
	return nil
}

func receiver(class string) string {
	return string(unicode.ToLower([]rune(class)[0]))
}

func (r *renderer) method(f *jen.File, class string, m schema.FunctionDescriptor) error {
	required, optional, err := r.params(m.Args())
	if err != nil {
		return err
	}
	name := exported(m.Name())
	params := required
	if len(optional) > 0 {
		optsName := class + name + "Opts"
		if r.taken[optsName] {
			return fmt.Errorf("%w: %s", ErrNameCollision, optsName)
		}
		r.taken[optsName] = true
		f.Commentf("%s holds the optional arguments of %s.%s.", optsName, class, name)
		f.Type().Id(optsName).Struct(optional...)
		params = append(params, jen.Id("opts").Op("*").Id(optsName))
	}

	var result jen.Code = jen.Error()
	if m.ReturnType().Kind() != schema.KindVoid {
		typ, err := r.typeOf(m.ReturnType())
		if err != nil {
			return fmt.Errorf("return type: %w", err)
		}
		result = jen.Parens(jen.List(typ, jen.Error()))
	}

	recv := receiver(class)
	for _, p := range m.Args().Values() {
		if !p.Optional() && local(p.Name()) == recv {
			recv = "recv"
		}
	}

	fileComment(f, m.Description())
	f.Func().Params(jen.Id(recv).Op("*").Id(class)).Id(name).Params(params...).Add(result).Block(
		jen.Panic(jen.Lit("not implemented")),
	)
	return nil
}
