package parser

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"

	"github.com/cmmoran/bindgen/internal/model"
)

// GoIntrospector reads exported struct types, their methods and their
// NewT constructors from Go packages.
type GoIntrospector struct {
	Dir      string
	Patterns []string

	// HideField reports whether a field with the given tag stays out of the
	// generated surface. The field is still recorded, unexposed.
	HideField func(tag reflect.StructTag) bool
	Logger    *slog.Logger
}

type goDocs struct {
	types   map[string]string
	fields  map[string]map[string]string
	methods map[string]string // Type.Method
	funcs   map[string]string
}

func (g *GoIntrospector) Introspect(ctx context.Context) (*Result, error) {
	log := g.logger()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patterns := g.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax |
			packages.NeedTypesInfo | packages.NeedModule,
		Dir:  g.Dir,
		Fset: token.NewFileSet(),
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var loadErrs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e)
		}
	})
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("load packages: %w", errors.Join(loadErrs...))
	}

	res := &Result{}
	if mod, err := modulePath(g.Dir); err == nil {
		res.Origin = mod
	} else {
		log.Debug("module path unavailable", "error", err)
	}
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		log.Debug("introspecting package", "package", pkg.PkgPath)
		g.collect(pkg, res)
	}
	log.Info("introspected go packages", "packages", len(pkgs), "classes", len(res.Classes), "warnings", len(res.Warnings))
	return res, nil
}

func (g *GoIntrospector) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default().With("component", "go_introspector")
	}
	return g.Logger.With("component", "go_introspector")
}

func collectDocs(files []*ast.File) *goDocs {
	d := &goDocs{
		types:   map[string]string{},
		fields:  map[string]map[string]string{},
		methods: map[string]string{},
		funcs:   map[string]string{},
	}
	for _, file := range files {
		for _, decl := range file.Decls {
			switch decl := decl.(type) {
			case *ast.GenDecl:
				if decl.Tok != token.TYPE {
					continue
				}
				for _, spec := range decl.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(decl.Specs) == 1 {
						doc = decl.Doc
					}
					d.types[ts.Name.Name] = commentText(doc)
					st, ok := ts.Type.(*ast.StructType)
					if !ok {
						continue
					}
					fd := map[string]string{}
					for _, f := range st.Fields.List {
						txt := commentText(f.Doc)
						if txt == "" {
							txt = commentText(f.Comment)
						}
						for _, n := range f.Names {
							fd[n.Name] = txt
						}
					}
					d.fields[ts.Name.Name] = fd
				}
			case *ast.FuncDecl:
				if decl.Recv == nil || len(decl.Recv.List) == 0 {
					d.funcs[decl.Name.Name] = commentText(decl.Doc)
					continue
				}
				if recv := receiverName(decl.Recv.List[0].Type); recv != "" {
					d.methods[recv+"."+decl.Name.Name] = commentText(decl.Doc)
				}
			}
		}
	}
	return d
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	}
	return ""
}

func (g *GoIntrospector) collect(pkg *packages.Package, res *Result) {
	docs := collectDocs(pkg.Syntax)
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}
		if named.TypeParams().Len() > 0 {
			res.warn(WarnGeneric, name, "generic types are not supported")
			continue
		}
		if prev := res.Find(name); prev != nil {
			res.warn(WarnExcluded, name, "also declared in %s, keeping %s", pkg.PkgPath, prev.Source)
			continue
		}

		class := &model.RawClass{
			Name:        name,
			Description: docs.types[name],
			Source:      pkg.PkgPath,
			Deprecated:  isDeprecated(docs.types[name]),
		}
		class.Fields = g.fields(name, st, docs, res)
		class.Methods = g.methods(name, named, docs, res)
		class.Constructor = g.constructor(name, named, scope, res)
		res.Classes = append(res.Classes, class)
	}
}

func (g *GoIntrospector) fields(class string, st *types.Struct, docs *goDocs, res *Result) []*model.RawField {
	var out []*model.RawField
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		subject := class + "." + v.Name()
		if v.Embedded() {
			res.warn(WarnEmbedded, subject, "embedded fields are skipped")
			continue
		}
		td, err := typeOf(v.Type())
		if err != nil {
			res.warn(WarnUnsupportedType, subject, "%v", err)
			continue
		}
		tag := reflect.StructTag(st.Tag(i))
		doc := docs.fields[class][v.Name()]
		out = append(out, &model.RawField{
			Name:        v.Name(),
			Description: doc,
			Type:        td,
			Exposed:     v.Exported() && tag.Get("json") != "-" && (g.HideField == nil || !g.HideField(tag)),
			Deprecated:  isDeprecated(doc),
		})
	}
	return out
}

func (g *GoIntrospector) methods(class string, named *types.Named, docs *goDocs, res *Result) []*model.RawFunction {
	var out []*model.RawFunction
	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		sel := mset.At(i)
		fn, ok := sel.Obj().(*types.Func)
		if !ok || !fn.Exported() || len(sel.Index()) > 1 {
			continue
		}
		subject := class + "." + fn.Name()
		args, ret, err := signature(fn.Type().(*types.Signature))
		if err != nil {
			code := WarnUnsupportedType
			if errors.Is(err, errMultipleResults) {
				code = WarnMultipleResults
			}
			res.warn(code, subject, "%v", err)
			continue
		}
		doc := docs.methods[class+"."+fn.Name()]
		out = append(out, &model.RawFunction{
			Name:        fn.Name(),
			Description: doc,
			Args:        args,
			Returns:     ret,
			Deprecated:  isDeprecated(doc),
		})
	}
	return out
}

// constructor finds func New<Class>(...) (*Class[, error]) in the same scope.
func (g *GoIntrospector) constructor(class string, named *types.Named, scope *types.Scope, res *Result) *model.RawConstructor {
	fn, ok := scope.Lookup("New" + class).(*types.Func)
	if !ok {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	results := sig.Results()
	if results.Len() == 0 || results.Len() > 2 {
		return nil
	}
	first := results.At(0).Type()
	if p, isPtr := first.(*types.Pointer); isPtr {
		first = p.Elem()
	}
	if !types.Identical(first, named) || (results.Len() == 2 && !isError(results.At(1).Type())) {
		return nil
	}
	args, _, err := signature(types.NewSignatureType(nil, nil, nil, sig.Params(), nil, sig.Variadic()))
	if err != nil {
		res.warn(WarnUnsupportedType, class+".New"+class, "%v", err)
		return nil
	}
	return &model.RawConstructor{Args: args}
}

// modulePath walks up from dir to the nearest go.mod and returns its module
// path.
func modulePath(dir string) (string, error) {
	from, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		data, err := os.ReadFile(filepath.Join(from, "go.mod"))
		if err == nil {
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", fmt.Errorf("no module directive in %s", filepath.Join(from, "go.mod"))
			}
			return mod, nil
		}
		parent := filepath.Dir(from)
		if parent == from {
			return "", errors.New("no go.mod found")
		}
		from = parent
	}
}
