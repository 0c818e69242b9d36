package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/cmmoran/bindgen/internal/model"
)

const componentSchemaPrefix = "#/components/schemas/"

// OpenAPIIntrospector reads component schemas and operations from an
// OpenAPI 3 document on disk. Object component schemas become classes;
// operations are grouped by their first tag into <Tag>Service classes.
type OpenAPIIntrospector struct {
	File   string
	Logger *slog.Logger
}

func (o *OpenAPIIntrospector) Introspect(ctx context.Context) (*Result, error) {
	log := o.logger().With("file", o.File)

	data, err := os.ReadFile(o.File)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	res := &Result{}
	if doc.Info != nil {
		res.Origin = strings.TrimSpace(doc.Info.Title + " " + doc.Info.Version)
	}

	var components openapi3.Schemas
	if doc.Components != nil {
		components = doc.Components.Schemas
	}
	for _, name := range slices.Sorted(maps.Keys(components)) {
		ref := components[name]
		if ref == nil || ref.Value == nil || !isObjectSchema(ref.Value) {
			continue
		}
		res.Classes = append(res.Classes, o.componentClass(name, ref.Value, components, res))
	}

	services := o.serviceClasses(doc, components, res)
	res.Classes = append(res.Classes, services...)

	log.Info("introspected openapi document", "classes", len(res.Classes), "services", len(services), "warnings", len(res.Warnings))
	return res, nil
}

func (o *OpenAPIIntrospector) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default().With("component", "openapi_introspector")
	}
	return o.Logger.With("component", "openapi_introspector")
}

func schemaType(s *openapi3.Schema) string {
	if s.Type == nil || len(*s.Type) == 0 {
		return ""
	}
	return (*s.Type)[0]
}

func isObjectSchema(s *openapi3.Schema) bool {
	t := schemaType(s)
	return t == "object" || (t == "" && len(s.Properties) > 0)
}

func (o *OpenAPIIntrospector) componentClass(name string, s *openapi3.Schema, components openapi3.Schemas, res *Result) *model.RawClass {
	desc := s.Description
	if desc == "" {
		desc = s.Title
	}
	class := &model.RawClass{
		Name:        exportName(name),
		Description: desc,
		Source:      o.File,
		Deprecated:  s.Deprecated,
	}
	for _, prop := range slices.Sorted(maps.Keys(s.Properties)) {
		ref := s.Properties[prop]
		td, err := o.typeOf(ref, components)
		if err != nil {
			res.warn(WarnUnsupportedType, class.Name+"."+prop, "%v", err)
			continue
		}
		f := &model.RawField{Name: prop, Type: td, Exposed: true}
		if ref.Value != nil {
			if ref.Ref == "" {
				f.Description = ref.Value.Description
			}
			f.Exposed = !ref.Value.WriteOnly
			f.Deprecated = ref.Value.Deprecated
		}
		class.Fields = append(class.Fields, f)
	}
	return class
}

// typeOf maps a schema reference. References to object components become
// object references; references to anything else are inlined.
func (o *OpenAPIIntrospector) typeOf(ref *openapi3.SchemaRef, components openapi3.Schemas) (*model.RawTypeDef, error) {
	return o.inline(ref, components, map[string]bool{})
}

// inline resolves ref, failing when a non-object component is reached
// again while it is being inlined.
func (o *OpenAPIIntrospector) inline(ref *openapi3.SchemaRef, components openapi3.Schemas, inlining map[string]bool) (*model.RawTypeDef, error) {
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: missing schema", errUnsupportedType)
	}
	if name, ok := strings.CutPrefix(ref.Ref, componentSchemaPrefix); ok {
		if target := components[name]; target != nil && target.Value != nil && isObjectSchema(target.Value) {
			return model.Object(exportName(name)), nil
		}
		if inlining[name] {
			return nil, fmt.Errorf("%w: recursive component %s", errUnsupportedType, name)
		}
		inlining[name] = true
		defer delete(inlining, name)
	}
	s := ref.Value
	switch t := schemaType(s); t {
	case "string":
		return model.Scalar(model.KindString), nil
	case "integer":
		return model.Scalar(model.KindInteger), nil
	case "number":
		return model.Scalar(model.KindFloat), nil
	case "boolean":
		return model.Scalar(model.KindBoolean), nil
	case "array":
		if s.Items == nil {
			return nil, fmt.Errorf("%w: array without items", errUnsupportedType)
		}
		elem, err := o.inline(s.Items, components, inlining)
		if err != nil {
			return nil, err
		}
		return model.List(elem), nil
	default:
		return nil, fmt.Errorf("%w: schema type %q", errUnsupportedType, t)
	}
}

func (o *OpenAPIIntrospector) serviceClasses(doc *openapi3.T, components openapi3.Schemas, res *Result) []*model.RawClass {
	if doc.Paths == nil {
		return nil
	}
	byTag := map[string]*model.RawClass{}
	var order []string
	paths := doc.Paths.Map()
	for _, path := range slices.Sorted(maps.Keys(paths)) {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		for _, method := range slices.Sorted(maps.Keys(ops)) {
			op := ops[method]
			if op == nil {
				continue
			}
			tag := "Default"
			if len(op.Tags) > 0 {
				tag = op.Tags[0]
			}
			className := exportName(tag) + "Service"
			class, ok := byTag[className]
			if !ok {
				class = &model.RawClass{Name: className, Description: tagDescription(doc, tag), Source: o.File}
				byTag[className] = class
				order = append(order, className)
			}
			fn, err := o.operation(method, path, item.Parameters, op, components, res)
			if err != nil {
				res.warn(WarnUnsupportedType, className+"."+operationName(method, path, op), "%v", err)
				continue
			}
			class.Methods = append(class.Methods, fn)
		}
	}
	out := make([]*model.RawClass, 0, len(order))
	for _, name := range order {
		out = append(out, byTag[name])
	}
	return out
}

func tagDescription(doc *openapi3.T, tag string) string {
	if t := doc.Tags.Get(tag); t != nil {
		return t.Description
	}
	return ""
}

func operationName(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + exportName(path)
}

// mergeParameters applies the operation's parameters over the path item's,
// matching on name and location.
func mergeParameters(shared, own openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	used := map[*openapi3.Parameter]bool{}
	for _, sref := range shared {
		if sref == nil || sref.Value == nil {
			continue
		}
		p := sref.Value
		for _, oref := range own {
			if oref != nil && oref.Value != nil && oref.Value.In == p.In && oref.Value.Name == p.Name {
				p = oref.Value
				used[p] = true
				break
			}
		}
		out = append(out, p)
	}
	for _, oref := range own {
		if oref == nil || oref.Value == nil || used[oref.Value] {
			continue
		}
		out = append(out, oref.Value)
	}
	return out
}

// argNames hands out argument names unique within one operation. A taken
// name is retried with its location as a prefix (queryId, requestBody).
type argNames map[string]bool

func (n argNames) claim(name, in string) (string, bool) {
	for _, candidate := range []string{name, in + exportName(name)} {
		if !n[candidate] {
			n[candidate] = true
			return candidate, true
		}
	}
	return "", false
}

func (o *OpenAPIIntrospector) operation(method, path string, shared openapi3.Parameters, op *openapi3.Operation, components openapi3.Schemas, res *Result) (*model.RawFunction, error) {
	name := operationName(method, path, op)
	desc := op.Description
	if desc == "" {
		desc = op.Summary
	}
	fn := &model.RawFunction{Name: name, Description: desc, Deprecated: op.Deprecated}

	names := argNames{}
	for _, p := range mergeParameters(shared, op.Parameters) {
		td, err := o.typeOf(p.Schema, components)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		argName, ok := names.claim(p.Name, p.In)
		if !ok {
			res.warn(WarnDuplicateName, name+"."+p.Name, "%s parameter skipped, name already taken", p.In)
			continue
		}
		if argName != p.Name {
			res.warn(WarnRenamed, name+"."+p.Name, "%s parameter renamed to %s", p.In, argName)
		}
		arg := &model.RawArg{Name: argName, Description: p.Description, Optional: !p.Required, Type: td}
		if p.Schema != nil && p.Schema.Value != nil && p.Schema.Value.Default != nil {
			if p.Required {
				res.warn(WarnDroppedDefault, name+"."+argName, "required parameter default %v dropped", p.Schema.Value.Default)
			} else {
				def := defaultString(p.Schema.Value.Default)
				arg.Default = &def
			}
		}
		fn.Args = append(fn.Args, arg)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if mt := op.RequestBody.Value.Content.Get("application/json"); mt != nil && mt.Schema != nil {
			td, err := o.typeOf(mt.Schema, components)
			if err != nil {
				return nil, fmt.Errorf("request body: %w", err)
			}
			if argName, ok := names.claim("body", "request"); !ok {
				res.warn(WarnDuplicateName, name+".body", "request body skipped, name already taken")
			} else {
				if argName != "body" {
					res.warn(WarnRenamed, name+".body", "request body renamed to %s", argName)
				}
				fn.Args = append(fn.Args, &model.RawArg{
					Name:        argName,
					Description: op.RequestBody.Value.Description,
					Optional:    !op.RequestBody.Value.Required,
					Type:        td,
				})
			}
		}
	}

	fn.Returns = model.Scalar(model.KindVoid)
	if resp := successResponse(op.Responses); resp != nil {
		if mt := resp.Content.Get("application/json"); mt != nil && mt.Schema != nil {
			td, err := o.typeOf(mt.Schema, components)
			if err != nil {
				return nil, fmt.Errorf("response: %w", err)
			}
			fn.Returns = td
		}
	}
	return fn, nil
}

// successResponse prefers 200, then 201, then the lowest other 2xx code.
func successResponse(responses *openapi3.Responses) *openapi3.Response {
	if responses == nil {
		return nil
	}
	m := responses.Map()
	codes := []string{"200", "201"}
	for _, code := range slices.Sorted(maps.Keys(m)) {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	for _, code := range codes {
		if ref, ok := m[code]; ok && ref != nil && ref.Value != nil {
			return ref.Value
		}
	}
	return nil
}

func defaultString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
