package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/bindgen/pkg/schema"
)

func ptr[T any](v T) *T { return &v }

func norm(s string) string { return strings.Join(strings.Fields(s), " ") }

func workshop(t *testing.T) *schema.Schema {
	t.Helper()
	widget, err := schema.NewClassBuilder("Widget", "Widget is a thing on a shelf.").
		Field("name", "Display name.", schema.String(), true).
		Field("count", "", schema.Integer(), true).
		Field("secret", "", schema.String(), false).
		Constructor(
			schema.ArgSpec{Name: "name", Type: schema.String()},
			schema.ArgSpec{Name: "color", Optional: true, Default: ptr("red"), Type: schema.String()},
			schema.ArgSpec{Name: "count", Optional: true, Type: schema.Integer()},
		).
		Method("resize", "Resize scales the widget.", schema.Void(),
			schema.ArgSpec{Name: "width", Type: schema.Float()},
			schema.ArgSpec{Name: "keep_ratio", Optional: true, Type: schema.Boolean()},
		).
		Method("parts", "", schema.MustList(schema.MustObject("Part"))).
		Method("find", "", schema.MustObject("Part"), schema.ArgSpec{Name: "name", Type: schema.String()}).
		Build()
	require.NoError(t, err)

	part, err := schema.NewClassBuilder("Part", "").
		Field("label", "", schema.String(), true).
		Field("tags", "", schema.MustList(schema.String()), true).
		Field("ping", "", schema.Void(), true).
		Build()
	require.NoError(t, err)

	s, err := schema.NewSchema(widget, part)
	require.NoError(t, err)
	return s
}

func render(t *testing.T, g *Generator, s *schema.Schema) string {
	t.Helper()
	f, err := g.Generate(s)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	return buf.String()
}

func TestGenerate(t *testing.T) {
	out := render(t, New(Options{Package: "bindings", Collections: true, Origin: "workshop"}), workshop(t))
	got := norm(out)

	for _, want := range []string{
		"// Code generated by bindgen from workshop. DO NOT EDIT.",
		"package bindings",
		"// Widget is a thing on a shelf. type Widget struct {",
		"// Display name. Name string `json:\"name\"`",
		"Count int64 `json:\"count\"`",
		"type WidgetOpts struct { // Defaults to red. Color string Count int64 }",
		"func NewWidget(name string, opts *WidgetOpts) *Widget {",
		"Name: name",
		"if opts != nil { v.Count = opts.Count }",
		"type WidgetResizeOpts struct { KeepRatio bool }",
		"// Resize scales the widget. func (w *Widget) Resize(width float64, opts *WidgetResizeOpts) error { panic(\"not implemented\") }",
		"func (w *Widget) Parts() ([]*Part, error) {",
		"func (w *Widget) Find(name string) (*Part, error) {",
		"type Part struct { Label string `json:\"label\"` Tags []string `json:\"tags\"` Ping struct{} `json:\"ping\"` }",
		"// Parts is a list of Part. type Parts []*Part",
	} {
		assert.Contains(t, got, norm(want))
	}
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "Secret")
	assert.NotContains(t, out, "type Widgets")
}

func TestGenerateWithoutCollections(t *testing.T) {
	out := render(t, New(Options{}), workshop(t))
	assert.Contains(t, out, "package api")
	assert.Contains(t, out, "// Code generated by bindgen. DO NOT EDIT.")
	assert.NotContains(t, out, "type Parts")
}

func TestGenerateConstructorWithoutOptionals(t *testing.T) {
	c, err := schema.NewClassBuilder("Empty", "").Constructor().Build()
	require.NoError(t, err)
	s, err := schema.NewSchema(c)
	require.NoError(t, err)

	got := norm(render(t, New(Options{}), s))
	assert.Contains(t, got, "func NewEmpty() *Empty { return &Empty{} }")
	assert.NotContains(t, got, "EmptyOpts")
}

func TestGenerateReceiverAvoidsArgument(t *testing.T) {
	c, err := schema.NewClassBuilder("Wheel", "").
		Method("spin", "", schema.Void(), schema.ArgSpec{Name: "w", Type: schema.Integer()}).
		Build()
	require.NoError(t, err)
	s, err := schema.NewSchema(c)
	require.NoError(t, err)

	got := norm(render(t, New(Options{}), s))
	assert.Contains(t, got, "func (recv *Wheel) Spin(w int64) error {")
}

func TestGenerateNameCollisions(t *testing.T) {
	tests := []struct {
		name    string
		classes func(t *testing.T) []schema.ClassDescriptor
	}{
		{
			name: "class names",
			classes: func(t *testing.T) []schema.ClassDescriptor {
				a, err := schema.NewClassBuilder("a_b", "").Build()
				require.NoError(t, err)
				b, err := schema.NewClassBuilder("AB", "").Build()
				require.NoError(t, err)
				return []schema.ClassDescriptor{a, b}
			},
		},
		{
			name: "field and method",
			classes: func(t *testing.T) []schema.ClassDescriptor {
				c, err := schema.NewClassBuilder("Job", "").
					Field("run", "", schema.Boolean(), true).
					Method("run", "", schema.Void()).
					Build()
				require.NoError(t, err)
				return []schema.ClassDescriptor{c}
			},
		},
		{
			name: "arguments",
			classes: func(t *testing.T) []schema.ClassDescriptor {
				c, err := schema.NewClassBuilder("Job", "").
					Method("start", "", schema.Void(),
						schema.ArgSpec{Name: "max_count", Type: schema.Integer()},
						schema.ArgSpec{Name: "maxCount", Type: schema.Integer()},
					).
					Build()
				require.NoError(t, err)
				return []schema.ClassDescriptor{c}
			},
		},
		{
			name: "optional arguments",
			classes: func(t *testing.T) []schema.ClassDescriptor {
				c, err := schema.NewClassBuilder("Lister", "").
					Method("list", "", schema.Void(),
						schema.ArgSpec{Name: "page_size", Optional: true, Type: schema.Integer()},
						schema.ArgSpec{Name: "pageSize", Optional: true, Type: schema.Integer()},
					).
					Build()
				require.NoError(t, err)
				return []schema.ClassDescriptor{c}
			},
		},
		{
			name: "optional constructor arguments",
			classes: func(t *testing.T) []schema.ClassDescriptor {
				c, err := schema.NewClassBuilder("Lister", "").
					Constructor(
						schema.ArgSpec{Name: "page_size", Optional: true, Type: schema.Integer()},
						schema.ArgSpec{Name: "PageSize", Optional: true, Type: schema.Integer()},
					).
					Build()
				require.NoError(t, err)
				return []schema.ClassDescriptor{c}
			},
		},
		{
			name: "options struct",
			classes: func(t *testing.T) []schema.ClassDescriptor {
				c, err := schema.NewClassBuilder("Job", "").
					Constructor(schema.ArgSpec{Name: "n", Optional: true, Type: schema.Integer()}).
					Build()
				require.NoError(t, err)
				opts, err := schema.NewClassBuilder("JobOpts", "").Build()
				require.NoError(t, err)
				return []schema.ClassDescriptor{c, opts}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := schema.NewSchema(tt.classes(t)...)
			require.NoError(t, err)
			_, err = New(Options{}).Generate(s)
			require.ErrorIs(t, err, ErrNameCollision)
		})
	}
}

func TestTypeOf(t *testing.T) {
	r := &renderer{s: workshop(t)}

	_, err := r.typeOf(schema.ScalarDescriptor{})
	require.ErrorIs(t, err, schema.ErrUnknownKind)

	_, err = r.typeOf(schema.MustObject("Ghost"))
	require.ErrorIs(t, err, schema.ErrUnresolvedObjectReference)

	_, err = r.typeOf(schema.MustList(schema.MustObject("Ghost")))
	require.ErrorIs(t, err, schema.ErrUnresolvedObjectReference)

	_, err = r.typeOf(nil)
	require.ErrorIs(t, err, schema.ErrUnknownKind)
}

func TestNames(t *testing.T) {
	exportedTests := map[string]string{
		"name":            "Name",
		"listed_at":       "ListedAt",
		"petId":           "PetID",
		"Item_Dimensions": "ItemDimensions",
		"2fa":             "X2fa",
		"url-path":        "URLPath",
		"":                "X",
	}
	for in, want := range exportedTests {
		assert.Equal(t, want, exported(in), in)
	}

	localTests := map[string]string{
		"Name":       "name",
		"keep_ratio": "keepRatio",
		"type":       "typeArg",
		"opts":       "optsArg",
		"ID":         "id",
		"9lives":     "arg9lives",
		"":           "arg",
	}
	for in, want := range localTests {
		assert.Equal(t, want, local(in), in)
	}
}
