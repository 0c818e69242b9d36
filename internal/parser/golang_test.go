package parser

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/bindgen/internal/model"
)

func classNames(res *Result) []string {
	var names []string
	for _, c := range res.Classes {
		names = append(names, c.Name)
	}
	return names
}

func warningKeys(ws []model.Warning) []string {
	var keys []string
	for _, w := range ws {
		keys = append(keys, w.Code+" "+w.Subject)
	}
	return keys
}

func fieldNamed(c *model.RawClass, name string) *model.RawField {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func methodNamed(c *model.RawClass, name string) *model.RawFunction {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func introspectLibrary(t *testing.T, hide func(reflect.StructTag) bool) *Result {
	t.Helper()
	g := &GoIntrospector{Dir: "testdata/library", Patterns: []string{"."}, HideField: hide}
	res, err := g.Introspect(context.Background())
	require.NoError(t, err)
	return res
}

func TestGoIntrospector(t *testing.T) {
	res := introspectLibrary(t, nil)

	assert.Equal(t, "github.com/cmmoran/bindgen", res.Origin)
	assert.Equal(t, []string{"Author", "Book", "Library", "Shelf"}, classNames(res))
	assert.Equal(t, []string{
		"unsupported_type Library.Index",
		"multiple_results Library.Split",
		"generic_type Page",
		"embedded_field Shelf.Library",
	}, warningKeys(res.Warnings))

	book := res.Find("Book")
	require.NotNil(t, book)
	assert.Equal(t, "Book is a catalogued title.", book.Description)
	assert.Nil(t, book.Constructor)

	tests := []struct {
		field      string
		want       *model.RawTypeDef
		exposed    bool
		deprecated bool
		doc        string
	}{
		{field: "Title", want: model.Scalar(model.KindString), exposed: true, doc: "Title as printed."},
		{field: "Pages", want: model.Scalar(model.KindInteger), exposed: true},
		{field: "Price", want: model.Scalar(model.KindFloat), exposed: true},
		{field: "Tags", want: model.List(model.Scalar(model.KindString)), exposed: true},
		{field: "Author", want: model.Object("Author"), exposed: true},
		{field: "Published", want: model.Scalar(model.KindString), exposed: true},
		{field: "Secret", want: model.Scalar(model.KindString)},
		{field: "shelf", want: model.Scalar(model.KindInteger)},
		{field: "Name", want: model.Scalar(model.KindString), exposed: true, deprecated: true, doc: "Deprecated: use Title."},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := fieldNamed(book, tt.field)
			require.NotNil(t, f)
			if diff := cmp.Diff(tt.want, f.Type); diff != "" {
				t.Errorf("type mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.exposed, f.Exposed)
			assert.Equal(t, tt.deprecated, f.Deprecated)
			assert.Equal(t, tt.doc, f.Description)
		})
	}
}

func TestGoIntrospectorMethods(t *testing.T) {
	res := introspectLibrary(t, nil)

	lib := res.Find("Library")
	require.NotNil(t, lib)
	var names []string
	for _, m := range lib.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Add", "Count", "Find", "Tagged"}, names)

	want := map[string]*model.RawFunction{
		"Add": {
			Name:        "Add",
			Description: "Add adds a book.",
			Args:        []*model.RawArg{{Name: "book", Optional: true, Type: model.Object("Book")}},
			Returns:     model.Scalar(model.KindVoid),
		},
		"Count": {
			Name:    "Count",
			Args:    []*model.RawArg{},
			Returns: model.Scalar(model.KindInteger),
		},
		"Find": {
			Name:        "Find",
			Description: "Find looks up a book by title.",
			Args:        []*model.RawArg{{Name: "title", Type: model.Scalar(model.KindString)}},
			Returns:     model.Object("Book"),
		},
		"Tagged": {
			Name:    "Tagged",
			Args:    []*model.RawArg{{Name: "tags", Optional: true, Type: model.List(model.Scalar(model.KindString))}},
			Returns: model.List(model.Object("Book")),
		},
	}
	for name, fn := range want {
		if diff := cmp.Diff(fn, methodNamed(lib, name)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	shelf := res.Find("Shelf")
	require.NotNil(t, shelf)
	assert.Empty(t, shelf.Methods, "promoted methods are skipped")
}

func TestGoIntrospectorConstructors(t *testing.T) {
	res := introspectLibrary(t, nil)

	author := res.Find("Author")
	require.NotNil(t, author)
	require.NotNil(t, author.Constructor)
	assert.Equal(t, []*model.RawArg{{Name: "name", Type: model.Scalar(model.KindString)}}, author.Constructor.Args)

	lib := res.Find("Library")
	require.NotNil(t, lib)
	require.NotNil(t, lib.Constructor, "NewLibrary returning an error is still a constructor")
	assert.Empty(t, lib.Constructor.Args)
}

func TestGoIntrospectorHideField(t *testing.T) {
	res := introspectLibrary(t, func(tag reflect.StructTag) bool {
		return tag.Get("json") == "pages"
	})
	book := res.Find("Book")
	require.NotNil(t, book)
	assert.False(t, fieldNamed(book, "Pages").Exposed)
	assert.True(t, fieldNamed(book, "Title").Exposed)
}

func TestGoIntrospectorLoadError(t *testing.T) {
	g := &GoIntrospector{Dir: "testdata/library", Patterns: []string{"./does-not-exist"}}
	_, err := g.Introspect(context.Background())
	require.Error(t, err)
}

func TestExportName(t *testing.T) {
	tests := map[string]string{
		"pets":           "Pets",
		"/pets/{petId}":  "PetsPetId",
		"user-accounts":  "UserAccounts",
		"already_Mixed9": "AlreadyMixed9",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, exportName(in), in)
	}
}

func TestIsDeprecated(t *testing.T) {
	assert.True(t, isDeprecated("Old thing.\n\nDeprecated: use New."))
	assert.False(t, isDeprecated("Replaces the deprecated endpoint."))
	assert.False(t, isDeprecated(""))
}
