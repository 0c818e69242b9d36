package schema

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetClass(t *testing.T) ClassDescriptor {
	t.Helper()
	c, err := NewClassBuilder("Widget", "a widget").
		Field("id", "", String(), true).
		Field("weight", "", Float(), true).
		Constructor(ArgSpec{Name: "id", Type: String()}).
		Build()
	require.NoError(t, err)
	return c
}

func TestNewSchema(t *testing.T) {
	s, err := NewSchema(containerClass(t), widgetClass(t))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"Container", "Widget"}, s.Names())

	container, ok := s.Class("Container")
	require.True(t, ok)
	items, _ := container.Fields().Get("items")
	leaf, depth := Unwrap(items.TypeDef())
	assert.Equal(t, 1, depth)
	widget, err := s.Resolve(leaf.(ObjectDescriptor))
	require.NoError(t, err)
	assert.Equal(t, "Widget", widget.Name())

	_, err = s.Resolve(MustObject("Gadget"))
	assert.ErrorIs(t, err, ErrUnresolvedObjectReference)
}

func TestNewSchema_UnresolvedReferences(t *testing.T) {
	_, err := NewSchema(containerClass(t))
	require.ErrorIs(t, err, ErrUnresolvedObjectReference)

	var paths []string
	for _, e := range flatten(err) {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		paths = append(paths, ve.Path)
	}
	assert.ElementsMatch(t, []string{
		"Container.fields.items.typeDef",
		"Container.methods.add.args.item.typeDef",
	}, paths)
}

func TestNewSchema_ReferencesEverywhere(t *testing.T) {
	c, err := NewClassBuilder("Factory", "").
		Constructor(ArgSpec{Name: "seed", Type: MustList(MustList(MustObject("Seed")))}).
		Method("make", "", MustObject("Product")).
		Build()
	require.NoError(t, err)

	_, err = NewSchema(c)
	require.Error(t, err)
	assert.Len(t, flatten(err), 2)
	assert.ErrorContains(t, err, `"Seed"`)
	assert.ErrorContains(t, err, `"Product"`)
}

func TestNewSchema_DuplicateClass(t *testing.T) {
	_, err := NewSchema(widgetClass(t), widgetClass(t))
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestNewSchema_ZeroClass(t *testing.T) {
	_, err := NewSchema(ClassDescriptor{})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestNewSchema_Empty(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSchema_SelfReference(t *testing.T) {
	node, err := NewClassBuilder("Node", "").
		Field("children", "", MustList(MustObject("Node")), true).
		Method("parent", "", MustObject("Node")).
		Build()
	require.NoError(t, err)
	_, err = NewSchema(node)
	assert.NoError(t, err)
}

func TestSchema_ConcurrentReaders(t *testing.T) {
	s, err := NewSchema(containerClass(t), widgetClass(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range s.Classes() {
				for _, f := range c.Fields().All() {
					_, _ = Unwrap(f.TypeDef())
				}
				_, _ = s.Class(c.Name())
			}
		}()
	}
	wg.Wait()
}
