package parser

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/bindgen/internal/model"
)

func introspectShop(t *testing.T) *Result {
	t.Helper()
	p := &ProtoIntrospector{Files: []string{"shop.proto"}, ImportPaths: []string{"testdata/proto"}}
	res, err := p.Introspect(context.Background())
	require.NoError(t, err)
	return res
}

func TestProtoIntrospector(t *testing.T) {
	res := introspectShop(t)

	assert.Equal(t, "shop.v1", res.Origin)
	assert.Equal(t, []string{"Item", "Item_Dimensions", "GetItemRequest", "ListItemsResponse", "Shop"}, classNames(res))
	assert.Equal(t, []string{
		"unsupported_type Item.attributes",
		"streaming_rpc Shop.Watch",
	}, warningKeys(res.Warnings))

	item := res.Find("Item")
	require.NotNil(t, item)
	assert.Equal(t, "An item for sale.", item.Description)
	assert.Equal(t, "shop.proto", item.Source)

	want := []*model.RawField{
		{Name: "sku", Type: model.Scalar(model.KindString), Exposed: true},
		{Name: "price", Description: "Price in cents.", Type: model.Scalar(model.KindInteger), Exposed: true},
		{Name: "labels", Type: model.List(model.Scalar(model.KindString)), Exposed: true},
		{Name: "listed_at", Type: model.Scalar(model.KindString), Exposed: true},
		{Name: "note", Description: "Optional.", Type: model.Scalar(model.KindString), Exposed: true},
		{Name: "kind", Type: model.Scalar(model.KindString), Exposed: true},
		{Name: "dimensions", Type: model.Object("Item_Dimensions"), Exposed: true},
		{Name: "legacy", Type: model.Scalar(model.KindString), Exposed: true, Deprecated: true},
	}
	if diff := cmp.Diff(want, item.Fields); diff != "" {
		t.Errorf("Item fields mismatch (-want +got):\n%s", diff)
	}

	dims := res.Find("Item_Dimensions")
	require.NotNil(t, dims)
	assert.Equal(t, model.Scalar(model.KindFloat), fieldNamed(dims, "width").Type)
}

func TestProtoIntrospectorService(t *testing.T) {
	res := introspectShop(t)

	shop := res.Find("Shop")
	require.NotNil(t, shop)
	assert.Equal(t, "Shop sells items.", shop.Description)

	want := []*model.RawFunction{
		{
			Name:        "GetItem",
			Description: "GetItem fetches one item.",
			Args:        []*model.RawArg{{Name: "request", Type: model.Object("GetItemRequest")}},
			Returns:     model.Object("Item"),
		},
		{Name: "ListItems", Returns: model.Object("ListItemsResponse")},
		{Name: "Clear", Returns: model.Scalar(model.KindVoid)},
	}
	if diff := cmp.Diff(want, shop.Methods); diff != "" {
		t.Errorf("Shop methods mismatch (-want +got):\n%s", diff)
	}
}

func TestProtoIntrospectorMissingFile(t *testing.T) {
	p := &ProtoIntrospector{Files: []string{"missing.proto"}, ImportPaths: []string{"testdata/proto"}}
	_, err := p.Introspect(context.Background())
	require.Error(t, err)
}

func TestProtoIntrospectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &ProtoIntrospector{Files: []string{"shop.proto"}, ImportPaths: []string{"testdata/proto"}}
	_, err := p.Introspect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
