package application

import (
	"context"
	"testing"

	"ave-shopify-connector/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(crm *fakeCRM, store *fakeStore) *ProductService {
	return NewProductService(crm, store, nil, zerolog.Nop(), 2)
}

func productFixture() domain.ProductInput {
	return domain.ProductInput{
		CompanyID: "123",
		ProductID: 10,
		Name:      "Camiseta Roja",
		Ref:       "REF-001",
		Suggested: 25000,
		Units:     5,
		Variants: []domain.VariantInput{
			{ID: 5, Name: "Roja M", SKU: "SKU-1"},
		},
	}
}

func TestProductPostNoStores(t *testing.T) {
	crm := &fakeCRM{}
	store := &fakeStore{}
	svc := newProductService(crm, store)

	report, err := svc.Post(context.Background(), "tok", productFixture(), RequestContext{})

	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Empty(t, store.callLog())
}

func TestProductPostCreatesAndPersistsReferences(t *testing.T) {
	crm := &fakeCRM{
		tokens: []domain.StoreCredential{{ID: 1, URL: "shop-a.myshopify.com", Token: "t"}},
	}
	store := &fakeStore{
		created: &domain.StoreProduct{
			ID:       "gid://shopify/Product/111",
			Variants: []domain.StoreVariant{{ID: "gid://shopify/ProductVariant/900", SKU: "SKU-1"}},
		},
	}
	svc := newProductService(crm, store)

	report, err := svc.Post(context.Background(), "tok", productFixture(), RequestContext{})

	require.NoError(t, err)
	require.NotNil(t, report)
	res := report.Results["shop-a.myshopify.com"]
	assert.True(t, res.Success)
	assert.False(t, res.Precreated)

	require.Len(t, crm.putCalls, 1)
	refs := crm.putCalls[0]
	require.Len(t, refs, 2)
	assert.Equal(t, int64(10), refs[0].ProductID)
	assert.Equal(t, "111", refs[0].ProductRef)
	assert.Equal(t, int64(1), refs[0].TokenID)
	assert.Equal(t, domain.ProductTypeOwn, refs[0].Type)
	assert.Equal(t, int64(5), refs[1].ProductID)
	assert.Equal(t, "900", refs[1].ProductRef)
	require.NotNil(t, refs[1].ParentID)
	assert.Equal(t, int64(10), *refs[1].ParentID)
}

func TestProductPostPrecreatedSkipsCreate(t *testing.T) {
	crm := &fakeCRM{
		tokens: []domain.StoreCredential{{ID: 1, URL: "shop-a.myshopify.com"}},
		refs: []domain.CrossReference{
			{ProductID: 10, ProductRef: "111", TokenID: 1},
		},
	}
	store := &fakeStore{}
	svc := newProductService(crm, store)

	report, err := svc.Post(context.Background(), "tok", productFixture(), RequestContext{})

	require.NoError(t, err)
	res := report.Results["shop-a.myshopify.com"]
	assert.True(t, res.Success)
	assert.True(t, res.Precreated)
	assert.Empty(t, store.callLog())
	assert.Empty(t, crm.putCalls)
	require.NotEmpty(t, res.References)
	assert.Equal(t, "111", res.References[0].ProductRef)
}

func TestProductPostStoreFailureIsolation(t *testing.T) {
	crm := &fakeCRM{
		tokens: []domain.StoreCredential{
			{ID: 1, URL: "shop-a.myshopify.com"},
			{ID: 2, URL: "shop-b.myshopify.com"},
		},
	}
	store := &fakeStore{
		failOps: map[string]error{"create_product:shop-b.myshopify.com": errStoreDown},
	}
	svc := newProductService(crm, store)

	report, err := svc.Post(context.Background(), "tok", productFixture(), RequestContext{})

	require.NoError(t, err)
	assert.True(t, report.Results["shop-a.myshopify.com"].Success)
	failed := report.Results["shop-b.myshopify.com"]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Error, "store unavailable")
	assert.False(t, report.AllSucceeded())
}

func TestProductPostDropshippingReferencePrecedence(t *testing.T) {
	in := productFixture()
	in.DropshippingID = 77
	in.Variants[0].DropshippingID = 78

	crm := &fakeCRM{
		tokens: []domain.StoreCredential{{ID: 1, URL: "shop-a.myshopify.com"}},
		dropRefs: []domain.CrossReference{
			{ProductID: 77, ProductRef: "111", TokenID: 1},
		},
	}
	store := &fakeStore{}
	svc := newProductService(crm, store)

	report, err := svc.Post(context.Background(), "tok", in, RequestContext{})

	require.NoError(t, err)
	res := report.Results["shop-a.myshopify.com"]
	assert.True(t, res.Precreated)
	assert.Empty(t, store.callLog())
}

func TestProductPutRequiresProductID(t *testing.T) {
	svc := newProductService(&fakeCRM{}, &fakeStore{})
	in := productFixture()
	in.ProductID = 0

	_, err := svc.Put(context.Background(), "tok", in, RequestContext{})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestProductPutUnmappedStoreFails(t *testing.T) {
	crm := &fakeCRM{
		tokens: []domain.StoreCredential{{ID: 1, URL: "shop-a.myshopify.com"}},
	}
	store := &fakeStore{}
	svc := newProductService(crm, store)

	report, err := svc.Put(context.Background(), "tok", productFixture(), RequestContext{})

	require.NoError(t, err)
	res := report.Results["shop-a.myshopify.com"]
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, store.callLog())
}

func TestProductSyncUpdatesMappedCreatesUnmapped(t *testing.T) {
	crm := &fakeCRM{
		tokens: []domain.StoreCredential{
			{ID: 1, URL: "shop-a.myshopify.com"},
			{ID: 2, URL: "shop-b.myshopify.com"},
		},
		refs: []domain.CrossReference{
			{ProductID: 10, ProductRef: "111", TokenID: 1},
		},
	}
	store := &fakeStore{}
	svc := newProductService(crm, store)

	report, err := svc.Sync(context.Background(), "tok", productFixture(), RequestContext{})

	require.NoError(t, err)
	assert.True(t, report.AllSucceeded())
	log := store.callLog()
	assert.Contains(t, log, "update_product:shop-a.myshopify.com")
	assert.Contains(t, log, "create_product:shop-b.myshopify.com")
}

func TestPutStockEmptyVariants(t *testing.T) {
	svc := newProductService(&fakeCRM{}, &fakeStore{})

	_, err := svc.PutStock(context.Background(), "tok", domain.StockInput{CompanyID: "123", ProductID: 10})

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestPutStockPerVariantOutcomes(t *testing.T) {
	crm := &fakeCRM{
		tokens: []domain.StoreCredential{{ID: 1, URL: "shop-a.myshopify.com"}},
		refs: []domain.CrossReference{
			{ProductID: 5, ProductRef: "900", TokenID: 1},
		},
	}
	store := &fakeStore{}
	svc := newProductService(crm, store)

	in := domain.StockInput{
		CompanyID: "123",
		ProductID: 10,
		Variants: []domain.StockVariantInput{
			{ID: 5, Stock: 3},
			{ID: 6, Stock: 1},
		},
	}
	report, err := svc.PutStock(context.Background(), "tok", in)

	require.NoError(t, err)
	res := report.Results["shop-a.myshopify.com"]
	assert.False(t, res.Success)
	require.Len(t, res.Variants, 2)
	assert.True(t, res.Variants[0].Success)
	assert.Equal(t, "900", res.Variants[0].StoreRef)
	assert.False(t, res.Variants[1].Success)
	assert.NotEmpty(t, res.Variants[1].Error)
	assert.Equal(t, []string{"update_stock:shop-a.myshopify.com"}, store.callLog())
}
