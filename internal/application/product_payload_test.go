package application

import (
	"testing"

	"ave-shopify-connector/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Camiseta Roja", want: "camiseta-roja"},
		{name: "accents", in: "Camisón Ñoño", want: "camison-nono"},
		{name: "symbol runs", in: "Caja  x12 -- (grande)", want: "caja-x12-grande"},
		{name: "leading and trailing junk", in: "  ¡Oferta!  ", want: "oferta"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Handle(tt.in))
		})
	}
}

func TestHandleWithRef(t *testing.T) {
	assert.Equal(t, "camiseta-roja-ref-001", HandleWithRef("Camiseta Roja", "REF-001"))
	assert.Equal(t, "camiseta-roja", HandleWithRef("Camiseta Roja", ""))
	assert.Equal(t, "ref-001", HandleWithRef("", "REF-001"))
}

func TestBuildProductDefaultVariant(t *testing.T) {
	in := domain.ProductInput{
		CompanyID: "123",
		ProductID: 10,
		Name:      "Camiseta Roja",
		Ref:       "REF-001",
		Suggested: 25000,
		Weight:    300,
		Units:     7,
		Brand:     "Acme",
		Category:  "Ropa",
	}

	product := BuildProduct(in, RequestContext{})

	require.Len(t, product.Variants, 1)
	v := product.Variants[0]
	assert.Equal(t, "Camiseta Roja", v.Title)
	assert.Equal(t, "REF-001", v.SKU)
	assert.Equal(t, "25000", v.Price.String())
	assert.Equal(t, 300, v.Grams)
	assert.Equal(t, 7, v.Stock)
	assert.Equal(t, "Default", v.Option1)
	assert.Equal(t, 1, v.Position)

	require.Len(t, product.Options, 1)
	assert.Equal(t, domain.ProductOption{Name: "Default", Values: []string{"Default"}}, product.Options[0])

	assert.Equal(t, domain.ProductStatusActive, product.Status)
	assert.Equal(t, "<strong>Camiseta Roja</strong>", product.BodyHTML)
	assert.Equal(t, "camiseta-roja-ref-001", product.Handle)
}

func TestBuildProductVariantOptions(t *testing.T) {
	price1 := 12000.0
	stock2 := 3
	in := domain.ProductInput{
		CompanyID: "123",
		ProductID: 10,
		Name:      "Camiseta",
		Ref:       "REF-001",
		Suggested: 20000,
		Weight:    250,
		Units:     10,
		Status:    1,
		Variants: []domain.VariantInput{
			{
				ID:    1,
				Name:  "Roja M",
				Price: &price1,
				SKU:   "SKU-1",
				Attributes: domain.OrderedAttributes{
					{Key: "Color", Value: "Rojo"},
					{Key: "Talla", Value: "M"},
				},
			},
			{
				ID:    2,
				Stock: &stock2,
				Attributes: domain.OrderedAttributes{
					{Key: "Color", Value: "Azul"},
					{Key: "Talla", Value: "M"},
				},
			},
		},
	}

	product := BuildProduct(in, RequestContext{})

	require.Len(t, product.Options, 2)
	assert.Equal(t, domain.ProductOption{Name: "Color", Values: []string{"Rojo", "Azul"}}, product.Options[0])
	assert.Equal(t, domain.ProductOption{Name: "Talla", Values: []string{"M"}}, product.Options[1])

	require.Len(t, product.Variants, 2)

	first := product.Variants[0]
	assert.Equal(t, "Roja M", first.Title)
	assert.Equal(t, "12000", first.Price.String())
	assert.Equal(t, "SKU-1", first.SKU)
	assert.Equal(t, "Rojo", first.Option1)
	assert.Equal(t, "M", first.Option2)
	assert.Equal(t, 10, first.Stock)

	second := product.Variants[1]
	assert.Equal(t, "Variante 2", second.Title)
	assert.Equal(t, "20000", second.Price.String())
	assert.Equal(t, "REF-001", second.SKU)
	assert.Equal(t, "Azul", second.Option1)
	assert.Equal(t, 3, second.Stock)
	assert.Equal(t, 2, second.Position)

	assert.Equal(t, domain.ProductStatusDraft, product.Status)
}

func TestBuildProductImageResolution(t *testing.T) {
	in := domain.ProductInput{
		Name:      "Camiseta",
		Ref:       "REF-001",
		ImagePath: "../storage/img/camiseta.png",
	}
	rctx := RequestContext{Scheme: "https", Host: "connector.aveonline.co"}

	product := BuildProduct(in, rctx)

	require.Len(t, product.Images, 1)
	assert.Equal(t, "https://connector.aveonline.co/storage/img/camiseta.png", product.Images[0].Src)
	assert.Equal(t, 1, product.Images[0].Position)
}

func TestResolveImageURLAbsolutePassThrough(t *testing.T) {
	rctx := RequestContext{Scheme: "https", Host: "connector.aveonline.co"}
	assert.Equal(t, "https://cdn.example.com/a.png", rctx.ResolveImageURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "", rctx.ResolveImageURL(""))
}
