package shopify

import (
	"testing"

	"ave-shopify-connector/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToShopifyOrder(t *testing.T) {
	order := &domain.CanonicalOrder{
		Email:        "cliente@example.com",
		Phone:        "3001234567",
		CustomerName: "Ana Perez",
		Payment:      domain.PaymentStatusSuccess,
		Total:        decimal.NewFromInt(100),
		TotalTax:     decimal.NewFromInt(19),
		Currency:     "COP",
		LineItems: []domain.LineItem{
			{
				Title:     "Camiseta Roja",
				Price:     decimal.NewFromInt(50),
				Grams:     1200,
				SKU:       "SKU1",
				Quantity:  2,
				TaxAmount: decimal.NewFromInt(19),
				TaxRate:   decimal.NewFromFloat(0.19),
			},
		},
	}

	payload := toShopifyOrder(order)

	require.NotNil(t, payload.Customer)
	assert.Equal(t, "Ana Perez", payload.Customer.FirstName)
	assert.Equal(t, "Ana Perez", payload.Customer.LastName)
	assert.Equal(t, "cliente@example.com", payload.Customer.Email)

	require.Len(t, payload.LineItems, 1)
	item := payload.LineItems[0]
	assert.Equal(t, "SKU1", item.SKU)
	assert.Equal(t, 2, item.Quantity)
	require.Len(t, item.TaxLines, 1)
	assert.Equal(t, "IVA", item.TaxLines[0].Title)
	assert.Equal(t, "0.19", item.TaxLines[0].Rate.String())

	require.Len(t, payload.Transactions, 1)
	assert.Equal(t, "sale", payload.Transactions[0].Kind)
	assert.Equal(t, "success", payload.Transactions[0].Status)
	assert.Equal(t, "100", payload.Transactions[0].Amount.String())

	assert.Equal(t, "COP", payload.Currency)
}

func TestParseStoreID(t *testing.T) {
	id, err := parseStoreID("gid://shopify/Product/8431234")
	require.NoError(t, err)
	assert.Equal(t, uint64(8431234), id)

	_, err = parseStoreID("no-digits")
	require.Error(t, err)
}
