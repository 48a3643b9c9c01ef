package application

import (
	"ave-shopify-connector/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	orderCurrency       = "COP"
	defaultItemWeight   = 0.5 // kg
	defaultItemName     = "Producto"
	defaultItemQuantity = 1
)

var hundred = decimal.NewFromInt(100)

// BuildOrder turns a CRM order record into the canonical store payload.
// When structured items are present they win; otherwise the legacy parallel
// arrays are zipped by index, with product names and refs looked up from the
// companion product list at the same index.
func BuildOrder(in domain.OrderInput) *domain.CanonicalOrder {
	payment := domain.PaymentStatusPending
	if in.Paid == 1 {
		payment = domain.PaymentStatusSuccess
	}

	order := &domain.CanonicalOrder{
		Email:        in.ClientEmail,
		Phone:        in.ClientPhone,
		CustomerName: in.ClientName,
		Payment:      payment,
		Total:        decimal.NewFromFloat(in.GrandTotal),
		TotalTax:     decimal.NewFromFloat(in.VAT),
		Currency:     orderCurrency,
	}

	if len(in.Post.Items) > 0 {
		order.LineItems = structuredLineItems(in.Post.Items)
	} else {
		order.LineItems = legacyLineItems(in.Post, in.Products)
	}
	return order
}

func structuredLineItems(items []domain.OrderItemInput) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		title := item.ProductName
		if title == "" {
			title = defaultItemName
		}
		weight := defaultItemWeight
		if item.Weight != nil {
			weight = *item.Weight
		}
		quantity := defaultItemQuantity
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		out = append(out, lineItem(title, item.RateValue, weight, item.ProductRef, quantity, item.VATValue))
	}
	return out
}

func legacyLineItems(post domain.OrderPost, products []domain.ProductRefLookup) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(post.ProductNames))
	for i := range post.ProductNames {
		title := defaultItemName
		ref := ""
		if i < len(products) {
			if products[i].Name != "" {
				title = products[i].Name
			}
			ref = products[i].Ref
		}
		price := 0.0
		if i < len(post.RateValues) {
			price = post.RateValues[i]
		}
		weight := defaultItemWeight
		if i < len(post.Weights) && post.Weights[i] > 0 {
			weight = post.Weights[i]
		}
		quantity := defaultItemQuantity
		if i < len(post.Quantities) && post.Quantities[i] > 0 {
			quantity = post.Quantities[i]
		}
		vat := 0.0
		if i < len(post.VATValues) {
			vat = post.VATValues[i]
		}
		out = append(out, lineItem(title, price, weight, ref, quantity, vat))
	}
	return out
}

// lineItem assembles one line. Weight arrives in kilograms and ships in
// grams; the tax rate is the percentage the CRM sends divided by 100.
func lineItem(title string, price, weightKg float64, sku string, quantity int, vat float64) domain.LineItem {
	return domain.LineItem{
		Title:     title,
		Price:     decimal.NewFromFloat(price),
		Grams:     int(weightKg * 1000),
		SKU:       sku,
		Quantity:  quantity,
		TaxAmount: decimal.NewFromFloat(vat),
		TaxRate:   decimal.NewFromFloat(vat).Div(hundred),
	}
}
