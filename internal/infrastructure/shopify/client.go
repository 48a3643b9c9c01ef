package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ave-shopify-connector/internal/domain"
	"ave-shopify-connector/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultAPIVersion is the Shopify Admin API version used when none is
// configured.
const DefaultAPIVersion = "2025-07"

// Client implements ports.StoreClient. REST operations go through
// go-shopify; order mutations go through the Admin GraphQL API.
type Client struct {
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a store client. A nil http.Client gets a default with a
// 60 second timeout.
func NewClient(apiVersion string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}
}

var _ ports.StoreClient = (*Client)(nil)

func (c *Client) restClient(cred domain.StoreCredential) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(
		goshopify.App{},
		cred.URL,
		cred.Token,
		goshopify.WithVersion(c.apiVersion),
		goshopify.WithHTTPClient(c.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create shopify client for %s: %w", cred.URL, err)
	}
	return client, nil
}

func toShopifyProduct(p *domain.CanonicalProduct) goshopify.Product {
	options := make([]goshopify.ProductOption, 0, len(p.Options))
	for _, opt := range p.Options {
		options = append(options, goshopify.ProductOption{
			Name:   opt.Name,
			Values: opt.Values,
		})
	}

	variants := make([]goshopify.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		price := v.Price
		weight := decimal.NewFromInt(int64(v.Grams))
		variant := goshopify.Variant{
			Title:               v.Title,
			Sku:                 v.SKU,
			Position:            v.Position,
			Price:               &price,
			Option1:             v.Option1,
			Option2:             v.Option2,
			Option3:             v.Option3,
			Weight:              &weight,
			WeightUnit:          "g",
			InventoryQuantity:   v.Stock,
			InventoryManagement: "shopify",
			RequireShipping:     true,
		}
		if !v.CompareAtPrice.IsZero() {
			compareAt := v.CompareAtPrice
			variant.CompareAtPrice = &compareAt
		}
		variants = append(variants, variant)
	}

	images := make([]goshopify.Image, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, goshopify.Image{
			Src:    img.Src,
			Alt:    img.Alt,
			Width:  img.Width,
			Height: img.Height,
		})
	}

	return goshopify.Product{
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.Category,
		Handle:      p.Handle,
		Tags:        strings.Join(p.Tags, ","),
		Status:      goshopify.ProductStatus(p.Status),
		Options:     options,
		Variants:    variants,
		Images:      images,
	}
}

func toStoreProduct(p *goshopify.Product) *domain.StoreProduct {
	out := &domain.StoreProduct{
		ID:     strconv.FormatUint(p.Id, 10),
		Handle: p.Handle,
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, domain.StoreVariant{
			ID:  strconv.FormatUint(v.Id, 10),
			SKU: v.Sku,
		})
	}
	return out
}

// CreateProduct creates the product in the given store.
func (c *Client) CreateProduct(ctx context.Context, cred domain.StoreCredential, product *domain.CanonicalProduct) (*domain.StoreProduct, error) {
	client, err := c.restClient(cred)
	if err != nil {
		return nil, err
	}
	created, err := client.Product.Create(ctx, toShopifyProduct(product))
	if err != nil {
		return nil, fmt.Errorf("create product on %s: %w", cred.URL, err)
	}
	c.logger.Info().
		Str("shop", cred.URL).
		Uint64("product_id", created.Id).
		Msg("Created product")
	return toStoreProduct(created), nil
}

// UpdateProduct updates the product identified by its store-native id.
func (c *Client) UpdateProduct(ctx context.Context, cred domain.StoreCredential, storeProductID string, product *domain.CanonicalProduct) (*domain.StoreProduct, error) {
	id, err := parseStoreID(storeProductID)
	if err != nil {
		return nil, err
	}
	client, err := c.restClient(cred)
	if err != nil {
		return nil, err
	}
	payload := toShopifyProduct(product)
	payload.Id = id
	updated, err := client.Product.Update(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("update product %d on %s: %w", id, cred.URL, err)
	}
	return toStoreProduct(updated), nil
}

// UpdateVariantStock sets the inventory quantity of one variant.
func (c *Client) UpdateVariantStock(ctx context.Context, cred domain.StoreCredential, storeVariantID string, quantity int) error {
	id, err := parseStoreID(storeVariantID)
	if err != nil {
		return err
	}
	client, err := c.restClient(cred)
	if err != nil {
		return err
	}
	_, err = client.Variant.Update(ctx, goshopify.Variant{
		Id:                id,
		InventoryQuantity: quantity,
	})
	if err != nil {
		return fmt.Errorf("update stock of variant %d on %s: %w", id, cred.URL, err)
	}
	return nil
}

func toShopifyOrder(order *domain.CanonicalOrder) goshopify.Order {
	lineItems := make([]goshopify.LineItem, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		price := item.Price
		taxAmount := item.TaxAmount
		taxRate := item.TaxRate
		lineItems = append(lineItems, goshopify.LineItem{
			Title:    item.Title,
			Price:    &price,
			Grams:    item.Grams,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			TaxLines: []goshopify.TaxLine{
				{
					Title: "IVA",
					Price: &taxAmount,
					Rate:  &taxRate,
				},
			},
		})
	}

	total := order.Total
	totalTax := order.TotalTax
	return goshopify.Order{
		Email: order.Email,
		Phone: order.Phone,
		Customer: &goshopify.Customer{
			Email:     order.Email,
			FirstName: order.CustomerName,
			LastName:  order.CustomerName,
		},
		LineItems: lineItems,
		Transactions: []goshopify.Transaction{
			{
				Kind:   "sale",
				Status: string(order.Payment),
				Amount: &total,
			},
		},
		TotalTax: &totalTax,
		Currency: order.Currency,
	}
}

// CreateOrder creates the order in the given store.
func (c *Client) CreateOrder(ctx context.Context, cred domain.StoreCredential, order *domain.CanonicalOrder) (*domain.StoreOrder, error) {
	client, err := c.restClient(cred)
	if err != nil {
		return nil, err
	}

	created, err := client.Order.Create(ctx, toShopifyOrder(order))
	if err != nil {
		return nil, fmt.Errorf("create order on %s: %w", cred.URL, err)
	}
	c.logger.Info().
		Str("shop", cred.URL).
		Uint64("order_id", created.Id).
		Msg("Created order")
	return &domain.StoreOrder{
		ID:   strconv.FormatUint(created.Id, 10),
		Name: created.Name,
	}, nil
}

// parseStoreID accepts a bare numeric id or a GraphQL gid and returns the
// numeric part.
func parseStoreID(id string) (uint64, error) {
	digits := digitsOnly(id)
	if digits == "" {
		return 0, fmt.Errorf("store id %q has no numeric part", id)
	}
	parsed, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("store id %q: %w", id, err)
	}
	return parsed, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
