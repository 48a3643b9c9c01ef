package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductStatus mirrors Shopify's product status values.
type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusDraft  ProductStatus = "draft"
)

// Tags accepts either a JSON array of strings or a single comma-joined
// string, the two shapes the CRM sends.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*t = nil
			return nil
		}
		*t = Tags{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = Tags(list)
	return nil
}

// Attribute is one key/value pair of a variant's attribute set.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderedAttributes preserves the insertion order of a JSON object's keys.
// Option slots on a variant are filled positionally from this order, so a
// plain map would scramble option1/option2/option3 assignments.
type OrderedAttributes []Attribute

func (a *OrderedAttributes) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attributes: expected object, got %v", tok)
	}
	var out OrderedAttributes
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("attributes: non-string key %v", keyTok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, Attribute{Key: key, Value: fmt.Sprintf("%v", raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}

// VariantInput is one variant as the CRM sends it.
type VariantInput struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Price          *float64          `json:"price"`
	SuggestedPrice *float64          `json:"suggested_price"`
	SKU            string            `json:"sku"`
	Weight         *float64          `json:"weight"`
	Stock          *int              `json:"stock"`
	DropshippingID int64             `json:"dropshipping_id,omitempty"`
	Attributes     OrderedAttributes `json:"attributes"`
}

// ProductInput is the CRM-side product record a sync call starts from.
type ProductInput struct {
	CompanyID      string         `json:"idempresa"`
	ProductID      int64          `json:"productId,omitempty"`
	DropshippingID int64          `json:"dropshippingId,omitempty"`
	Name           string         `json:"productName"`
	Ref            string         `json:"productRef"`
	Suggested      float64        `json:"sugerido"`
	Weight         float64        `json:"peso"`
	Units          int            `json:"unidades"`
	Brand          string         `json:"marcaName"`
	Category       string         `json:"categoryName"`
	Status         int            `json:"productStatus"`
	Description    string         `json:"productDesc"`
	Tags           Tags           `json:"etiquetas"`
	Variants       []VariantInput `json:"variants"`
	ImagePath      string         `json:"url,omitempty"`
}

// StockVariantInput is one variant of a stock update request.
type StockVariantInput struct {
	ID    int64 `json:"id"`
	Stock int   `json:"stock"`
}

// StockInput is the CRM-side stock update request.
type StockInput struct {
	CompanyID string              `json:"idempresa"`
	ProductID int64               `json:"productId"`
	Variants  []StockVariantInput `json:"variants"`
}

// ProductOption is one option bucket of a canonical product, values
// de-duplicated in first-seen order.
type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// CanonicalVariant is one store-agnostic variant. Position is 1-based and
// stable against the product's option sets.
type CanonicalVariant struct {
	ID             int64           `json:"id,omitempty"`
	Title          string          `json:"title"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compare_at_price"`
	SKU            string          `json:"sku"`
	Position       int             `json:"position"`
	Option1        string          `json:"option1,omitempty"`
	Option2        string          `json:"option2,omitempty"`
	Option3        string          `json:"option3,omitempty"`
	Grams          int             `json:"grams"`
	Stock          int             `json:"inventory_quantity"`
	DropshippingID int64           `json:"dropshipping_id,omitempty"`
}

// ProductImage is one product image with an already absolute source URL.
type ProductImage struct {
	Src      string `json:"src"`
	Alt      string `json:"alt,omitempty"`
	Position int    `json:"position"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// CanonicalProduct is the store-agnostic payload built once per fan-out and
// shared read-only across all store dispatches.
type CanonicalProduct struct {
	ID             int64              `json:"id,omitempty"`
	DropshippingID int64              `json:"dropshipping_id,omitempty"`
	Title          string             `json:"title"`
	Ref            string             `json:"ref"`
	Handle         string             `json:"handle"`
	Price          decimal.Decimal    `json:"price"`
	Grams          int                `json:"grams"`
	Stock          int                `json:"inventory_quantity"`
	Vendor         string             `json:"vendor"`
	Category       string             `json:"product_type"`
	Status         ProductStatus      `json:"status"`
	BodyHTML       string             `json:"body_html"`
	Tags           []string           `json:"tags,omitempty"`
	Options        []ProductOption    `json:"options"`
	Variants       []CanonicalVariant `json:"variants"`
	Images         []ProductImage     `json:"images,omitempty"`
}

// VariantIDs returns the internal ids of all variants that carry one.
func (p *CanonicalProduct) VariantIDs() []int64 {
	var ids []int64
	for _, v := range p.Variants {
		if v.ID != 0 {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// DropshippingIDs returns the dropshipping ids the product and its variants
// carry, product first.
func (p *CanonicalProduct) DropshippingIDs() []int64 {
	var ids []int64
	if p.DropshippingID != 0 {
		ids = append(ids, p.DropshippingID)
	}
	for _, v := range p.Variants {
		if v.DropshippingID != 0 {
			ids = append(ids, v.DropshippingID)
		}
	}
	return ids
}
