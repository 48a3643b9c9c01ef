package domain

// ProductType distinguishes own-catalog products from dropshipping ones.
type ProductType string

const (
	ProductTypeOwn          ProductType = "own"
	ProductTypeDropshipping ProductType = "dropshipping"
)

// CrossReference maps one internal product or variant id to one store's
// native id. The CRM owns these rows; this connector only reads and upserts
// them through the productEcommerce endpoint. At most one row exists per
// (internal id, store id) pair.
type CrossReference struct {
	ProductID int64  `json:"product_id"`
	ParentID  *int64 `json:"parent_id"`
	// ProductRef is the store-native id, normalized to a bare numeric
	// string before persistence.
	ProductRef string      `json:"product_ref"`
	TokenID    int64       `json:"token_id"`
	Type       ProductType `json:"product_type,omitempty"`
}

// OrderRecord is one row of the CRM order log, linking an Ave order number
// to the Shopify order it produced.
type OrderRecord struct {
	OrderNumber    string `json:"order_number,omitempty"`
	ShopifyOrderID string `json:"shopify_order_id"`
}
