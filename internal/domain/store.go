package domain

// StoreCredential identifies one Shopify store tied to a company account.
// Credentials are fetched fresh from the CRM on every call and are immutable
// for the duration of that call.
type StoreCredential struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	AgentID int64  `json:"id_agente,omitempty"`
}

// StoreProduct is the store-side view of a created or updated product,
// reduced to what reference derivation needs.
type StoreProduct struct {
	ID       string         `json:"id"`
	Handle   string         `json:"handle,omitempty"`
	Variants []StoreVariant `json:"variants,omitempty"`
}

// StoreVariant pairs a store-native variant id with the SKU it was created
// under. SKU is the join key back to the canonical variants.
type StoreVariant struct {
	ID  string `json:"id"`
	SKU string `json:"sku"`
}

// StoreOrder is the store-side view of a created order.
type StoreOrder struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// VariantStockResult is the outcome of one variant stock update inside a
// store dispatch.
type VariantStockResult struct {
	VariantID int64  `json:"variant_id"`
	StoreRef  string `json:"store_ref,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// StoreResult is the per-store outcome of one fan-out dispatch. One result
// per store per call; never shared across stores.
type StoreResult struct {
	Shop       string               `json:"shop"`
	Success    bool                 `json:"success"`
	Precreated bool                 `json:"precreated,omitempty"`
	Sent       any                  `json:"send,omitempty"`
	Result     any                  `json:"result,omitempty"`
	Error      string               `json:"error,omitempty"`
	References []CrossReference     `json:"references,omitempty"`
	Variants   []VariantStockResult `json:"variants,omitempty"`
}

// FanOutReport aggregates per-store results keyed by store URL, together
// with the credentials the operation resolved.
type FanOutReport struct {
	Stores  []StoreCredential      `json:"stores"`
	Results map[string]StoreResult `json:"results"`
}

// AllSucceeded reports whether every store dispatch in the report succeeded.
func (r *FanOutReport) AllSucceeded() bool {
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return true
}
