package domain

import "github.com/shopspring/decimal"

// PaymentStatus mirrors Shopify's transaction status values.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusPending PaymentStatus = "pending"
)

// LineItem is one store-agnostic order line. Exactly one synthetic tax line
// per item, titled "IVA".
type LineItem struct {
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Grams     int             `json:"grams"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// CanonicalOrder is the store-agnostic order payload built once per fan-out.
type CanonicalOrder struct {
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	CustomerName string          `json:"customer_name"`
	LineItems    []LineItem      `json:"line_items"`
	Payment      PaymentStatus   `json:"payment_status"`
	Total        decimal.Decimal `json:"total"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	Currency     string          `json:"currency"`
}

// OrderItemInput is one structured item of an order request (shape 1).
type OrderItemInput struct {
	ProductName string   `json:"product_name,omitempty"`
	RateValue   float64  `json:"rateValue"`
	Weight      *float64 `json:"peso"`
	ProductRef  string   `json:"productRef"`
	Quantity    *int     `json:"quantity"`
	VATValue    float64  `json:"ivaValue"`
}

// OrderPost carries the raw request data. Items is the structured shape;
// the parallel arrays indexed by position are the legacy shape. Exactly one
// of the two populates the line items of a given call.
type OrderPost struct {
	Items        []OrderItemInput `json:"items"`
	ProductNames []string         `json:"productName"`
	RateValues   []float64        `json:"rateValue"`
	Weights      []float64        `json:"peso"`
	Quantities   []int            `json:"quantity"`
	VATValues    []float64        `json:"ivaValue"`
}

// ProductRefLookup is one product reference record looked up by the same
// index as the legacy parallel arrays.
type ProductRefLookup struct {
	Name string `json:"product_name"`
	Ref  string `json:"product_ref"`
}

// OrderInput is the CRM-side order record a creation call starts from.
type OrderInput struct {
	CompanyID   string             `json:"idempresa"`
	ClientEmail string             `json:"clientEmail"`
	ClientPhone string             `json:"clientTel"`
	ClientName  string             `json:"clientName"`
	GrandTotal  float64            `json:"grandTotal"`
	VAT         float64            `json:"vat"`
	Paid        int                `json:"pagado"`
	Post        OrderPost          `json:"orderPost"`
	Products    []ProductRefLookup `json:"products,omitempty"`
}

// OrderActionResult is the outcome of one single-store order action (note,
// comment, cancel, open, fulfill, close).
type OrderActionResult struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusChangeReport is the aggregate of a changeStatus call: the note step
// and the mapped status action, each reported independently. Success covers
// the call itself, not the sub-results.
type StatusChangeReport struct {
	Success bool               `json:"success"`
	Note    *OrderActionResult `json:"resultNote,omitempty"`
	Change  *OrderActionResult `json:"resultChangeStatus,omitempty"`
	Error   string             `json:"error,omitempty"`
}
