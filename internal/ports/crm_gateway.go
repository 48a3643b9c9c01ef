package ports

import (
	"context"

	"ave-shopify-connector/internal/domain"
)

// CRMGateway is the typed surface over the Ave CRM API.
//
// The token lookups collapse both "no stores configured" and "lookup failed"
// into nil: callers cannot and must not distinguish the two. The remaining
// operations return real errors for transport failures and nil values for
// empty results.
type CRMGateway interface {
	// StoreTokensByCompany returns the credentials of every store tied to
	// a company, or nil when there are none or the lookup failed.
	StoreTokensByCompany(ctx context.Context, companyID, authToken string) []domain.StoreCredential

	// StoreTokenByCompanyAgent returns the credential of the store tied to
	// a company/agent pair, or nil.
	StoreTokenByCompanyAgent(ctx context.Context, companyID, authToken string, agentID int64) *domain.StoreCredential

	// OrderByNumber resolves an Ave order number through the CRM order
	// log. Nil result, nil error when the log has no such order.
	OrderByNumber(ctx context.Context, authToken, orderNumber string) (*domain.OrderRecord, error)

	// CrossReferences returns all known mappings for the given internal
	// ids (products and variants mixed) across all stores.
	CrossReferences(ctx context.Context, authToken string, productIDs []int64) ([]domain.CrossReference, error)

	// DropshippingReferences is CrossReferences keyed by dropshipping id.
	DropshippingReferences(ctx context.Context, authToken string, dropshippingIDs []int64) ([]domain.CrossReference, error)

	// PutCrossReferences upserts new mappings. Idempotency of repeated
	// upserts is the CRM's responsibility.
	PutCrossReferences(ctx context.Context, authToken string, refs []domain.CrossReference) error
}
