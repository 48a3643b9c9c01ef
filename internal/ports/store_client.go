package ports

import (
	"context"
	"encoding/json"

	"ave-shopify-connector/internal/domain"
)

// StoreClient defines the per-store Shopify operations the connector
// invokes. Implementations receive the credential of the target store on
// every call; nothing is cached between calls. Store-native ids are
// accepted with or without GraphQL gid decoration.
type StoreClient interface {
	// Product API
	CreateProduct(ctx context.Context, cred domain.StoreCredential, product *domain.CanonicalProduct) (*domain.StoreProduct, error)
	UpdateProduct(ctx context.Context, cred domain.StoreCredential, storeProductID string, product *domain.CanonicalProduct) (*domain.StoreProduct, error)
	UpdateVariantStock(ctx context.Context, cred domain.StoreCredential, storeVariantID string, quantity int) error

	// Order API
	CreateOrder(ctx context.Context, cred domain.StoreCredential, order *domain.CanonicalOrder) (*domain.StoreOrder, error)
	CancelOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID, reason string) (json.RawMessage, error)
	AddNote(ctx context.Context, cred domain.StoreCredential, storeOrderID, note string) (json.RawMessage, error)
	AddTimelineComment(ctx context.Context, cred domain.StoreCredential, storeOrderID, message string) (json.RawMessage, error)
	OpenOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID string) (json.RawMessage, error)
	FulfillOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID string) (json.RawMessage, error)
	CloseOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID string) (json.RawMessage, error)
}
